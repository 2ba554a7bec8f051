// Package inference defines the narrow boundary interfaces through which
// handlers invoke external inference services, plus in-memory mocks for tests
// and examples. Provider adapters live in the openai and anthropic
// subpackages.
package inference

import (
	"context"
	"fmt"
)

// Classification is the outcome of a text classification call-out.
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// TextClassifier classifies a piece of text against instructions supplied at
// construction time (language identification, issue taxonomy, ...). A single
// call, no internal retry; retry policy belongs to the client implementation.
type TextClassifier interface {
	ClassifyText(ctx context.Context, text string) (Classification, error)
}

// Label is a single annotation returned by image analysis.
type Label struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// ImageAnalysis is the structured result of a vision call-out.
type ImageAnalysis struct {
	Labels         []Label `json:"labels"`
	IssuesDetected bool    `json:"issues_detected"`
}

// VisionAnalyzer analyzes an uploaded image by its remote reference.
type VisionAnalyzer interface {
	AnalyzeImage(ctx context.Context, ref string) (ImageAnalysis, error)
}

// MockClassifier is a deterministic in-memory TextClassifier for tests and
// examples.
type MockClassifier struct {
	responses map[string]Classification
	fallback  Classification
	err       error
}

// NewMockClassifier constructs a MockClassifier with the given fallback label.
func NewMockClassifier(fallbackLabel string) *MockClassifier {
	return &MockClassifier{
		responses: map[string]Classification{},
		fallback:  Classification{Label: fallbackLabel, Confidence: 1.0},
	}
}

// AddResponse registers a canned classification for an exact input text.
func (m *MockClassifier) AddResponse(text string, c Classification) { m.responses[text] = c }

// Fail makes every subsequent call return err.
func (m *MockClassifier) Fail(err error) { m.err = err }

// ClassifyText implements TextClassifier.
func (m *MockClassifier) ClassifyText(_ context.Context, text string) (Classification, error) {
	if m.err != nil {
		return Classification{}, m.err
	}
	if c, ok := m.responses[text]; ok {
		return c, nil
	}
	return m.fallback, nil
}

// MockVision is a deterministic in-memory VisionAnalyzer.
type MockVision struct {
	analysis ImageAnalysis
	err      error
	// LastRef records the reference passed to the most recent call.
	LastRef string
}

// NewMockVision constructs a MockVision returning the given analysis.
func NewMockVision(analysis ImageAnalysis) *MockVision {
	return &MockVision{analysis: analysis}
}

// Fail makes every subsequent call return err.
func (m *MockVision) Fail(err error) { m.err = err }

// AnalyzeImage implements VisionAnalyzer.
func (m *MockVision) AnalyzeImage(_ context.Context, ref string) (ImageAnalysis, error) {
	m.LastRef = ref
	if m.err != nil {
		return ImageAnalysis{}, fmt.Errorf("vision analysis failed: %w", m.err)
	}
	return m.analysis, nil
}
