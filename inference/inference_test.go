package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ TextClassifier = (*MockClassifier)(nil)
	_ VisionAnalyzer = (*MockVision)(nil)
)

func TestMockClassifier(t *testing.T) {
	m := NewMockClassifier("en")
	m.AddResponse("hola", Classification{Label: "es", Confidence: 0.98})

	c, err := m.ClassifyText(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, "es", c.Label)

	c, err = m.ClassifyText(context.Background(), "anything else")
	require.NoError(t, err)
	assert.Equal(t, "en", c.Label)

	m.Fail(errors.New("quota exceeded"))
	_, err = m.ClassifyText(context.Background(), "hola")
	assert.Error(t, err)
}

func TestMockVision(t *testing.T) {
	m := NewMockVision(ImageAnalysis{
		Labels:         []Label{{Description: "spill", Confidence: 0.91}},
		IssuesDetected: true,
	})

	analysis, err := m.AnalyzeImage(context.Background(), "artifact://t1/img")
	require.NoError(t, err)
	assert.True(t, analysis.IssuesDetected)
	assert.Equal(t, "artifact://t1/img", m.LastRef)

	m.Fail(errors.New("endpoint down"))
	_, err = m.AnalyzeImage(context.Background(), "artifact://t1/img")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint down")
}
