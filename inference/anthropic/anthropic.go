// Package anthropic implements the text classification boundary using the
// Anthropic Messages API, as an alternative to the OpenAI adapter.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/supportmesh/inference"
)

// ClassifierOptions configure the Anthropic classifier adapter.
type ClassifierOptions struct {
	Model        anthropic.Model
	Instructions string
	Temperature  float64
	MaxTokens    int64
	APIKey       string
}

// Classifier wraps the Messages API behind inference.TextClassifier.
type Classifier struct {
	client *anthropic.Client
	opts   ClassifierOptions
}

// NewClassifier creates a classifier using the official client. The API key
// falls back to the environment when not set explicitly.
func NewClassifier(optFns ...func(o *ClassifierOptions)) *Classifier {
	opts := ClassifierOptions{
		Model:        anthropic.ModelClaude3_5Sonnet20241022,
		Instructions: "Classify the following text and respond with just the label.",
		Temperature:  0.0,
		MaxTokens:    64,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Classifier{client: &client, opts: opts}
}

// NewClassifierFromClient creates a classifier from an existing client.
func NewClassifierFromClient(client *anthropic.Client, optFns ...func(o *ClassifierOptions)) *Classifier {
	opts := ClassifierOptions{
		Model:        anthropic.ModelClaude3_5Sonnet20241022,
		Instructions: "Classify the following text and respond with just the label.",
		Temperature:  0.0,
		MaxTokens:    64,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Classifier{client: client, opts: opts}
}

// ClassifyText implements inference.TextClassifier.
func (c *Classifier) ClassifyText(ctx context.Context, text string) (inference.Classification, error) {
	params := anthropic.MessageNewParams{
		Model:       c.opts.Model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: c.opts.Instructions}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return inference.Classification{}, fmt.Errorf("anthropic api error: %w", err)
	}

	var label string
	for _, block := range resp.Content {
		if block.Type == "text" {
			label += block.AsText().Text
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return inference.Classification{}, fmt.Errorf("empty classification label")
	}

	return inference.Classification{Label: label, Confidence: 1.0}, nil
}
