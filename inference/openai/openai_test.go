package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysis(t *testing.T) {
	analysis, err := parseAnalysis(`{"labels":[{"description":"spill","confidence":0.91}],"issues_detected":true}`)

	require.NoError(t, err)
	assert.True(t, analysis.IssuesDetected)
	require.Len(t, analysis.Labels, 1)
	assert.Equal(t, "spill", analysis.Labels[0].Description)
	assert.InDelta(t, 0.91, analysis.Labels[0].Confidence, 1e-9)
}

func TestParseAnalysis_FencedPayload(t *testing.T) {
	payload := "```json\n{\"labels\":[],\"issues_detected\":false}\n```"

	analysis, err := parseAnalysis(payload)

	require.NoError(t, err)
	assert.False(t, analysis.IssuesDetected)
	assert.Empty(t, analysis.Labels)
}

func TestParseAnalysis_Malformed(t *testing.T) {
	_, err := parseAnalysis("the image shows a damaged box")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed analysis payload")
}
