package core

import (
	"testing"

	"github.com/hupe1980/supportmesh/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndRepair_PassThrough(t *testing.T) {
	entries := []any{
		NewHumanMessage("my food was spilled"),
		NewAssistantMessage("sorry to hear that"),
	}

	clean, repaired := ValidateAndRepair(entries, logging.NoOpLogger{})

	assert.False(t, repaired)
	require.Len(t, clean, 2)
	assert.Equal(t, RoleHuman, clean[0].Role)
	assert.Equal(t, RoleAssistant, clean[1].Role)
}

func TestValidateAndRepair_BareString(t *testing.T) {
	clean, repaired := ValidateAndRepair([]any{"hello there"}, logging.NoOpLogger{})

	assert.True(t, repaired)
	require.Len(t, clean, 1)
	assert.Equal(t, RoleHuman, clean[0].Role)
	assert.Equal(t, "hello there", clean[0].Content)
}

func TestValidateAndRepair_MappingWithContent(t *testing.T) {
	entry := map[string]any{"content": "box arrived broken", "extra": 42}

	clean, repaired := ValidateAndRepair([]any{entry}, logging.NoOpLogger{})

	assert.True(t, repaired)
	require.Len(t, clean, 1)
	assert.Equal(t, NewHumanMessage("box arrived broken"), clean[0])
}

func TestValidateAndRepair_UnknownShape(t *testing.T) {
	clean, repaired := ValidateAndRepair([]any{42, nil}, logging.NoOpLogger{})

	assert.True(t, repaired)
	require.Len(t, clean, 2)
	for _, msg := range clean {
		assert.True(t, msg.WellFormed())
		assert.Equal(t, RoleHuman, msg.Role)
	}
}

func TestValidateAndRepair_MixedSequenceAllWellFormed(t *testing.T) {
	entries := []any{
		"a bare string",
		map[string]any{"content": "a mapping"},
		NewAssistantMessage("a real message"),
		struct{ X int }{X: 1},
	}

	clean, repaired := ValidateAndRepair(entries, logging.NoOpLogger{})

	assert.True(t, repaired)
	require.Len(t, clean, len(entries))
	for _, msg := range clean {
		assert.True(t, msg.WellFormed())
	}
}

// Running the repaired output through the validator again must be a no-op.
func TestValidateAndRepair_Idempotent(t *testing.T) {
	entries := []any{"loose", map[string]any{"content": "mapped"}, NewHumanMessage("typed")}

	first, repaired := ValidateAndRepair(entries, logging.NoOpLogger{})
	require.True(t, repaired)

	again := make([]any, len(first))
	for i, m := range first {
		again[i] = m
	}
	second, repairedAgain := ValidateAndRepair(again, logging.NoOpLogger{})

	assert.False(t, repairedAgain)
	assert.Equal(t, first, second)
}

func TestRepairHistory_InvalidRoleWithContent(t *testing.T) {
	history := []Message{
		NewHumanMessage("original"),
		{Role: "", Content: "lost its role on the wire"},
		{Role: "robot", Content: "unknown role"},
	}

	clean, repaired := RepairHistory(history, logging.NoOpLogger{})

	assert.True(t, repaired)
	require.Len(t, clean, 3)
	assert.Equal(t, RoleHuman, clean[1].Role)
	assert.Equal(t, "lost its role on the wire", clean[1].Content)
	assert.Equal(t, RoleHuman, clean[2].Role)
	assert.NoError(t, AssertWellFormed(clean, "test"))
}

func TestRepairHistory_UnrepairableEntrySurvives(t *testing.T) {
	history := []Message{NewHumanMessage("original"), {}}

	clean, _ := RepairHistory(history, logging.NoOpLogger{})

	err := AssertWellFormed(clean, "after repair")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContractViolation)
}

func TestRepairHistory_DoesNotMutateInput(t *testing.T) {
	history := []Message{{Role: "", Content: "fix me"}}

	_, repaired := RepairHistory(history, logging.NoOpLogger{})

	assert.True(t, repaired)
	assert.Equal(t, Role(""), history[0].Role)
}

func TestAssertWellFormed_EmptyHistory(t *testing.T) {
	err := AssertWellFormed(nil, "seed")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContractViolation)
	assert.Contains(t, err.Error(), "seed")
}

func TestAssertWellFormed_ReportsIndexAndContext(t *testing.T) {
	history := []Message{NewHumanMessage("ok"), {Role: "bogus"}}

	err := AssertWellFormed(history, `after handler "classification"`)

	require.Error(t, err)
	var cv *ContractViolationError
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, 1, cv.Index)
	assert.Contains(t, cv.Context, "classification")
}

func TestAssertWellFormed_Valid(t *testing.T) {
	history := []Message{NewHumanMessage("hi"), NewAssistantMessage("hello")}

	assert.NoError(t, AssertWellFormed(history, "test"))
}
