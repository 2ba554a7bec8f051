package core

import (
	"fmt"

	"github.com/hupe1980/supportmesh/logging"
)

// ValidateAndRepair normalizes a sequence of arbitrary-shaped entries into
// well-formed Messages. It guards deserialization boundaries outside the
// engine loop: wire decoding and store round-trips that surface history as
// []any hand their entries through here before seeding a run. The engine's
// typed path uses RepairHistory instead, which operates on []Message.
//
// Per entry:
//   - Message / *Message with a known role passes through unchanged
//   - a mapping with a "content" field is rebuilt as a human message
//   - a bare string is rebuilt as a human message
//   - anything else is coerced to its string representation as a human message
//
// The returned flag reports whether any repair occurred so the caller can log
// or alert without failing the request. Running the result through
// ValidateAndRepair again yields the same sequence with repaired=false.
func ValidateAndRepair(entries []any, logger logging.Logger) ([]Message, bool) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	repaired := false
	clean := make([]Message, 0, len(entries))
	for i, entry := range entries {
		switch v := entry.(type) {
		case Message:
			if v.WellFormed() {
				clean = append(clean, v)
				continue
			}
			clean = append(clean, NewHumanMessage(v.Content))
			repaired = true
			logger.Warn("history entry had unknown role, repaired to human", "index", i, "role", string(v.Role))
		case *Message:
			if v != nil && v.WellFormed() {
				clean = append(clean, *v)
				continue
			}
			content := ""
			if v != nil {
				content = v.Content
			}
			clean = append(clean, NewHumanMessage(content))
			repaired = true
			logger.Warn("history entry was a malformed message pointer, repaired to human", "index", i)
		case map[string]any:
			if content, ok := v["content"].(string); ok {
				clean = append(clean, NewHumanMessage(content))
				repaired = true
				logger.Warn("history entry was a mapping, repaired to human message", "index", i)
				continue
			}
			clean = append(clean, NewHumanMessage(fmt.Sprintf("%v", v)))
			repaired = true
			logger.Error("history entry was a mapping without content, coerced to string", "index", i)
		case string:
			clean = append(clean, NewHumanMessage(v))
			repaired = true
			logger.Warn("history entry was a bare string, repaired to human message", "index", i)
		default:
			clean = append(clean, NewHumanMessage(fmt.Sprintf("%v", v)))
			repaired = true
			logger.Error("history entry had unknown shape, coerced to string", "index", i, "type", fmt.Sprintf("%T", v))
		}
	}
	return clean, repaired
}

// RepairHistory fixes partially-formed typed entries that handlers may hand
// back, e.g. a message rebuilt from a deserialized record that lost its role.
// An entry with a missing role but non-empty content is repaired to a human
// message. An entry with neither a known role nor content is unrepairable and
// left in place for AssertWellFormed to reject.
func RepairHistory(history []Message, logger logging.Logger) ([]Message, bool) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	repaired := false
	clean := make([]Message, len(history))
	copy(clean, history)
	for i, msg := range clean {
		if msg.WellFormed() {
			continue
		}
		if msg.Content == "" {
			// Nothing to salvage; the boundary assertion catches it.
			logger.Error("history entry unrepairable", "index", i, "role", string(msg.Role))
			continue
		}
		clean[i] = NewHumanMessage(msg.Content)
		repaired = true
		logger.Warn("history entry had invalid role, repaired to human", "index", i, "role", string(msg.Role))
	}
	return clean, repaired
}

// AssertWellFormed fails with a ContractViolationError when the history is
// empty or any entry is not a well-formed Message. It is the boundary
// assertion invoked immediately before and after each handler call, after
// repair, so a repair that did not fully normalize the data is caught
// immediately rather than propagating.
func AssertWellFormed(history []Message, context string) error {
	if len(history) == 0 {
		return &ContractViolationError{Context: context, Index: -1, Detail: "history is empty"}
	}
	for i, msg := range history {
		if !msg.WellFormed() {
			return &ContractViolationError{
				Context: context,
				Index:   i,
				Detail:  fmt.Sprintf("entry is not a well-formed message (role %q)", string(msg.Role)),
			}
		}
	}
	return nil
}
