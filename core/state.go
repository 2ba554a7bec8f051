package core

// ConversationState is the unit of state passed between handlers. It is
// created once per incoming message, threaded through handler/validate/route
// cycles and discarded after the engine extracts the final response.
//
// Contract:
//   - History is append-only within a run; insertion order is chronological
//   - Metadata keys already present are never silently deleted by a handler
//     that does not own them
//   - NextDirective, once set to the terminate sentinel, is final
type ConversationState struct {
	History       []Message      `json:"history"`
	ActiveHandler HandlerID      `json:"active_handler"`
	Metadata      map[string]any `json:"metadata"`
	NextDirective Directive      `json:"next_directive,omitempty"`

	// origin is the seeded customer message, captured once so handlers that
	// need the original intent do not rely on positional history indexing.
	origin Message
}

// MetaImageURL is the metadata key carrying an uploaded image reference.
const MetaImageURL = "image_url"

// MetaCategory is the metadata key recording the classified issue category.
const MetaCategory = "category"

// MetaRequiresHuman is the metadata key flagging a run for human follow-up.
const MetaRequiresHuman = "requires_human"

// NewConversationState seeds a state with a single human message, the given
// entry handler and caller-supplied metadata. The directive starts unset.
func NewConversationState(text string, entry HandlerID, metadata map[string]any) *ConversationState {
	if metadata == nil {
		metadata = map[string]any{}
	}
	origin := NewHumanMessage(text)
	return &ConversationState{
		History:       []Message{origin},
		ActiveHandler: entry,
		Metadata:      metadata,
		NextDirective: DirectiveNone,
		origin:        origin,
	}
}

// OriginalMessage returns the customer message that started the run. It is
// stable across handler invocations regardless of how many messages handlers
// append.
func (s *ConversationState) OriginalMessage() Message { return s.origin }

// Append adds a message to the history.
func (s *ConversationState) Append(msg Message) {
	s.History = append(s.History, msg)
}

// LastMessage returns the most recent history entry.
func (s *ConversationState) LastMessage() (Message, bool) {
	if len(s.History) == 0 {
		return Message{}, false
	}
	return s.History[len(s.History)-1], true
}

// SetMeta stores a metadata value.
func (s *ConversationState) SetMeta(key string, value any) {
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	s.Metadata[key] = value
}

// Meta returns a metadata value and an existence flag.
func (s *ConversationState) Meta(key string) (any, bool) {
	v, ok := s.Metadata[key]
	return v, ok
}

// MetaString returns a metadata value as a string. Non-string values report
// absence so callers treat them like a missing key.
func (s *ConversationState) MetaString(key string) (string, bool) {
	v, ok := s.Metadata[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Clone returns a deep copy of the state safe for independent mutation.
func (s *ConversationState) Clone() *ConversationState {
	clone := &ConversationState{
		History:       make([]Message, len(s.History)),
		ActiveHandler: s.ActiveHandler,
		Metadata:      make(map[string]any, len(s.Metadata)),
		NextDirective: s.NextDirective,
		origin:        s.origin,
	}
	copy(clone.History, s.History)
	for k, v := range s.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}
