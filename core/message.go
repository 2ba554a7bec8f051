package core

// Role identifies the author side of a conversation message.
type Role string

const (
	// RoleHuman marks a message written by the customer.
	RoleHuman Role = "human"
	// RoleAssistant marks a message produced by a workflow handler.
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the conversation history. Only well-formed
// messages (known role) may persist past a validation boundary; raw strings
// or loosely-typed records are repaired or rejected by the validator.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewHumanMessage creates a customer-authored message.
func NewHumanMessage(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// NewAssistantMessage creates a handler-authored message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// WellFormed reports whether the message conforms to the role/content shape
// contract. The content may be empty; the role must be a known value.
func (m Message) WellFormed() bool {
	return m.Role == RoleHuman || m.Role == RoleAssistant
}
