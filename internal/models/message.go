package models

import "time"

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Kind distinguishes a final message from the in-flight placeholder
type Kind int

const (
	KindFinal Kind = iota
	KindPending
)

// Message is one entry of the conversation log.
// A pending message stands in for an assistant reply that is still being
// generated; it has no content and is never sent back to the backend.
type Message struct {
	Kind      Kind
	Role      Role
	Content   string
	Failed    bool // Assistant fallback written after a failed turn
	Timestamp time.Time
}

// NewUserMessage creates a final user message
func NewUserMessage(content string) Message {
	return Message{Kind: KindFinal, Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// NewAssistantMessage creates a final assistant message
func NewAssistantMessage(content string) Message {
	return Message{Kind: KindFinal, Role: RoleAssistant, Content: content, Timestamp: time.Now()}
}

// NewFallbackMessage creates the assistant message that replaces the
// placeholder when a turn fails
func NewFallbackMessage(content string) Message {
	m := NewAssistantMessage(content)
	m.Failed = true
	return m
}

// NewPendingMessage creates the assistant placeholder for an in-flight turn
func NewPendingMessage() Message {
	return Message{Kind: KindPending, Role: RoleAssistant, Timestamp: time.Now()}
}

// IsPending reports whether m is the in-flight placeholder
func (m Message) IsPending() bool {
	return m.Kind == KindPending
}

// Wire converts a final message to its wire shape
func (m Message) Wire() WireMessage {
	return WireMessage{Role: m.Role, Content: m.Content}
}

// WireMessage is the {role, content} pair exchanged with the chat endpoint
type WireMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message     string        `json:"message"`
	ChatHistory []WireMessage `json:"chat_history,omitempty"`
}

// ChatResponse is the success body of POST /api/chat
type ChatResponse struct {
	Content string `json:"content"`
}

// ErrorResponse is the failure body of POST /api/chat
type ErrorResponse struct {
	Error string `json:"error"`
}
