package chatpad

import (
	"time"

	"github.com/google/uuid"
)

// Roles a message can have.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a conversation
type Message struct {
	ID        string    `json:"id"`              // UUIDv7
	Role      string    `json:"role"`            // "user" or "assistant"
	Content   string    `json:"content"`         // Message content
	Error     bool      `json:"error,omitempty"` // Synthetic reply standing in for a failed remote call
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh identifier.
func NewMessage(role, content string) Message {
	return Message{
		ID:        newID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewErrorMessage creates the assistant-style message shown when a remote call fails.
func NewErrorMessage(text string) Message {
	msg := NewMessage(RoleAssistant, text)
	msg.Error = true
	return msg
}

// IsUser reports whether the message was written by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// newID returns a time-ordered UUID. Two calls within the same millisecond
// still produce distinct values.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
