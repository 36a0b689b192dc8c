// Package chatpad provides the core conversation types shared by the stores,
// the chat service and the command line front end.
package chatpad

import (
	"fmt"
	"strings"
	"time"
)

// NameLength is the number of characters of the first message used as a
// conversation's display name.
const NameLength = 30

// Conversation is an ordered thread of user/assistant messages with a stable identifier.
type Conversation struct {
	ID           string    `json:"id"`            // UUIDv7, time ordered
	Name         string    `json:"name"`          // First NameLength characters of the first message
	Description  string    `json:"description"`   // Full text of the first message
	Model        string    `json:"model"`         // "provider:model" used for replies (empty = configured default)
	SystemPrompt string    `json:"system_prompt"` // System prompt snapshot (can be empty)
	TemplateName string    `json:"template_name"` // Prompt template name (reference info, can be empty)
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Messages     []Message `json:"messages"`
}

// NewConversation creates a conversation named after the first message text.
func NewConversation(firstText string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:          newID(),
		Name:        ConversationName(firstText),
		Description: firstText,
		CreatedAt:   now,
		UpdatedAt:   now,
		Messages:    []Message{},
	}
}

// ConversationName returns the first NameLength characters of text.
func ConversationName(text string) string {
	runes := []rune(text)
	if len(runes) <= NameLength {
		return text
	}
	return string(runes[:NameLength])
}

// Clone returns a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	return &clone
}

// IndexOf returns the index of the message with the given ID, or -1.
func (c *Conversation) IndexOf(messageID string) int {
	for i, msg := range c.Messages {
		if msg.ID == messageID {
			return i
		}
	}
	return -1
}

// FindMessage resolves a full message ID or its short form to a message ID.
func (c *Conversation) FindMessage(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	for _, msg := range c.Messages {
		if msg.ID == ref || ShortID(msg.ID) == ref {
			return msg.ID, true
		}
	}
	return "", false
}

// History returns the messages that are sent to the model, in send order.
// Synthetic error replies are left out.
func (c *Conversation) History() []Message {
	history := make([]Message, 0, len(c.Messages))
	for _, msg := range c.Messages {
		if msg.Error {
			continue
		}
		history = append(history, msg)
	}
	return history
}

// ShortIDLength is the number of characters shown for a shortened ID.
const ShortIDLength = 8

// ShortID shortens id to its last ShortIDLength characters. The leading
// characters of a UUIDv7 encode the creation time and repeat across IDs
// created close together; the tail is random.
func ShortID(id string) string {
	if len(id) > ShortIDLength {
		return id[len(id)-ShortIDLength:]
	}
	return id
}

// GetShortID returns the shortened conversation ID
func (c *Conversation) GetShortID() string {
	return ShortID(c.ID)
}

// GetDisplayName returns the name, falling back to the short ID.
func (c *Conversation) GetDisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.GetShortID()
}

// MessageCount returns the number of messages in the conversation
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// ParseModelString parses a model string in "provider:model" format.
// Returns (provider, model, error).
//
// Example:
//
//	provider, model, err := ParseModelString("openai:gpt-4")
//	// provider = "openai", model = "gpt-4"
func ParseModelString(modelStr string) (string, string, error) {
	parts := strings.SplitN(modelStr, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid model format: %s (expected format: provider:model, e.g., openai:gpt-4.1)", modelStr)
	}

	provider := strings.TrimSpace(parts[0])
	model := strings.TrimSpace(parts[1])

	if provider == "" || model == "" {
		return "", "", fmt.Errorf("provider and model cannot be empty")
	}

	return provider, model, nil
}

// FormatModelString formats provider and model into "provider:model" format.
func FormatModelString(provider, model string) string {
	return fmt.Sprintf("%s:%s", provider, model)
}
