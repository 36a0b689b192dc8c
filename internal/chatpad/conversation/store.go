// Package conversation keeps the in-memory list of conversations and mirrors
// every change to a kv.Store.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/longkey1/chatpad/internal/chatpad"
	"github.com/longkey1/chatpad/internal/chatpad/kv"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no conversation has the requested ID.
var ErrNotFound = errors.New("conversation not found")

// Latest is the special prefix that selects the most recently updated conversation.
const Latest = "latest"

// MinPrefixLength is the shortest ID prefix Find accepts.
const MinPrefixLength = 4

// AmbiguousIDError is returned when multiple conversations match a prefix
type AmbiguousIDError struct {
	Prefix  string
	Matches []*chatpad.Conversation
}

func (e *AmbiguousIDError) Error() string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Ambiguous conversation ID %q. Multiple matches found:", e.Prefix))
	for _, match := range e.Matches {
		lines = append(lines, fmt.Sprintf("- %s (%s, %s, %d messages)",
			match.GetShortID(),
			match.GetDisplayName(),
			match.CreatedAt.Format("2006-01-02"),
			match.MessageCount()))
	}
	lines = append(lines, "")
	lines = append(lines, "Please use a longer prefix or run 'chatpad conversations list'.")
	return strings.Join(lines, "\n")
}

// Store holds every conversation in memory, ordered by creation time.
// Mutations are written through to the backing kv.Store; a failed write is
// logged and the in-memory state is kept.
type Store struct {
	mu            sync.RWMutex
	kv            kv.Store
	logger        *zap.Logger
	conversations []*chatpad.Conversation
}

// Open loads every stored conversation. Entries that cannot be decoded are
// logged and skipped.
func Open(ctx context.Context, store kv.Store, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	keys, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	s := &Store{kv: store, logger: logger}
	for _, key := range keys {
		data, err := store.Get(ctx, key)
		if err != nil {
			logger.Warn("skipping unreadable conversation", zap.String("id", key), zap.Error(err))
			continue
		}
		var conv chatpad.Conversation
		if err := json.Unmarshal(data, &conv); err != nil {
			logger.Warn("skipping corrupted conversation", zap.String("id", key), zap.Error(err))
			continue
		}
		if conv.ID == "" {
			conv.ID = key
		}
		s.conversations = append(s.conversations, &conv)
	}

	sort.SliceStable(s.conversations, func(i, j int) bool {
		return s.conversations[i].CreatedAt.Before(s.conversations[j].CreatedAt)
	})

	logger.Debug("conversations loaded", zap.Int("count", len(s.conversations)))
	return s, nil
}

// Create starts a new conversation named after firstMessageText.
// The message itself is not added; callers Append it.
func (s *Store) Create(ctx context.Context, firstMessageText string) *chatpad.Conversation {
	conv := chatpad.NewConversation(firstMessageText)

	s.mu.Lock()
	s.conversations = append(s.conversations, conv)
	s.persist(ctx, conv)
	clone := conv.Clone()
	s.mu.Unlock()

	return clone
}

// Configure sets the model and system prompt used for replies in a conversation.
func (s *Store) Configure(ctx context.Context, id, model, systemPrompt, templateName string) (*chatpad.Conversation, error) {
	return s.update(ctx, id, func(conv *chatpad.Conversation) {
		conv.Model = model
		conv.SystemPrompt = systemPrompt
		conv.TemplateName = templateName
	})
}

// Append adds msg to the end of the conversation.
func (s *Store) Append(ctx context.Context, id string, msg chatpad.Message) (*chatpad.Conversation, error) {
	return s.update(ctx, id, func(conv *chatpad.Conversation) {
		conv.Messages = append(conv.Messages, msg)
	})
}

// EditAndTruncate replaces the content of the message with messageID and
// drops every message after it. The returned flag is false, and nothing is
// changed, when the conversation has no such message.
func (s *Store) EditAndTruncate(ctx context.Context, id, messageID, newText string) (*chatpad.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(id)
	if conv == nil {
		return nil, false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	idx := conv.IndexOf(messageID)
	if idx < 0 {
		return conv.Clone(), false, nil
	}

	messages := make([]chatpad.Message, idx+1)
	copy(messages, conv.Messages[:idx+1])
	messages[idx].Content = newText
	conv.Messages = messages
	conv.UpdatedAt = time.Now()

	s.persist(ctx, conv)
	return conv.Clone(), true, nil
}

// Rename changes the display name of a conversation.
func (s *Store) Rename(ctx context.Context, id, name string) (*chatpad.Conversation, error) {
	return s.update(ctx, id, func(conv *chatpad.Conversation) {
		conv.Name = name
	})
}

// Load returns the conversation with the given ID.
func (s *Store) Load(id string) (*chatpad.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv := s.find(id)
	if conv == nil {
		return nil, false
	}
	return conv.Clone(), true
}

// Delete removes a conversation from memory and from the backing store.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, conv := range s.conversations {
		if conv.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
	if err := s.kv.Delete(ctx, id); err != nil && !errors.Is(err, kv.ErrNotFound) {
		s.logger.Error("failed to delete stored conversation", zap.String("id", id), zap.Error(err))
	}
	return nil
}

// List returns all conversations sorted by UpdatedAt (newest first)
func (s *Store) List() []*chatpad.Conversation {
	s.mu.RLock()
	list := make([]*chatpad.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		list = append(list, conv.Clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
	return list
}

// Find looks a conversation up by a fragment of its ID (minimum 4
// characters) taken from either end, so both a prefix and the short ID work.
// Returns *AmbiguousIDError if multiple conversations match.
// Special case: "latest" returns the most recently updated conversation.
func (s *Store) Find(prefix string) (*chatpad.Conversation, error) {
	if prefix == Latest {
		list := s.List()
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: no conversations yet\n\nStart one with: chatpad chat \"your message\"", ErrNotFound)
		}
		return list[0], nil
	}

	if len(prefix) < MinPrefixLength {
		return nil, fmt.Errorf("conversation ID prefix must be at least %d characters (got %d)", MinPrefixLength, len(prefix))
	}

	if conv, ok := s.Load(prefix); ok {
		return conv, nil
	}

	var matches []*chatpad.Conversation
	for _, conv := range s.List() {
		if strings.HasPrefix(conv.ID, prefix) || strings.HasSuffix(conv.ID, prefix) {
			matches = append(matches, conv)
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s\n\nRun 'chatpad conversations list' to see available conversations.", ErrNotFound, prefix)
	}

	if len(matches) > 1 {
		return nil, &AmbiguousIDError{
			Prefix:  prefix,
			Matches: matches,
		}
	}

	return matches[0], nil
}

func (s *Store) update(ctx context.Context, id string, mutate func(*chatpad.Conversation)) (*chatpad.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(id)
	if conv == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	mutate(conv)
	conv.UpdatedAt = time.Now()

	s.persist(ctx, conv)
	return conv.Clone(), nil
}

// find must be called with s.mu held.
func (s *Store) find(id string) *chatpad.Conversation {
	for _, conv := range s.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context, conv *chatpad.Conversation) {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		s.logger.Error("failed to serialize conversation", zap.String("id", conv.ID), zap.Error(err))
		return
	}
	if err := s.kv.Put(ctx, conv.ID, data); err != nil {
		s.logger.Error("failed to save conversation", zap.String("id", conv.ID), zap.Error(err))
	}
}
