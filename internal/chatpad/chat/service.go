// Package chat ties the conversation store, the completion client and the
// streaming assembler together.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/longkey1/chatpad/internal/chatpad"
	"github.com/longkey1/chatpad/internal/chatpad/conversation"
	"github.com/longkey1/chatpad/internal/chatpad/stream"
	"github.com/longkey1/chatpad/internal/llm"
	"go.uber.org/zap"
)

// Error texts shown in place of a reply when the remote call fails.
const (
	SendErrorText = "An error occurred while processing your request."
	EditErrorText = "An error occurred while processing your edited message."
)

var (
	// ErrBusy is returned when a reply is already being generated for the conversation.
	ErrBusy = errors.New("a reply is already in progress for this conversation")
	// ErrNotEditable is returned when editing a message that was not written by the user.
	ErrNotEditable = errors.New("only user messages can be edited")
	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("message is empty")
)

// CompleterFactory returns the completion client for a "provider:model"
// string. An empty model selects the configured default.
type CompleterFactory func(ctx context.Context, model string) (llm.Completer, error)

// Service runs the send and edit flows against one conversation store.
type Service struct {
	store     *conversation.Store
	completer CompleterFactory
	logger    *zap.Logger
	stream    bool

	mu       sync.Mutex
	inflight map[string]struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithStreaming selects between streamed and single-shot completions.
func WithStreaming(enabled bool) Option {
	return func(s *Service) {
		s.stream = enabled
	}
}

// NewService creates a chat service. Replies are streamed unless disabled.
func NewService(store *conversation.Store, completer CompleterFactory, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:     store,
		completer: completer,
		logger:    logger,
		stream:    true,
		inflight:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates an empty conversation that uses the given model and system
// prompt. The conversation is named after text.
func (s *Service) Start(ctx context.Context, text, model, systemPrompt, templateName string) (*chatpad.Conversation, error) {
	conv := s.store.Create(ctx, text)
	if model == "" && systemPrompt == "" && templateName == "" {
		return conv, nil
	}
	return s.store.Configure(ctx, conv.ID, model, systemPrompt, templateName)
}

// Send appends a user message and generates the assistant reply. An empty
// conversationID starts a new conversation named after text.
//
// A failed remote call is not returned as an error: the partial reply is
// dropped and a single error message is appended instead.
func (s *Service) Send(ctx context.Context, conversationID, text string, display stream.Display) (*chatpad.Conversation, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}

	if conversationID == "" {
		conv, err := s.Start(ctx, text, "", "", "")
		if err != nil {
			return nil, err
		}
		conversationID = conv.ID
	}

	if err := s.acquire(conversationID); err != nil {
		return nil, err
	}
	defer s.release(conversationID)

	userMsg := chatpad.NewMessage(chatpad.RoleUser, text)
	conv, err := s.store.Append(ctx, conversationID, userMsg)
	if err != nil {
		return nil, err
	}
	if display != nil {
		display.Show(userMsg)
		display.Finish(userMsg)
	}

	return s.reply(ctx, conv, display, SendErrorText)
}

// Edit replaces the content of a user message, drops every later message and
// generates a new reply. An unknown messageID leaves the conversation as it is.
func (s *Service) Edit(ctx context.Context, conversationID, messageID, text string, display stream.Display) (*chatpad.Conversation, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}

	conv, ok := s.store.Load(conversationID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", conversation.ErrNotFound, conversationID)
	}
	if idx := conv.IndexOf(messageID); idx >= 0 && !conv.Messages[idx].IsUser() {
		return nil, ErrNotEditable
	}

	if err := s.acquire(conversationID); err != nil {
		return nil, err
	}
	defer s.release(conversationID)

	conv, edited, err := s.store.EditAndTruncate(ctx, conversationID, messageID, text)
	if err != nil {
		return nil, err
	}
	if !edited {
		s.logger.Debug("edit ignored, message not found",
			zap.String("conversation", conversationID),
			zap.String("message", messageID))
		return conv, nil
	}

	return s.reply(ctx, conv, display, EditErrorText)
}

func (s *Service) reply(ctx context.Context, conv *chatpad.Conversation, display stream.Display, errorText string) (*chatpad.Conversation, error) {
	logger := s.logger.With(zap.String("conversation", conv.ID))

	// Persisting the outcome must not depend on the caller still waiting
	persistCtx := context.WithoutCancel(ctx)

	req := llm.Request{
		SystemPrompt: conv.SystemPrompt,
		Messages:     conv.History(),
	}

	assembler := stream.NewAssembler(display)

	completer, err := s.completer(ctx, conv.Model)
	if err == nil {
		if s.stream {
			_, err = completer.Stream(ctx, req, assembler.Write)
		} else {
			var content string
			content, err = completer.Complete(ctx, req)
			if err == nil {
				err = assembler.Write(content)
			}
		}
	}

	if err != nil {
		logger.Error("completion failed",
			zap.Int("fragments", assembler.Fragments()),
			zap.Error(err))
		return s.store.Append(persistCtx, conv.ID, assembler.Fail(errorText))
	}

	return s.store.Append(persistCtx, conv.ID, assembler.Finish())
}

func (s *Service) acquire(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[conversationID]; busy {
		return ErrBusy
	}
	s.inflight[conversationID] = struct{}{}
	return nil
}

func (s *Service) release(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, conversationID)
}
