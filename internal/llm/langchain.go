package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/longkey1/chatpad/internal/chatpad"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

// Provider names understood by New.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Config defines the configuration interface for the completion client
type Config interface {
	GetModel() string
	GetBaseURL(provider string) (string, error)
	GetToken(provider string) (string, error)
}

// ErrEmptyResponse is returned when the model produced no choices.
var ErrEmptyResponse = errors.New("no response from API")

// Client is a Completer backed by a langchaingo model.
type Client struct {
	model    llms.Model
	provider string
	name     string
	logger   *zap.Logger
}

// New creates a client for the provider named in cfg.GetModel().
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, name, err := chatpad.ParseModelString(cfg.GetModel())
	if err != nil {
		return nil, fmt.Errorf("invalid model format: %w", err)
	}

	token, err := cfg.GetToken(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	baseURL, err := cfg.GetBaseURL(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get base URL: %w", err)
	}

	var model llms.Model
	switch provider {
	case ProviderOpenAI:
		model, err = openai.New(
			openai.WithToken(token),
			openai.WithBaseURL(baseURL),
			openai.WithModel(name),
		)
	case ProviderGemini:
		model, err = googleai.New(ctx,
			googleai.WithAPIKey(token),
			googleai.WithDefaultModel(name),
		)
	case ProviderAnthropic:
		model, err = anthropic.New(
			anthropic.WithToken(token),
			anthropic.WithBaseURL(baseURL),
			anthropic.WithModel(name),
		)
	case ProviderOllama:
		model, err = ollama.New(
			ollama.WithServerURL(baseURL),
			ollama.WithModel(name),
		)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s client: %w", provider, err)
	}

	return NewWithModel(model, provider, name, logger), nil
}

// NewWithModel wraps an already constructed langchaingo model.
func NewWithModel(model llms.Model, provider, name string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		model:    model,
		provider: provider,
		name:     name,
		logger:   logger.With(zap.String("provider", provider), zap.String("model", name)),
	}
}

// Model returns the "provider:model" string the client talks to.
func (c *Client) Model() string {
	return chatpad.FormatModelString(c.provider, c.name)
}

// Complete sends the conversation and waits for the whole reply.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	return c.generate(ctx, req)
}

// Stream sends the conversation and forwards each fragment to onFragment.
func (c *Client) Stream(ctx context.Context, req Request, onFragment func(string) error) (string, error) {
	return c.generate(ctx, req, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
		return onFragment(string(chunk))
	}))
}

func (c *Client) generate(ctx context.Context, req Request, options ...llms.CallOption) (string, error) {
	messages := toMessageContent(req)
	c.logger.Debug("sending completion request", zap.Int("messages", len(messages)))

	resp, err := c.model.GenerateContent(ctx, messages, options...)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("completion received", zap.Int("length", len(resp.Choices[0].Content)))
	return resp.Choices[0].Content, nil
}

func toMessageContent(req Request) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, req.SystemPrompt))
	}
	for _, msg := range req.Messages {
		if msg.Error {
			continue
		}
		role := schema.ChatMessageTypeHuman
		if msg.Role == chatpad.RoleAssistant {
			role = schema.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, msg.Content))
	}
	return messages
}
