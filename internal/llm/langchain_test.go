package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/longkey1/chatpad/internal/chatpad"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap/zaptest"
)

// fakeModel replays a fixed list of chunks through the streaming callback.
type fakeModel struct {
	chunks   []string
	failAt   int // fail before sending chunk at this index; -1 = never
	err      error
	received []llms.MessageContent
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.received = messages

	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	var full strings.Builder
	for i, chunk := range m.chunks {
		if i == m.failAt {
			return nil, m.err
		}
		if opts.StreamingFunc != nil {
			if err := opts.StreamingFunc(ctx, []byte(chunk)); err != nil {
				return nil, err
			}
		}
		full.WriteString(chunk)
	}
	if m.failAt >= len(m.chunks) {
		return nil, m.err
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: full.String()}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestStream(t *testing.T) {
	model := &fakeModel{chunks: []string{"Hel", "lo"}, failAt: -1}
	client := NewWithModel(model, ProviderOpenAI, "gpt-4.1", zaptest.NewLogger(t))

	var fragments []string
	got, err := client.Stream(context.Background(), Request{
		Messages: []chatpad.Message{chatpad.NewMessage(chatpad.RoleUser, "hi")},
	}, func(s string) error {
		fragments = append(fragments, s)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if got != "Hello" {
		t.Errorf("Stream() = %q, want Hello", got)
	}
	if strings.Join(fragments, "|") != "Hel|lo" {
		t.Errorf("fragments = %v, want [Hel lo]", fragments)
	}
}

func TestStreamFailureMidway(t *testing.T) {
	transportErr := errors.New("connection reset")
	model := &fakeModel{chunks: []string{"Hel", "lo"}, failAt: 1, err: transportErr}
	client := NewWithModel(model, ProviderOpenAI, "gpt-4.1", zaptest.NewLogger(t))

	var fragments []string
	_, err := client.Stream(context.Background(), Request{}, func(s string) error {
		fragments = append(fragments, s)
		return nil
	})
	if !errors.Is(err, transportErr) {
		t.Errorf("Stream() error = %v, want %v", err, transportErr)
	}
	if len(fragments) != 1 {
		t.Errorf("received %d fragments before failure, want 1", len(fragments))
	}
}

func TestStreamCallbackAborts(t *testing.T) {
	stop := errors.New("stop")
	model := &fakeModel{chunks: []string{"a", "b", "c"}, failAt: -1}
	client := NewWithModel(model, ProviderOpenAI, "gpt-4.1", nil)

	calls := 0
	_, err := client.Stream(context.Background(), Request{}, func(string) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("Stream() error = %v, want %v", err, stop)
	}
	if calls != 1 {
		t.Errorf("callback called %d times, want 1", calls)
	}
}

func TestComplete(t *testing.T) {
	model := &fakeModel{chunks: []string{"whole ", "reply"}, failAt: -1}
	client := NewWithModel(model, ProviderOllama, "llama3.1:8b", nil)

	got, err := client.Complete(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "whole reply" {
		t.Errorf("Complete() = %q, want %q", got, "whole reply")
	}
	if client.Model() != "ollama:llama3.1:8b" {
		t.Errorf("Model() = %q", client.Model())
	}
}

func TestMessageConversion(t *testing.T) {
	model := &fakeModel{chunks: []string{"ok"}, failAt: -1}
	client := NewWithModel(model, ProviderOpenAI, "gpt-4.1", nil)

	req := Request{
		SystemPrompt: "Be brief.",
		Messages: []chatpad.Message{
			chatpad.NewMessage(chatpad.RoleUser, "q1"),
			chatpad.NewErrorMessage("An error occurred while processing your request."),
			chatpad.NewMessage(chatpad.RoleUser, "q1 again"),
			chatpad.NewMessage(chatpad.RoleAssistant, "a1"),
			chatpad.NewMessage(chatpad.RoleUser, "q2"),
		},
	}
	if _, err := client.Complete(context.Background(), req); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	wantRoles := []schema.ChatMessageType{
		schema.ChatMessageTypeSystem,
		schema.ChatMessageTypeHuman,
		schema.ChatMessageTypeHuman,
		schema.ChatMessageTypeAI,
		schema.ChatMessageTypeHuman,
	}
	if len(model.received) != len(wantRoles) {
		t.Fatalf("sent %d messages, want %d", len(model.received), len(wantRoles))
	}
	for i, msg := range model.received {
		if msg.Role != wantRoles[i] {
			t.Errorf("message %d role = %s, want %s", i, msg.Role, wantRoles[i])
		}
	}
}

func TestNewRejectsBadModel(t *testing.T) {
	tests := []struct {
		name  string
		model string
	}{
		{name: "missing provider", model: "gpt-4.1"},
		{name: "unknown provider", model: "acme:model-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), staticConfig{model: tt.model}, nil)
			if err == nil {
				t.Error("New() succeeded, want error")
			}
		})
	}
}

type staticConfig struct {
	model string
}

func (c staticConfig) GetModel() string { return c.model }

func (c staticConfig) GetBaseURL(provider string) (string, error) {
	if provider == "acme" {
		return "", errors.New("unsupported provider: acme")
	}
	return "http://localhost", nil
}

func (c staticConfig) GetToken(provider string) (string, error) {
	if provider == "acme" {
		return "", errors.New("unsupported provider: acme")
	}
	return "token", nil
}
