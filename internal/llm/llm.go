// Package llm sends conversations to a hosted language model, either as a
// single completion or as a stream of text fragments.
package llm

import (
	"context"

	"github.com/longkey1/chatpad/internal/chatpad"
)

// Request is one completion request: an optional system prompt followed by
// the conversation so far, oldest first.
type Request struct {
	SystemPrompt string
	Messages     []chatpad.Message
}

// Completer produces assistant replies.
type Completer interface {
	// Complete returns the whole reply at once.
	Complete(ctx context.Context, req Request) (string, error)
	// Stream calls onFragment for every piece of text as it arrives and
	// returns the full reply. A non-nil error from onFragment aborts the stream.
	Stream(ctx context.Context, req Request, onFragment func(string) error) (string, error)
}
