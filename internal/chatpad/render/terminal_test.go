package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/longkey1/chatpad/internal/chatpad"
	"github.com/longkey1/chatpad/internal/chatpad/stream"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		msg  chatpad.Message
		want string
	}{
		{name: "user", msg: chatpad.NewMessage(chatpad.RoleUser, "hi"), want: "You"},
		{name: "assistant", msg: chatpad.NewMessage(chatpad.RoleAssistant, "hello"), want: "Assistant"},
		{name: "error", msg: chatpad.NewErrorMessage("boom"), want: "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.msg); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTerminalStreamsIncrementally(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	a := stream.NewAssembler(term)
	a.Write("Hel")
	a.Write("lo")
	a.Finish()

	if got, want := buf.String(), "Assistant:\nHello\n\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestTerminalHidesUserByDefault(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	msg := chatpad.NewMessage(chatpad.RoleUser, "question")
	term.Show(msg)
	term.Finish(msg)
	if buf.Len() != 0 {
		t.Errorf("output = %q, want nothing", buf.String())
	}

	term.ShowUser = true
	term.Show(msg)
	term.Finish(msg)
	if !strings.Contains(buf.String(), "You:\nquestion") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTerminalFailure(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	a := stream.NewAssembler(term)
	a.Write("partial")
	a.Fail("An error occurred while processing your request.")

	out := buf.String()
	if !strings.Contains(out, "(reply discarded)") {
		t.Errorf("output does not mark discarded reply: %q", out)
	}
	if !strings.HasSuffix(out, "Error:\nAn error occurred while processing your request.\n\n") {
		t.Errorf("output = %q", out)
	}
}

func TestTerminalFailureBeforeFirstFragment(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	a := stream.NewAssembler(term)
	a.Fail("boom")

	if strings.Contains(buf.String(), "discarded") {
		t.Errorf("empty reply marked as discarded: %q", buf.String())
	}
}

func TestConversation(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	conv := chatpad.NewConversation("hi")
	user := chatpad.NewMessage(chatpad.RoleUser, "hi")
	conv.Messages = append(conv.Messages, user, chatpad.NewMessage(chatpad.RoleAssistant, "hello\n"))

	term.Conversation(conv)

	out := buf.String()
	want := "You: " + chatpad.ShortID(user.ID) + "\nhi\n\n"
	if !strings.HasPrefix(out, want) {
		t.Errorf("output = %q, want prefix %q", out, want)
	}
	if !strings.HasSuffix(out, "hello\n\n") {
		t.Errorf("output = %q", out)
	}
}
