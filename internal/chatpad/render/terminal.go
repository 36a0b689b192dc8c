// Package render prints conversations to a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/longkey1/chatpad/internal/chatpad"
)

// Terminal is a stream.Display that writes messages to w as they grow.
// A terminal cannot take text back, so a discarded reply is marked rather
// than erased.
type Terminal struct {
	mu  sync.Mutex
	w   io.Writer
	cur string // ID of the message being written
	n   int    // bytes of cur already written
	// ShowUser controls whether user messages are echoed.
	ShowUser bool

	label     lipgloss.Style
	userLabel lipgloss.Style
	errStyle  lipgloss.Style
	dim       lipgloss.Style
}

// NewTerminal creates a Terminal writing to w. Colours are only used when w
// is a terminal.
func NewTerminal(w io.Writer) *Terminal {
	r := lipgloss.NewRenderer(w)
	return &Terminal{
		w:         w,
		label:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		userLabel: r.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		errStyle:  r.NewStyle().Foreground(lipgloss.Color("203")),
		dim:       r.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
	}
}

// Label returns the speaker label printed before a message.
func Label(msg chatpad.Message) string {
	switch {
	case msg.Error:
		return "Error"
	case msg.IsUser():
		return "You"
	default:
		return "Assistant"
	}
}

func (t *Terminal) Show(msg chatpad.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if msg.IsUser() && !t.ShowUser {
		return
	}

	if msg.ID != t.cur {
		t.cur = msg.ID
		t.n = 0
		fmt.Fprintln(t.w, t.styleLabel(msg).Render(Label(msg)+":"))
	}

	if len(msg.Content) <= t.n {
		return
	}
	suffix := msg.Content[t.n:]
	t.n = len(msg.Content)
	if msg.Error {
		suffix = t.errStyle.Render(suffix)
	}
	fmt.Fprint(t.w, suffix)
}

func (t *Terminal) Finish(msg chatpad.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if msg.IsUser() && !t.ShowUser {
		return
	}
	if msg.ID == t.cur {
		fmt.Fprint(t.w, "\n\n")
		t.cur = ""
		t.n = 0
	}
}

func (t *Terminal) Discard(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id != t.cur {
		return
	}
	if t.n > 0 {
		fmt.Fprintln(t.w)
		fmt.Fprintln(t.w, t.dim.Render("(reply discarded)"))
	}
	t.cur = ""
	t.n = 0
}

// Conversation prints every message of conv.
func (t *Terminal) Conversation(conv *chatpad.Conversation) {
	for _, msg := range conv.Messages {
		t.mu.Lock()
		fmt.Fprintln(t.w, t.styleLabel(msg).Render(Label(msg)+":")+" "+t.dim.Render(chatpad.ShortID(msg.ID)))
		content := msg.Content
		if msg.Error {
			content = t.errStyle.Render(content)
		}
		fmt.Fprint(t.w, strings.TrimRight(content, "\n")+"\n\n")
		t.mu.Unlock()
	}
}

func (t *Terminal) styleLabel(msg chatpad.Message) lipgloss.Style {
	switch {
	case msg.Error:
		return t.errStyle.Bold(true)
	case msg.IsUser():
		return t.userLabel
	default:
		return t.label
	}
}
