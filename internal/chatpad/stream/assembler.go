// Package stream assembles a streamed completion into a single assistant message.
package stream

import (
	"strings"
	"time"

	"github.com/longkey1/chatpad/internal/chatpad"
)

// Display receives the visible state of messages while a reply is assembled.
type Display interface {
	// Show publishes the current content of a message. It is called with the
	// same message ID every time the message grows.
	Show(msg chatpad.Message)
	// Finish marks a message as complete.
	Finish(msg chatpad.Message)
	// Discard withdraws a message that was shown but will not be kept.
	Discard(id string)
}

// Assembler accumulates fragments into one placeholder message.
// An Assembler is used for a single reply and is not safe for concurrent use.
type Assembler struct {
	display     Display
	placeholder chatpad.Message
	buf         strings.Builder
	fragments   int
}

// NewAssembler creates the placeholder assistant message and shows it empty.
func NewAssembler(display Display) *Assembler {
	if display == nil {
		display = Nop{}
	}
	a := &Assembler{
		display:     display,
		placeholder: chatpad.NewMessage(chatpad.RoleAssistant, ""),
	}
	display.Show(a.placeholder)
	return a
}

// Write appends a fragment and publishes the accumulated content.
func (a *Assembler) Write(fragment string) error {
	if fragment == "" {
		return nil
	}
	a.buf.WriteString(fragment)
	a.fragments++
	a.display.Show(a.current())
	return nil
}

// Content returns everything written so far.
func (a *Assembler) Content() string {
	return a.buf.String()
}

// Fragments returns the number of non-empty fragments written.
func (a *Assembler) Fragments() int {
	return a.fragments
}

// Finish returns the final assistant message built from the accumulated content.
func (a *Assembler) Finish() chatpad.Message {
	msg := a.current()
	msg.Timestamp = time.Now()
	a.display.Finish(msg)
	return msg
}

// Fail drops the partial reply from the display and returns a synthetic error
// message in its place.
func (a *Assembler) Fail(text string) chatpad.Message {
	a.buf.Reset()
	a.display.Discard(a.placeholder.ID)
	msg := chatpad.NewErrorMessage(text)
	a.display.Show(msg)
	a.display.Finish(msg)
	return msg
}

func (a *Assembler) current() chatpad.Message {
	msg := a.placeholder
	msg.Content = a.buf.String()
	return msg
}
