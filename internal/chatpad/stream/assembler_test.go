package stream

import (
	"testing"

	"github.com/longkey1/chatpad/internal/chatpad"
)

func TestAssemble(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      string
		wantShown []string
	}{
		{
			name:      "two fragments",
			fragments: []string{"Hel", "lo"},
			want:      "Hello",
			wantShown: []string{"", "Hel", "Hello"},
		},
		{
			name:      "empty fragments skipped",
			fragments: []string{"", "a", "", "b"},
			want:      "ab",
			wantShown: []string{"", "a", "ab"},
		},
		{
			name:      "no fragments",
			fragments: nil,
			want:      "",
			wantShown: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Recorder{}
			a := NewAssembler(rec)
			for _, f := range tt.fragments {
				if err := a.Write(f); err != nil {
					t.Fatalf("Write() error = %v", err)
				}
			}
			msg := a.Finish()

			if msg.Content != tt.want {
				t.Errorf("Finish().Content = %q, want %q", msg.Content, tt.want)
			}
			if msg.Role != chatpad.RoleAssistant {
				t.Errorf("Finish().Role = %q, want assistant", msg.Role)
			}
			if len(rec.States) != len(tt.wantShown) {
				t.Fatalf("shown %d states, want %d", len(rec.States), len(tt.wantShown))
			}
			for i, state := range rec.States {
				if state.Content != tt.wantShown[i] {
					t.Errorf("state %d = %q, want %q", i, state.Content, tt.wantShown[i])
				}
				if state.ID != msg.ID {
					t.Errorf("state %d has ID %s, want placeholder ID %s", i, state.ID, msg.ID)
				}
			}
			if len(rec.Finished) != 1 || rec.Finished[0].Content != tt.want {
				t.Errorf("Finished = %+v, want one message with %q", rec.Finished, tt.want)
			}
		})
	}
}

func TestDisplayedContentMatchesFinal(t *testing.T) {
	rec := &Recorder{}
	a := NewAssembler(rec)
	a.Write("Hel")
	a.Write("lo")
	final := a.Finish()

	visible := rec.Visible()
	if len(visible) != 1 {
		t.Fatalf("visible messages = %d, want 1", len(visible))
	}
	if visible[0].Content != "Hello" || final.Content != "Hello" {
		t.Errorf("displayed %q, stored %q, want both Hello", visible[0].Content, final.Content)
	}
}

func TestFailDiscardsPartial(t *testing.T) {
	rec := &Recorder{}
	a := NewAssembler(rec)
	a.Write("partial ans")

	msg := a.Fail("An error occurred while processing your request.")

	if !msg.Error {
		t.Error("Fail() message is not marked as error")
	}
	if msg.Content != "An error occurred while processing your request." {
		t.Errorf("Fail().Content = %q", msg.Content)
	}
	if a.Content() != "" {
		t.Errorf("Content() after Fail = %q, want empty", a.Content())
	}

	visible := rec.Visible()
	if len(visible) != 1 {
		t.Fatalf("visible messages = %d, want 1 (error only)", len(visible))
	}
	if visible[0].ID != msg.ID || !visible[0].Error {
		t.Errorf("visible message = %+v, want the error message", visible[0])
	}
}

func TestNilDisplay(t *testing.T) {
	a := NewAssembler(nil)
	a.Write("ok")
	if got := a.Finish().Content; got != "ok" {
		t.Errorf("Finish().Content = %q, want ok", got)
	}
	if a.Fragments() != 1 {
		t.Errorf("Fragments() = %d, want 1", a.Fragments())
	}
}
