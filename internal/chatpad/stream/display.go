package stream

import (
	"sync"

	"github.com/longkey1/chatpad/internal/chatpad"
)

// Nop is a Display that ignores everything.
type Nop struct{}

func (Nop) Show(chatpad.Message)   {}
func (Nop) Finish(chatpad.Message) {}
func (Nop) Discard(string)         {}

// Recorder is a Display that keeps every published state, in order.
type Recorder struct {
	mu        sync.Mutex
	States    []chatpad.Message
	Finished  []chatpad.Message
	Discarded []string
}

func (r *Recorder) Show(msg chatpad.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.States = append(r.States, msg)
}

func (r *Recorder) Finish(msg chatpad.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Finished = append(r.Finished, msg)
}

func (r *Recorder) Discard(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Discarded = append(r.Discarded, id)
}

// Visible returns the messages currently on display: the latest state of each
// shown message that has not been discarded, in first-shown order.
func (r *Recorder) Visible() []chatpad.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	discarded := make(map[string]bool, len(r.Discarded))
	for _, id := range r.Discarded {
		discarded[id] = true
	}

	var order []string
	latest := make(map[string]chatpad.Message)
	for _, msg := range r.States {
		if _, seen := latest[msg.ID]; !seen {
			order = append(order, msg.ID)
		}
		latest[msg.ID] = msg
	}

	var visible []chatpad.Message
	for _, id := range order {
		if discarded[id] {
			continue
		}
		visible = append(visible, latest[id])
	}
	return visible
}
