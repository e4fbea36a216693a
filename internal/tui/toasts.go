package tui

import "sync"

// maxToasts bounds the undisplayed backlog.
const maxToasts = 16

// Toasts queues notifications raised off the update loop until the model
// drains them.
type Toasts struct {
	mu    sync.Mutex
	queue []string
}

// NewToasts constructs an empty queue.
func NewToasts() *Toasts {
	return &Toasts{}
}

// Notify enqueues message. It is safe for concurrent use.
func (t *Toasts) Notify(message string) {
	if t == nil || message == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue = append(t.queue, message)
	if len(t.queue) > maxToasts {
		t.queue = t.queue[len(t.queue)-maxToasts:]
	}
}

// Drain returns and clears queued messages.
func (t *Toasts) Drain() []string {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.queue
	t.queue = nil
	return out
}
