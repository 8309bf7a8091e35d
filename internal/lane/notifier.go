package lane

import "sync"

// Notifier is a broadcast wakeup shared by all lanes of a queue. Enqueues
// wake it so a scheduler blocked on "all lanes empty" can rescan without
// polling. Waiters must take the channel before checking their predicate
// and re-check after waking.
type Notifier struct {
	mu sync.Mutex
	ch chan struct{}
}

// NewNotifier creates a Notifier.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{})}
}

// Wake broadcasts to all current waiters by closing the channel and
// arming a fresh one.
func (n *Notifier) Wake() {
	n.mu.Lock()
	close(n.ch)
	n.ch = make(chan struct{})
	n.mu.Unlock()
}

// Wait returns the channel that the next Wake will close.
func (n *Notifier) Wait() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch
}
