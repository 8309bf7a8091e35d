package shutdown

import "sync"

// Token is the process-wide cooperative shutdown flag for one queue.
// Once set it never clears. Every blocked waiter observes the broadcast
// through Done and returns promptly.
type Token struct {
	once sync.Once
	ch   chan struct{}
}

// NewToken returns an unset Token.
func NewToken() *Token {
	return &Token{ch: make(chan struct{})}
}

// Request sets the token and reports whether this call was the first.
// Idempotent; every call after the first is a no-op. Closing the channel is
// the broadcast: all current and future waiters wake.
func (t *Token) Request() bool {
	first := false
	t.once.Do(func() {
		first = true
		close(t.ch)
	})
	return first
}

// Requested reports whether shutdown has been requested.
func (t *Token) Requested() bool {
	select {
	case <-t.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when shutdown is requested. Suitable for
// select alongside timers and notify channels.
func (t *Token) Done() <-chan struct{} { return t.ch }
