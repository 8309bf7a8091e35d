package backpressure

import (
	"context"
	"sync"

	"github.com/rzbill/laneq/internal/watermark"
)

// Gate is the producer-side throttle for one lane. It pauses when the
// lane's high watermark is crossed and resumes on the low crossing.
// Producers call Wait before enqueueing; Wait returns immediately while
// the gate is open and blocks while it is paused, respecting context
// cancellation.
type Gate struct {
	mu     sync.Mutex
	paused bool
	ch     chan struct{} // closed while the gate is open
}

// NewGate returns an open Gate.
func NewGate() *Gate {
	g := &Gate{ch: make(chan struct{})}
	close(g.ch)
	return g
}

// Pause closes the gate. Idempotent.
func (g *Gate) Pause() {
	g.mu.Lock()
	if !g.paused {
		g.paused = true
		g.ch = make(chan struct{})
	}
	g.mu.Unlock()
}

// Resume opens the gate and releases all waiters. Idempotent.
func (g *Gate) Resume() {
	g.mu.Lock()
	if g.paused {
		g.paused = false
		close(g.ch)
	}
	g.mu.Unlock()
}

// Paused reports whether the gate is currently closed.
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Wait blocks while the gate is paused. Returns ctx.Err() on cancellation.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Gates holds one Gate per lane and applies watermark events to them.
type Gates struct {
	gates []*Gate
}

// NewGates creates n open gates.
func NewGates(n int) *Gates {
	gs := &Gates{gates: make([]*Gate, n)}
	for i := range gs.gates {
		gs.gates[i] = NewGate()
	}
	return gs
}

// ForLane returns the gate for a lane index. Panics on out-of-range index;
// lane validation happens at the queue boundary.
func (gs *Gates) ForLane(i int) *Gate { return gs.gates[i] }

// Apply routes a watermark event to the lane's gate: a high crossing
// pauses producers, a low crossing resumes them.
func (gs *Gates) Apply(ev watermark.Event) {
	if ev.Lane < 0 || ev.Lane >= len(gs.gates) {
		return
	}
	switch ev.Crossing {
	case watermark.CrossedHigh:
		gs.gates[ev.Lane].Pause()
	case watermark.CrossedLow:
		gs.gates[ev.Lane].Resume()
	}
}
