package backpressure

import (
	"context"
	"testing"
	"time"

	"github.com/rzbill/laneq/internal/watermark"
)

func TestOpenGateDoesNotBlock(t *testing.T) {
	g := NewGate()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := g.Wait(ctx); err != nil {
		t.Fatalf("Wait on open gate: %v", err)
	}
}

func TestPausedGateBlocksUntilResume(t *testing.T) {
	g := NewGate()
	g.Pause()
	if !g.Paused() {
		t.Fatalf("gate should be paused")
	}

	released := make(chan error, 1)
	go func() {
		released <- g.Wait(context.Background())
	}()
	select {
	case <-released:
		t.Fatalf("Wait returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	g.Resume()
	select {
	case err := <-released:
		if err != nil {
			t.Fatalf("Wait after resume: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Wait did not release on resume")
	}
}

func TestWaitHonorsContext(t *testing.T) {
	g := NewGate()
	g.Pause()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := g.Wait(ctx); err != context.DeadlineExceeded {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
}

func TestPauseResumeIdempotent(t *testing.T) {
	g := NewGate()
	g.Resume() // resume while open is a no-op
	g.Pause()
	g.Pause()
	g.Resume()
	g.Resume()
	if g.Paused() {
		t.Fatalf("gate should be open")
	}
}

func TestGatesApplyWatermarkEvents(t *testing.T) {
	gs := NewGates(3)
	gs.Apply(watermark.Event{Lane: 1, Crossing: watermark.CrossedHigh, Depth: 3})
	if !gs.ForLane(1).Paused() {
		t.Fatalf("lane 1 gate should pause on high crossing")
	}
	if gs.ForLane(0).Paused() || gs.ForLane(2).Paused() {
		t.Fatalf("other lanes should be unaffected")
	}
	gs.Apply(watermark.Event{Lane: 1, Crossing: watermark.CrossedLow, Depth: 1})
	if gs.ForLane(1).Paused() {
		t.Fatalf("lane 1 gate should resume on low crossing")
	}
	// Out-of-range events are ignored.
	gs.Apply(watermark.Event{Lane: 9, Crossing: watermark.CrossedHigh})
}
