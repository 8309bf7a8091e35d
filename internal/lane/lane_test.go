package lane

import (
	"testing"
	"time"

	"github.com/rzbill/laneq/internal/shutdown"
)

func openTestLane(t *testing.T, capacity int, policy Policy) (*Lane, *shutdown.Token) {
	t.Helper()
	tok := shutdown.NewToken()
	l, err := New(Options{Capacity: capacity, Policy: policy, Token: tok})
	if err != nil {
		t.Fatalf("new lane: %v", err)
	}
	return l, tok
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Options{Capacity: 0, Token: shutdown.NewToken()}); err == nil {
		t.Fatalf("zero capacity should be rejected")
	}
	if _, err := New(Options{Capacity: 4}); err == nil {
		t.Fatalf("missing token should be rejected")
	}
	if _, err := New(Options{Capacity: 4, Policy: Policy(7), Token: shutdown.NewToken()}); err == nil {
		t.Fatalf("unknown policy should be rejected")
	}
}

func TestDepthNeverExceedsCapacityUnderReject(t *testing.T) {
	l, _ := openTestLane(t, 4, PolicyReject)
	for i := uint64(1); i <= 10; i++ {
		res, _ := l.Enqueue(Item{Seq: i})
		if i <= 4 && res != EnqueueAccepted {
			t.Fatalf("item %d: got %v, want accepted", i, res)
		}
		if i > 4 && res != EnqueueRejected {
			t.Fatalf("item %d: got %v, want rejected", i, res)
		}
		if d := l.Depth(); d > 4 {
			t.Fatalf("depth %d exceeds capacity", d)
		}
	}
	st := l.Stats()
	if st.Accepted != 4 || st.Rejected != 6 {
		t.Fatalf("stats = %+v, want 4 accepted / 6 rejected", st)
	}
}

func TestEvictOldestDropsHeadAndKeepsOrder(t *testing.T) {
	l, _ := openTestLane(t, 3, PolicyEvictOldest)
	for i := uint64(1); i <= 3; i++ {
		l.Enqueue(Item{Seq: i})
	}
	res, evicted := l.Enqueue(Item{Seq: 4})
	if res != EnqueueEvictedOldest {
		t.Fatalf("got %v, want evicted-oldest", res)
	}
	if evicted.Seq != 1 {
		t.Fatalf("evicted seq %d, want 1 (the oldest)", evicted.Seq)
	}
	res, evicted = l.Enqueue(Item{Seq: 5})
	if res != EnqueueEvictedOldest || evicted.Seq != 2 {
		t.Fatalf("second eviction: res=%v evicted=%d, want seq 2", res, evicted.Seq)
	}
	// Survivors retain relative FIFO order: 3, 4, 5.
	for _, want := range []uint64{3, 4, 5} {
		it, ok := l.TryDequeue()
		if !ok || it.Seq != want {
			t.Fatalf("dequeued seq %d ok=%v, want %d", it.Seq, ok, want)
		}
	}
	if _, ok := l.TryDequeue(); ok {
		t.Fatalf("lane should be empty")
	}
}

func TestFIFORoundTrip(t *testing.T) {
	l, _ := openTestLane(t, 8, PolicyReject)
	for i := uint64(1); i <= 8; i++ {
		l.Enqueue(Item{Seq: i})
	}
	for i := uint64(1); i <= 8; i++ {
		it, status := l.Dequeue(time.Second)
		if status != DequeueOK || it.Seq != i {
			t.Fatalf("dequeue %d: got seq %d status %v", i, it.Seq, status)
		}
	}
}

func TestRingWrapAround(t *testing.T) {
	l, _ := openTestLane(t, 3, PolicyReject)
	next := uint64(1)
	// Interleave fills and drains so head travels past the buffer end.
	for round := 0; round < 5; round++ {
		for i := 0; i < 2; i++ {
			if res, _ := l.Enqueue(Item{Seq: next}); res != EnqueueAccepted {
				t.Fatalf("round %d: enqueue %d not accepted", round, next)
			}
			next++
		}
		for i := 0; i < 2; i++ {
			it, ok := l.TryDequeue()
			if !ok {
				t.Fatalf("round %d: unexpected empty lane", round)
			}
			want := next - uint64(2-i)
			if it.Seq != want {
				t.Fatalf("round %d: got seq %d, want %d", round, it.Seq, want)
			}
		}
	}
}

func TestDequeueBlocksUntilEnqueue(t *testing.T) {
	l, _ := openTestLane(t, 4, PolicyReject)
	got := make(chan Item, 1)
	go func() {
		it, status := l.Dequeue(2 * time.Second)
		if status == DequeueOK {
			got <- it
		}
	}()
	// Give the consumer time to block.
	time.Sleep(20 * time.Millisecond)
	l.Enqueue(Item{Seq: 42})
	select {
	case it := <-got:
		if it.Seq != 42 {
			t.Fatalf("got seq %d, want 42", it.Seq)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("consumer did not wake on enqueue")
	}
}

func TestDequeueTimesOut(t *testing.T) {
	l, _ := openTestLane(t, 4, PolicyReject)
	start := time.Now()
	_, status := l.Dequeue(50 * time.Millisecond)
	if status != DequeueTimedOut {
		t.Fatalf("got %v, want timed-out", status)
	}
	if time.Since(start) < 50*time.Millisecond {
		t.Fatalf("returned before deadline")
	}
}

func TestShutdownWakesBlockedDequeue(t *testing.T) {
	l, tok := openTestLane(t, 4, PolicyReject)
	done := make(chan DequeueStatus, 1)
	go func() {
		_, status := l.Dequeue(0)
		done <- status
	}()
	time.Sleep(20 * time.Millisecond)
	tok.Request()
	select {
	case status := <-done:
		if status != DequeueShutDown {
			t.Fatalf("got %v, want shutdown", status)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("blocked dequeue did not observe shutdown")
	}
}

func TestShutdownDrainsBeforeSignaling(t *testing.T) {
	l, tok := openTestLane(t, 4, PolicyReject)
	l.Enqueue(Item{Seq: 1})
	l.Enqueue(Item{Seq: 2})
	tok.Request()

	// No new enqueues after shutdown.
	if res, _ := l.Enqueue(Item{Seq: 3}); res != EnqueueShutDown {
		t.Fatalf("enqueue after shutdown: got %v", res)
	}
	// Queued items drain in order, then the lane signals shutdown.
	for _, want := range []uint64{1, 2} {
		it, status := l.Dequeue(time.Second)
		if status != DequeueOK || it.Seq != want {
			t.Fatalf("drain: got seq %d status %v, want %d", it.Seq, status, want)
		}
	}
	if _, status := l.Dequeue(time.Second); status != DequeueShutDown {
		t.Fatalf("drained lane should report shutdown, got %v", status)
	}
}

func TestActivityNotifierWakesOnEnqueue(t *testing.T) {
	tok := shutdown.NewToken()
	activity := NewNotifier()
	l, err := New(Options{Capacity: 2, Policy: PolicyReject, Token: tok, Activity: activity})
	if err != nil {
		t.Fatalf("new lane: %v", err)
	}
	ch := activity.Wait()
	l.Enqueue(Item{Seq: 1})
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("activity notifier not woken by enqueue")
	}
}
