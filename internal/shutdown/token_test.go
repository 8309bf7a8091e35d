package shutdown

import (
	"sync"
	"testing"
	"time"
)

func TestRequestIsIdempotent(t *testing.T) {
	tok := NewToken()
	if tok.Requested() {
		t.Fatalf("fresh token should not be requested")
	}
	if !tok.Request() {
		t.Fatalf("first Request should report true")
	}
	if tok.Request() || tok.Request() {
		t.Fatalf("repeat Request should report false")
	}
	if !tok.Requested() {
		t.Fatalf("token should be requested after Request")
	}
}

func TestDoneWakesAllWaiters(t *testing.T) {
	tok := NewToken()
	const waiters = 4
	var wg sync.WaitGroup
	woke := make(chan struct{}, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case <-tok.Done():
				woke <- struct{}{}
			case <-time.After(2 * time.Second):
			}
		}()
	}
	tok.Request()
	wg.Wait()
	if len(woke) != waiters {
		t.Fatalf("woke %d waiters, want %d", len(woke), waiters)
	}
}

func TestConcurrentRequest(t *testing.T) {
	tok := NewToken()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok.Request()
		}()
	}
	wg.Wait()
	if !tok.Requested() {
		t.Fatalf("token should be requested")
	}
}
