package scheduler

import (
	"sync"
	"time"

	"github.com/rzbill/laneq/internal/lane"
	"github.com/rzbill/laneq/internal/shutdown"
)

// Scheduler dispatches items across lanes in round-robin order. Each
// scheduling step serves at most one item from the first non-empty lane at
// or after the cursor, then advances the cursor past it. A non-empty lane
// therefore waits at most N-1 serves of other lanes before being revisited.
//
// The cursor has its own lock so multiple consumers may call Next
// concurrently. Lane locks are only taken inside a cursor-held scan and
// lanes never lock the scheduler, so there is no ordering cycle.
type Scheduler struct {
	lanes    []*lane.Lane
	activity *lane.Notifier
	token    *shutdown.Token

	mu     sync.Mutex
	cursor int
}

// New creates a Scheduler over the given lanes. The activity notifier must
// be the one the lanes wake on enqueue.
func New(lanes []*lane.Lane, activity *lane.Notifier, token *shutdown.Token) *Scheduler {
	return &Scheduler{lanes: lanes, activity: activity, token: token}
}

// Next returns the next item in round-robin order. It blocks while all
// lanes are empty, without busy-waiting, until an enqueue wakes it, the
// timeout elapses, or shutdown is requested and every lane has drained.
// timeout <= 0 blocks without deadline. The second return value is the
// index of the lane served, or -1 when no item is returned.
func (s *Scheduler) Next(timeout time.Duration) (lane.Item, int, lane.DequeueStatus) {
	var timerch <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timerch = timer.C
	}

	for {
		// Order matters: take the wakeup channel and the shutdown flag
		// before scanning. Any enqueue landing after the scan re-arms the
		// channel we already hold, and lanes admit nothing once the flag
		// is set, so an empty scan after observing the flag means drained.
		ch := s.activity.Wait()
		requested := s.token.Requested()

		if it, idx, ok := s.serveOne(); ok {
			return it, idx, lane.DequeueOK
		}
		if requested {
			return lane.Item{}, -1, lane.DequeueShutDown
		}

		select {
		case <-ch:
		case <-s.token.Done():
		case <-timerch:
			return lane.Item{}, -1, lane.DequeueTimedOut
		}
	}
}

// TryNext is the non-blocking form of Next.
func (s *Scheduler) TryNext() (lane.Item, int, bool) {
	return s.serveOne()
}

func (s *Scheduler) serveOne() (lane.Item, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.lanes)
	for i := 0; i < n; i++ {
		idx := (s.cursor + i) % n
		if it, ok := s.lanes[idx].TryDequeue(); ok {
			s.cursor = (idx + 1) % n
			return it, idx, true
		}
	}
	return lane.Item{}, -1, false
}

// Cursor returns the index of the next lane to poll. For tests and stats.
func (s *Scheduler) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}
