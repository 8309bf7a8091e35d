package lane

import (
	"fmt"
	"sync"
	"time"

	"github.com/rzbill/laneq/internal/shutdown"
	"github.com/rzbill/laneq/internal/watermark"
)

// Item is one queued unit of work: an opaque payload stamped with a
// process-wide sequence number at enqueue time.
type Item struct {
	Seq     uint64
	Payload []byte
}

// EnqueueResult is the discriminated outcome of an enqueue.
type EnqueueResult int

const (
	// EnqueueAccepted: item queued within capacity.
	EnqueueAccepted EnqueueResult = iota
	// EnqueueRejected: lane full under PolicyReject; the new item was dropped.
	EnqueueRejected
	// EnqueueEvictedOldest: lane full under PolicyEvictOldest; the FIFO head
	// was dropped to admit the new item.
	EnqueueEvictedOldest
	// EnqueueShutDown: shutdown was requested; no new items are accepted.
	EnqueueShutDown
)

// String returns the result name used in logs and metric labels.
func (r EnqueueResult) String() string {
	switch r {
	case EnqueueAccepted:
		return "accepted"
	case EnqueueRejected:
		return "rejected"
	case EnqueueEvictedOldest:
		return "evicted-oldest"
	case EnqueueShutDown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// DequeueStatus is the discriminated outcome of a dequeue.
type DequeueStatus int

const (
	// DequeueOK: an item was delivered.
	DequeueOK DequeueStatus = iota
	// DequeueTimedOut: no item became available within the deadline.
	DequeueTimedOut
	// DequeueShutDown: shutdown was requested and the lane is drained.
	DequeueShutDown
)

// String returns the status name.
func (s DequeueStatus) String() string {
	switch s {
	case DequeueOK:
		return "ok"
	case DequeueTimedOut:
		return "timed-out"
	case DequeueShutDown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Options configures a Lane.
type Options struct {
	// Index identifies the lane within its queue, in [0, N).
	Index int
	// Capacity bounds the lane's depth. Required, > 0.
	Capacity int
	// Policy is the overflow behavior when the lane is full.
	Policy Policy
	// Token is the queue-wide shutdown token. Required.
	Token *shutdown.Token
	// Activity, when set, is woken on every successful enqueue so a
	// scheduler blocked across lanes can rescan.
	Activity *Notifier
	// Tracker, when set, observes depth after every mutation and detects
	// watermark transitions.
	Tracker *watermark.Tracker
	// OnWatermark receives transition events, synchronously, under the
	// lane lock. Must not call back into the lane.
	OnWatermark func(watermark.Event)
	// OnDepth receives the new depth after every mutation, under the lane
	// lock. Used for metrics gauges. Must not call back into the lane.
	OnDepth func(lane, depth int)
}

// Lane is one bounded FIFO with its own lock, overflow policy, and
// watermark state. QueueState is owned exclusively by this lock; lanes
// never acquire each other's locks.
type Lane struct {
	index    int
	capacity int
	policy   Policy
	token    *shutdown.Token
	activity *Notifier

	mu      sync.Mutex
	buf     []Item
	head    int
	count   int
	notify  chan struct{}
	tracker *watermark.Tracker
	onEvent func(watermark.Event)
	onDepth func(lane, depth int)

	stats Stats
}

// New creates a Lane.
func New(opts Options) (*Lane, error) {
	if opts.Capacity <= 0 {
		return nil, fmt.Errorf("lane: capacity must be > 0, got %d", opts.Capacity)
	}
	if opts.Token == nil {
		return nil, fmt.Errorf("lane: shutdown token is required")
	}
	if !opts.Policy.Valid() {
		return nil, fmt.Errorf("lane: unknown overflow policy %d", opts.Policy)
	}
	return &Lane{
		index:    opts.Index,
		capacity: opts.Capacity,
		policy:   opts.Policy,
		token:    opts.Token,
		activity: opts.Activity,
		buf:      make([]Item, opts.Capacity),
		notify:   make(chan struct{}),
		tracker:  opts.Tracker,
		onEvent:  opts.OnWatermark,
		onDepth:  opts.OnDepth,
	}, nil
}

// Index returns the lane's index within its queue.
func (l *Lane) Index() int { return l.index }

// Capacity returns the fixed capacity.
func (l *Lane) Capacity() int { return l.capacity }

// Policy returns the overflow policy.
func (l *Lane) Policy() Policy { return l.policy }

// Enqueue admits an item under the lane's lock. It never blocks: full lanes
// resolve immediately per policy. The second return value is the evicted
// item when the result is EnqueueEvictedOldest.
func (l *Lane) Enqueue(it Item) (EnqueueResult, Item) {
	l.mu.Lock()

	if l.token.Requested() {
		l.mu.Unlock()
		return EnqueueShutDown, Item{}
	}

	if l.count == l.capacity {
		switch l.policy {
		case PolicyReject:
			l.stats.rejected.Add(1)
			l.mu.Unlock()
			return EnqueueRejected, Item{}
		case PolicyEvictOldest:
			evicted := l.popLocked()
			l.pushLocked(it)
			l.stats.evicted.Add(1)
			l.stats.accepted.Add(1)
			l.notifyLocked()
			l.mu.Unlock()
			l.wakeActivity()
			return EnqueueEvictedOldest, evicted
		}
	}

	l.pushLocked(it)
	l.stats.accepted.Add(1)
	l.afterDepthChangeLocked()
	l.notifyLocked()
	l.mu.Unlock()
	l.wakeActivity()
	return EnqueueAccepted, Item{}
}

// TryDequeue takes the FIFO head without blocking.
func (l *Lane) TryDequeue() (Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == 0 {
		return Item{}, false
	}
	it := l.popLocked()
	l.stats.dequeued.Add(1)
	l.afterDepthChangeLocked()
	return it, true
}

// Dequeue blocks until an item is available, the timeout elapses, or
// shutdown is requested. timeout <= 0 blocks without deadline. Items come
// out in strict FIFO order. After shutdown, remaining items are still
// drained; DequeueShutDown is returned only once the lane is empty.
func (l *Lane) Dequeue(timeout time.Duration) (Item, DequeueStatus) {
	var timerch <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timerch = timer.C
	}

	for {
		l.mu.Lock()
		if l.count > 0 {
			it := l.popLocked()
			l.stats.dequeued.Add(1)
			l.afterDepthChangeLocked()
			l.mu.Unlock()
			return it, DequeueOK
		}
		if l.token.Requested() {
			l.mu.Unlock()
			return Item{}, DequeueShutDown
		}
		ch := l.notify
		l.mu.Unlock()

		select {
		case <-ch:
		case <-l.token.Done():
		case <-timerch:
			return Item{}, DequeueTimedOut
		}
	}
}

// Depth returns a snapshot of the current depth. Eventually consistent
// with concurrent enqueue/dequeue.
func (l *Lane) Depth() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return uint32(l.count)
}

// Stats returns a snapshot of the lane's counters.
func (l *Lane) Stats() StatsSnapshot { return l.stats.snapshot() }

func (l *Lane) pushLocked(it Item) {
	l.buf[(l.head+l.count)%l.capacity] = it
	l.count++
}

func (l *Lane) popLocked() Item {
	it := l.buf[l.head]
	l.buf[l.head] = Item{}
	l.head = (l.head + 1) % l.capacity
	l.count--
	return it
}

// notifyLocked broadcasts to waiters blocked in Dequeue by closing the
// notify channel and arming a fresh one.
func (l *Lane) notifyLocked() {
	close(l.notify)
	l.notify = make(chan struct{})
}

func (l *Lane) afterDepthChangeLocked() {
	depth := l.count
	if l.onDepth != nil {
		l.onDepth(l.index, depth)
	}
	if l.tracker == nil {
		return
	}
	if ev, ok := l.tracker.Observe(depth); ok && l.onEvent != nil {
		l.onEvent(ev)
	}
}

func (l *Lane) wakeActivity() {
	if l.activity != nil {
		l.activity.Wake()
	}
}
