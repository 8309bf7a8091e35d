package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rzbill/laneq/internal/admission"
	"github.com/rzbill/laneq/internal/backpressure"
	"github.com/rzbill/laneq/internal/deadletter"
	"github.com/rzbill/laneq/internal/lane"
	"github.com/rzbill/laneq/internal/metrics"
	"github.com/rzbill/laneq/internal/scheduler"
	"github.com/rzbill/laneq/internal/shutdown"
	"github.com/rzbill/laneq/internal/watermark"
	logpkg "github.com/rzbill/laneq/pkg/log"
	"github.com/rzbill/laneq/pkg/seq"
)

// ErrInvalidLane reports a lane index outside [0, N). Passing one is a
// programmer error; operations fail fast instead of mapping it to a result.
var ErrInvalidLane = errors.New("queue: lane index out of range")

// Config configures a Queue. Lanes share capacity, watermarks, and policy;
// each lane still tracks its own state independently.
type Config struct {
	// Lanes is the number of producer lanes, > 0.
	Lanes int
	// Capacity bounds each lane's depth, > 0.
	Capacity int
	// HighWatermark and LowWatermark bound the backpressure band:
	// 0 <= low < high <= capacity.
	HighWatermark int
	LowWatermark  int
	// Policy is the overflow behavior when a lane is full.
	Policy lane.Policy
	// AdmissionExpr is an optional CEL expression evaluated per payload
	// before capacity checks. Empty disables admission filtering.
	AdmissionExpr string
	// OnWatermark, when set, receives every watermark transition. Called
	// synchronously under the lane lock; must not call back into the queue.
	OnWatermark func(watermark.Event)
	// Logger defaults to a no-op logger.
	Logger logpkg.Logger
	// Metrics is optional; nil disables the Prometheus surface.
	Metrics *metrics.Metrics
	// DeadLetter is optional; when set, rejected, evicted, and filtered
	// payloads are persisted there.
	DeadLetter *deadletter.Store
}

// Validate reports construction-time misconfiguration.
func (c Config) Validate() error {
	if c.Lanes <= 0 {
		return fmt.Errorf("queue: lanes must be > 0, got %d", c.Lanes)
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("queue: capacity must be > 0, got %d", c.Capacity)
	}
	if c.LowWatermark < 0 || c.LowWatermark >= c.HighWatermark {
		return fmt.Errorf("queue: require 0 <= low watermark (%d) < high watermark (%d)",
			c.LowWatermark, c.HighWatermark)
	}
	if c.HighWatermark > c.Capacity {
		return fmt.Errorf("queue: high watermark (%d) exceeds capacity (%d)",
			c.HighWatermark, c.Capacity)
	}
	if !c.Policy.Valid() {
		return fmt.Errorf("queue: unknown overflow policy %d", c.Policy)
	}
	return nil
}

// Queue is the bounded multi-producer/multi-consumer work queue: N lanes
// behind a fair round-robin scheduler with watermark backpressure and
// cooperative shutdown.
type Queue struct {
	cfg    Config
	logger logpkg.Logger

	token    *shutdown.Token
	activity *lane.Notifier
	lanes    []*lane.Lane
	sched    *scheduler.Scheduler
	gates    *backpressure.Gates
	filter   admission.Filter
	seq      *seq.Sequence
}

// New creates a Queue from the Config. Misconfiguration is fatal here;
// nothing after construction returns a configuration error.
func New(cfg Config) (*Queue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logpkg.NewNop()
	}
	filter, err := admission.New(cfg.AdmissionExpr)
	if err != nil {
		return nil, fmt.Errorf("queue: admission filter: %w", err)
	}

	q := &Queue{
		cfg:      cfg,
		logger:   logger,
		token:    shutdown.NewToken(),
		activity: lane.NewNotifier(),
		gates:    backpressure.NewGates(cfg.Lanes),
		filter:   filter,
		seq:      seq.New(),
	}

	q.lanes = make([]*lane.Lane, cfg.Lanes)
	for i := 0; i < cfg.Lanes; i++ {
		tracker, err := watermark.NewTracker(i, cfg.HighWatermark, cfg.LowWatermark)
		if err != nil {
			return nil, err
		}
		l, err := lane.New(lane.Options{
			Index:       i,
			Capacity:    cfg.Capacity,
			Policy:      cfg.Policy,
			Token:       q.token,
			Activity:    q.activity,
			Tracker:     tracker,
			OnWatermark: q.handleWatermark,
			OnDepth:     cfg.Metrics.ObserveDepth,
		})
		if err != nil {
			return nil, err
		}
		q.lanes[i] = l
	}
	q.sched = scheduler.New(q.lanes, q.activity, q.token)

	logger.Info("queue created",
		logpkg.Int("lanes", cfg.Lanes),
		logpkg.Int("capacity", cfg.Capacity),
		logpkg.Int("high_watermark", cfg.HighWatermark),
		logpkg.Int("low_watermark", cfg.LowWatermark),
		logpkg.Str("policy", cfg.Policy.String()),
		logpkg.Bool("admission", filter.Enabled()),
	)
	return q, nil
}

// handleWatermark runs under the emitting lane's lock: it toggles the
// lane's producer gate, mirrors the event to metrics, and forwards it to
// the configured callback.
func (q *Queue) handleWatermark(ev watermark.Event) {
	q.gates.Apply(ev)
	q.cfg.Metrics.IncCrossing(ev.Lane, ev.Crossing.String())
	if q.cfg.OnWatermark != nil {
		q.cfg.OnWatermark(ev)
	}
}

// Lanes returns the lane count.
func (q *Queue) Lanes() int { return len(q.lanes) }

// Enqueue admits a payload to a lane. It never blocks: overflow resolves
// immediately per the configured policy, and after shutdown the result is
// always EnqueueShutDown. Use Gate(lane).Wait to honor backpressure.
func (q *Queue) Enqueue(laneIdx int, payload []byte) (lane.EnqueueResult, error) {
	return q.enqueue(laneIdx, payload, true)
}

// ReplayEnqueue admits a dead-lettered payload back into a lane without
// dead-lettering it again when it is dropped; the store still holds the
// original entry. Satisfies deadletter.Enqueuer.
func (q *Queue) ReplayEnqueue(laneIdx int, payload []byte) (lane.EnqueueResult, error) {
	return q.enqueue(laneIdx, payload, false)
}

func (q *Queue) enqueue(laneIdx int, payload []byte, deadLetterDrops bool) (lane.EnqueueResult, error) {
	if laneIdx < 0 || laneIdx >= len(q.lanes) {
		return 0, fmt.Errorf("%w: %d of %d", ErrInvalidLane, laneIdx, len(q.lanes))
	}
	if q.token.Requested() {
		return lane.EnqueueShutDown, nil
	}

	seqn := q.seq.Next()
	if !q.filter.Allow(laneIdx, payload) {
		q.cfg.Metrics.IncEnqueue(laneIdx, "filtered")
		if deadLetterDrops {
			q.deadLetter(laneIdx, seqn, deadletter.ReasonFiltered, payload)
		}
		return lane.EnqueueRejected, nil
	}

	res, evicted := q.lanes[laneIdx].Enqueue(lane.Item{Seq: seqn, Payload: payload})
	q.cfg.Metrics.IncEnqueue(laneIdx, res.String())
	switch res {
	case lane.EnqueueRejected:
		if deadLetterDrops {
			q.deadLetter(laneIdx, seqn, deadletter.ReasonRejected, payload)
		}
	case lane.EnqueueEvictedOldest:
		// The evicted head is a different, live item; it is dead-lettered
		// even when the incoming payload came from a replay.
		q.deadLetter(laneIdx, evicted.Seq, deadletter.ReasonEvicted, evicted.Payload)
	}
	return res, nil
}

// deadLetter persists a dropped payload, best effort. Failures are logged,
// not propagated: the enqueue outcome already happened.
func (q *Queue) deadLetter(laneIdx int, seqn uint64, reason deadletter.Reason, payload []byte) {
	if q.cfg.DeadLetter == nil {
		return
	}
	q.cfg.Metrics.IncDeadLetter(laneIdx, reason.String())
	err := q.cfg.DeadLetter.Append(context.Background(), deadletter.Entry{
		Lane:    laneIdx,
		Seq:     seqn,
		Reason:  reason,
		Payload: payload,
	})
	if err != nil {
		q.logger.Error("dead-letter append failed",
			logpkg.Int("lane", laneIdx),
			logpkg.Uint64("seq", seqn),
			logpkg.Str("reason", reason.String()),
			logpkg.Err(err),
		)
	}
}

// DequeueNext returns the next item across all lanes in round-robin order,
// blocking per the scheduler's contract. The lane index is -1 when no item
// is returned.
func (q *Queue) DequeueNext(timeout time.Duration) (lane.Item, int, lane.DequeueStatus) {
	it, idx, status := q.sched.Next(timeout)
	if status == lane.DequeueOK {
		q.cfg.Metrics.IncDequeue(idx)
	}
	return it, idx, status
}

// TryDequeue takes the FIFO head of one lane without blocking.
func (q *Queue) TryDequeue(laneIdx int) (lane.Item, bool, error) {
	if laneIdx < 0 || laneIdx >= len(q.lanes) {
		return lane.Item{}, false, fmt.Errorf("%w: %d of %d", ErrInvalidLane, laneIdx, len(q.lanes))
	}
	it, ok := q.lanes[laneIdx].TryDequeue()
	if ok {
		q.cfg.Metrics.IncDequeue(laneIdx)
	}
	return it, ok, nil
}

// RequestShutdown flags the queue for shutdown and wakes every blocked
// waiter. Idempotent. Queued items remain drainable; new enqueues are
// refused from this point on.
func (q *Queue) RequestShutdown() {
	if q.token.Request() {
		q.logger.Info("shutdown requested")
	}
}

// ShuttingDown reports whether shutdown has been requested.
func (q *Queue) ShuttingDown() bool { return q.token.Requested() }

// Depth returns a snapshot of one lane's depth.
func (q *Queue) Depth(laneIdx int) (uint32, error) {
	if laneIdx < 0 || laneIdx >= len(q.lanes) {
		return 0, fmt.Errorf("%w: %d of %d", ErrInvalidLane, laneIdx, len(q.lanes))
	}
	return q.lanes[laneIdx].Depth(), nil
}

// Stats returns a snapshot of one lane's counters.
func (q *Queue) Stats(laneIdx int) (lane.StatsSnapshot, error) {
	if laneIdx < 0 || laneIdx >= len(q.lanes) {
		return lane.StatsSnapshot{}, fmt.Errorf("%w: %d of %d", ErrInvalidLane, laneIdx, len(q.lanes))
	}
	return q.lanes[laneIdx].Stats(), nil
}

// Gate returns the producer-side backpressure gate for a lane.
func (q *Queue) Gate(laneIdx int) (*backpressure.Gate, error) {
	if laneIdx < 0 || laneIdx >= len(q.lanes) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidLane, laneIdx, len(q.lanes))
	}
	return q.gates.ForLane(laneIdx), nil
}
