package lane

import "sync/atomic"

// Stats holds per-lane counters, updated with atomics so snapshots do not
// take the lane lock.
type Stats struct {
	accepted atomic.Uint64
	rejected atomic.Uint64
	evicted  atomic.Uint64
	dequeued atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of a lane's counters.
type StatsSnapshot struct {
	Accepted uint64
	Rejected uint64
	Evicted  uint64
	Dequeued uint64
}

func (s *Stats) snapshot() StatsSnapshot {
	return StatsSnapshot{
		Accepted: s.accepted.Load(),
		Rejected: s.rejected.Load(),
		Evicted:  s.evicted.Load(),
		Dequeued: s.dequeued.Load(),
	}
}
