// Package lane implements the bounded per-lane FIFO at the core of laneq.
//
// Each Lane owns its queue state under a single mutex: a fixed-capacity
// ring of items, a broadcast notify channel for blocked consumers, per-lane
// counters, and an optional watermark tracker evaluated after every depth
// change. Lanes never take each other's locks, so no lock ordering exists
// across lanes.
//
// Overflow at enqueue time resolves immediately per the lane's Policy:
// PolicyReject drops the new item, PolicyEvictOldest drops the FIFO head.
// Enqueue therefore never suspends; only Dequeue blocks, and it wakes on
// enqueue, timeout, or shutdown broadcast.
//
// Depth never exceeds capacity. Within a lane, delivery is strict FIFO.
package lane
