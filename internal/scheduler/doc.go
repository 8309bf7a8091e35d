// Package scheduler implements round-robin dispatch across lanes.
//
// The guarantee is fairness, not global order: within a lane delivery is
// FIFO, and across lanes a non-empty lane is served again after at most
// N-1 items from other lanes. Empty lanes are skipped without busy-waiting;
// when every lane is empty the scheduler parks on the lanes' shared
// activity notifier until an enqueue, a timeout, or shutdown.
package scheduler
