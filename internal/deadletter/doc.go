// Package deadletter implements durable capture of items a queue dropped.
//
// A queue configured with a Store appends every rejected, evicted, and
// filter-denied payload under dl/{lane_be4}/{seq_be8}, valued as
// reason(1B) | payloadLen(4B BE) | payload | crc32c. Entries can be
// scanned for inspection, replayed back into a live queue, or trimmed.
//
// The store is an audit and recovery surface, not a retry mechanism: it
// never re-enqueues on its own.
package deadletter
