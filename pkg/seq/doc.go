// Package seq provides the process-wide sequence counter used to stamp
// queue items at enqueue time.
//
// Sequence numbers are unique and strictly increasing across all lanes,
// which gives tests and the dead-letter store a stable tie-break order.
// They carry no delivery-order promise across lanes.
//
//	s := seq.New()
//	n := s.Next() // 1, 2, 3, ...
//	k := seq.Key(n) // 8-byte big-endian form for storage keys
package seq
