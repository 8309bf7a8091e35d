package seq

import (
	"encoding/binary"
	"sync/atomic"
)

// Sequence issues process-wide unique, strictly increasing uint64 values.
// It is lock-free; concurrent callers never observe the same value twice.
// Values wrap per uint64 arithmetic after 2^64-1 issues.
type Sequence struct {
	n atomic.Uint64
}

// New returns a Sequence whose first Next() is 1.
func New() *Sequence { return &Sequence{} }

// Next returns the next sequence value.
func (s *Sequence) Next() uint64 { return s.n.Add(1) }

// Last returns the most recently issued value, or 0 if none.
func (s *Sequence) Last() uint64 { return s.n.Load() }

// Key encodes a sequence value as 8 bytes big-endian so that byte-wise
// lexical order matches numeric order. Used for storage keys.
func Key(v uint64) [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b
}

// FromKey decodes an 8-byte big-endian key back to its sequence value.
func FromKey(b [8]byte) uint64 { return binary.BigEndian.Uint64(b[:]) }
