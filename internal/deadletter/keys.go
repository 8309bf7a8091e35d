package deadletter

import "encoding/binary"

// Keyspace: dl/{lane_be4}/{seq_be8}. Big-endian fixed-width components keep
// lexical order equal to (lane, seq) numeric order, so per-lane scans are a
// single range and replay order matches enqueue order.

const keyPrefix = "dl/"

// Key returns the entry key for a lane and sequence number.
func Key(lane int, seqn uint64) []byte {
	key := make([]byte, len(keyPrefix)+4+1+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint32(key[len(keyPrefix):], uint32(lane))
	key[len(keyPrefix)+4] = '/'
	binary.BigEndian.PutUint64(key[len(keyPrefix)+5:], seqn)
	return key
}

// LanePrefix returns the scan prefix covering one lane.
func LanePrefix(lane int) []byte {
	prefix := make([]byte, len(keyPrefix)+4+1)
	copy(prefix, keyPrefix)
	binary.BigEndian.PutUint32(prefix[len(keyPrefix):], uint32(lane))
	prefix[len(keyPrefix)+4] = '/'
	return prefix
}

// SeqFromKey extracts the sequence number from an entry key.
func SeqFromKey(key []byte) (uint64, bool) {
	if len(key) != len(keyPrefix)+4+1+8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(key[len(keyPrefix)+5:]), true
}

// upperBound returns the exclusive upper bound for a prefix scan: the
// prefix with its final byte incremented, so every sequence value under
// the prefix is covered, 0xFF-leading ones included.
func upperBound(prefix []byte) []byte {
	ub := append([]byte{}, prefix...)
	ub[len(ub)-1]++
	return ub
}
