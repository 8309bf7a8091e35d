package deadletter

import (
	"encoding/binary"
	"hash/crc32"
)

// Reason records why an item was dead-lettered.
type Reason byte

const (
	// ReasonRejected: lane full under the reject policy.
	ReasonRejected Reason = iota
	// ReasonEvicted: dropped as the FIFO head under the evict-oldest policy.
	ReasonEvicted
	// ReasonFiltered: denied by the admission filter.
	ReasonFiltered
)

// String returns the reason name used in logs and metric labels.
func (r Reason) String() string {
	switch r {
	case ReasonRejected:
		return "rejected"
	case ReasonEvicted:
		return "evicted"
	case ReasonFiltered:
		return "filtered"
	default:
		return "unknown"
	}
}

// Record value: reason(1B) | payloadLen(4B BE) | payload | crc32c(reason|payload)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// EncodeRecord serializes a dead-letter record value.
func EncodeRecord(reason Reason, payload []byte) []byte {
	out := make([]byte, 0, 1+4+len(payload)+4)
	out = append(out, byte(reason))
	var lb [4]byte
	binary.BigEndian.PutUint32(lb[:], uint32(len(payload)))
	out = append(out, lb[:]...)
	out = append(out, payload...)
	crc := crc32.Update(0, castagnoli, []byte{byte(reason)})
	crc = crc32.Update(crc, castagnoli, payload)
	var cb [4]byte
	binary.BigEndian.PutUint32(cb[:], crc)
	out = append(out, cb[:]...)
	return out
}

// DecodeRecord parses a record value, verifying length and checksum.
func DecodeRecord(b []byte) (Reason, []byte, bool) {
	if len(b) < 1+4+4 {
		return 0, nil, false
	}
	reason := Reason(b[0])
	plen := binary.BigEndian.Uint32(b[1:5])
	if int(1+4+plen+4) != len(b) {
		return 0, nil, false
	}
	payload := b[5 : len(b)-4]
	expect := binary.BigEndian.Uint32(b[len(b)-4:])
	crc := crc32.Update(0, castagnoli, b[:1])
	crc = crc32.Update(crc, castagnoli, payload)
	if crc != expect {
		return 0, nil, false
	}
	return reason, append([]byte(nil), payload...), true
}
