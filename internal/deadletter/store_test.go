package deadletter

import (
	"bytes"
	"context"
	"testing"

	"github.com/rzbill/laneq/internal/lane"
	pebblestore "github.com/rzbill/laneq/internal/storage/pebble"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestRecordCodec(t *testing.T) {
	val := EncodeRecord(ReasonEvicted, []byte("payload"))
	reason, payload, ok := DecodeRecord(val)
	if !ok || reason != ReasonEvicted || string(payload) != "payload" {
		t.Fatalf("decode: reason=%v payload=%q ok=%v", reason, payload, ok)
	}
	// Corruption is detected.
	val[len(val)-1] ^= 0xFF
	if _, _, ok := DecodeRecord(val); ok {
		t.Fatalf("corrupted record should not decode")
	}
	if _, _, ok := DecodeRecord([]byte{1, 2}); ok {
		t.Fatalf("short record should not decode")
	}
}

func TestKeyOrderWithinLane(t *testing.T) {
	if !bytes.Equal(LanePrefix(3), Key(3, 7)[:len(LanePrefix(3))]) {
		t.Fatalf("entry key should start with its lane prefix")
	}
	if bytes.Compare(Key(1, 9), Key(1, 10)) >= 0 {
		t.Fatalf("keys should order by sequence within a lane")
	}
	if bytes.Compare(Key(1, 1<<32), Key(2, 0)) >= 0 {
		t.Fatalf("keys should order by lane first")
	}
	if seqn, ok := SeqFromKey(Key(5, 321)); !ok || seqn != 321 {
		t.Fatalf("SeqFromKey = %d, %v", seqn, ok)
	}
}

func TestScanCoversFullSequenceRange(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	// Sequence values whose big-endian encoding starts with 0xFF sort at
	// the very top of the lane's range and must still be inside the scan
	// bound.
	for _, seqn := range []uint64{1, 0xFF << 56, ^uint64(0)} {
		if err := s.Append(ctx, Entry{Lane: 0, Seq: seqn, Reason: ReasonRejected, Payload: []byte("x")}); err != nil {
			t.Fatalf("append %d: %v", seqn, err)
		}
	}
	entries, err := s.Scan(0, 0)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("scan found %d entries, want 3", len(entries))
	}
	if entries[2].Seq != ^uint64(0) {
		t.Fatalf("last entry seq = %d, want max uint64", entries[2].Seq)
	}
}

func TestAppendAndScan(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := uint64(1); i <= 3; i++ {
		if err := s.Append(ctx, Entry{Lane: 0, Seq: i, Reason: ReasonRejected, Payload: []byte{byte(i)}}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	// A different lane stays isolated.
	if err := s.Append(ctx, Entry{Lane: 1, Seq: 4, Reason: ReasonEvicted, Payload: []byte("x")}); err != nil {
		t.Fatalf("append lane 1: %v", err)
	}

	entries, err := s.Scan(0, 0)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("scanned %d entries, want 3", len(entries))
	}
	for i, e := range entries {
		if e.Seq != uint64(i+1) || e.Reason != ReasonRejected {
			t.Fatalf("entry %d = %+v", i, e)
		}
	}

	limited, err := s.Scan(0, 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("limited scan: %d entries, %v", len(limited), err)
	}
}

type fakeQueue struct {
	results []lane.EnqueueResult
	calls   int
	lanes   []int
}

func (f *fakeQueue) ReplayEnqueue(laneIdx int, payload []byte) (lane.EnqueueResult, error) {
	f.lanes = append(f.lanes, laneIdx)
	res := f.results[f.calls%len(f.results)]
	f.calls++
	return res, nil
}

func TestReplayDeletesAcceptedKeepsRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := uint64(1); i <= 4; i++ {
		_ = s.Append(ctx, Entry{Lane: 2, Seq: i, Reason: ReasonRejected, Payload: []byte{byte(i)}})
	}

	// Alternate accepted and rejected outcomes.
	q := &fakeQueue{results: []lane.EnqueueResult{lane.EnqueueAccepted, lane.EnqueueRejected}}
	n, err := s.Replay(ctx, q, 2, 0)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if n != 2 {
		t.Fatalf("replayed %d, want 2", n)
	}
	remaining, _ := s.Scan(2, 0)
	if len(remaining) != 2 {
		t.Fatalf("%d entries remain, want 2 (the re-rejected ones)", len(remaining))
	}
}

func TestReplayStopsOnShutdown(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := uint64(1); i <= 3; i++ {
		_ = s.Append(ctx, Entry{Lane: 0, Seq: i, Reason: ReasonEvicted, Payload: nil})
	}
	q := &fakeQueue{results: []lane.EnqueueResult{lane.EnqueueShutDown}}
	n, err := s.Replay(ctx, q, 0, 0)
	if err != nil || n != 0 {
		t.Fatalf("replay into shut queue: n=%d err=%v", n, err)
	}
	if q.calls != 1 {
		t.Fatalf("replay should stop after first shutdown result, made %d calls", q.calls)
	}
}

func TestTrimKeepsNewest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := uint64(1); i <= 5; i++ {
		_ = s.Append(ctx, Entry{Lane: 0, Seq: i, Reason: ReasonRejected, Payload: nil})
	}
	deleted, err := s.Trim(ctx, 0, 2)
	if err != nil || deleted != 3 {
		t.Fatalf("trim: deleted=%d err=%v, want 3", deleted, err)
	}
	remaining, _ := s.Scan(0, 0)
	if len(remaining) != 2 || remaining[0].Seq != 4 || remaining[1].Seq != 5 {
		t.Fatalf("remaining = %+v, want seqs 4 and 5", remaining)
	}
}
