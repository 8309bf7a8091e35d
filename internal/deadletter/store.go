package deadletter

import (
	"context"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/rzbill/laneq/internal/lane"
	pebblestore "github.com/rzbill/laneq/internal/storage/pebble"
)

// Entry is one dead-lettered item.
type Entry struct {
	Lane    int
	Seq     uint64
	Reason  Reason
	Payload []byte
}

// Store persists items a queue dropped: rejected on overflow, evicted as
// FIFO head, or denied by the admission filter. Entries are keyed by
// (lane, seq) so scans replay in enqueue order.
type Store struct {
	db *pebblestore.DB
}

// NewStore creates a Store over an open database.
func NewStore(db *pebblestore.DB) *Store {
	return &Store{db: db}
}

// Append persists one entry.
func (s *Store) Append(ctx context.Context, e Entry) error {
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(Key(e.Lane, e.Seq), EncodeRecord(e.Reason, e.Payload), nil); err != nil {
		return err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return fmt.Errorf("deadletter: append lane %d seq %d: %w", e.Lane, e.Seq, err)
	}
	return nil
}

// Scan returns up to limit entries for a lane in sequence order.
// limit <= 0 means no limit.
func (s *Store) Scan(laneIdx int, limit int) ([]Entry, error) {
	prefix := LanePrefix(laneIdx)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upperBound(prefix)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []Entry
	for ok := iter.First(); ok; ok = iter.Next() {
		seqn, ok2 := SeqFromKey(iter.Key())
		if !ok2 {
			continue
		}
		reason, payload, ok2 := DecodeRecord(iter.Value())
		if !ok2 {
			continue
		}
		out = append(out, Entry{Lane: laneIdx, Seq: seqn, Reason: reason, Payload: payload})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Enqueuer is the queue-side surface Replay feeds entries back into.
// ReplayEnqueue must not dead-letter the payload again when it is dropped:
// the entry is still stored here, and re-appending it under a fresh
// sequence number would duplicate it on every failed replay.
type Enqueuer interface {
	ReplayEnqueue(laneIdx int, payload []byte) (lane.EnqueueResult, error)
}

// Replay re-enqueues up to limit stored entries for a lane and deletes the
// ones that were accepted. Entries the queue rejects again stay stored.
// Returns the number of entries accepted.
func (s *Store) Replay(ctx context.Context, q Enqueuer, laneIdx int, limit int) (int, error) {
	entries, err := s.Scan(laneIdx, limit)
	if err != nil {
		return 0, err
	}
	replayed := 0
	b := s.db.NewBatch()
	defer b.Close()
	for _, e := range entries {
		res, err := q.ReplayEnqueue(e.Lane, e.Payload)
		if err != nil {
			return replayed, err
		}
		switch res {
		case lane.EnqueueAccepted, lane.EnqueueEvictedOldest:
			if err := b.Delete(Key(e.Lane, e.Seq), nil); err != nil {
				return replayed, err
			}
			replayed++
		case lane.EnqueueShutDown:
			// No point continuing; commit what was already re-enqueued.
			if err := s.db.CommitBatch(ctx, b); err != nil {
				return replayed, err
			}
			return replayed, nil
		default:
			// Rejected again: keep the entry.
		}
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return replayed, err
	}
	return replayed, nil
}

// Trim deletes the oldest entries of a lane beyond keep. Returns how many
// were deleted.
func (s *Store) Trim(ctx context.Context, laneIdx int, keep int) (int, error) {
	entries, err := s.Scan(laneIdx, 0)
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	excess := len(entries) - keep
	if excess <= 0 {
		return 0, nil
	}
	b := s.db.NewBatch()
	defer b.Close()
	for _, e := range entries[:excess] {
		if err := b.Delete(Key(e.Lane, e.Seq), nil); err != nil {
			return 0, err
		}
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return 0, err
	}
	return excess, nil
}
