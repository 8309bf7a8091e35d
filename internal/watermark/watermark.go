package watermark

import "fmt"

// Crossing identifies the direction of a watermark transition.
type Crossing int

const (
	// CrossedHigh fires when depth rises from below the high watermark to at
	// or above it. Producers should throttle.
	CrossedHigh Crossing = iota
	// CrossedLow fires when depth falls from above the low watermark to at or
	// below it, after a high crossing. Producers may resume.
	CrossedLow
)

// String returns the crossing name used in logs and metric labels.
func (c Crossing) String() string {
	switch c {
	case CrossedHigh:
		return "high"
	case CrossedLow:
		return "low"
	default:
		return "unknown"
	}
}

// Event is a single watermark transition on one lane.
type Event struct {
	Lane     int
	Crossing Crossing
	Depth    int
}

// Tracker detects watermark transitions for one lane. Transitions, not
// levels, trigger events: after CrossedHigh fires, depths at or above high
// emit nothing until depth falls to or below low (hysteresis), and vice
// versa. The zero depth starting zone is the resumed zone.
//
// Tracker is not self-synchronized; the owning lane calls Observe while
// holding its own lock, which also keeps event order consistent with the
// depths that caused them.
type Tracker struct {
	lane      int
	high      int
	low       int
	throttled bool
}

// NewTracker creates a Tracker for a lane. Requires 0 <= low < high.
func NewTracker(lane, high, low int) (*Tracker, error) {
	if low < 0 || low >= high {
		return nil, fmt.Errorf("watermark: require 0 <= low (%d) < high (%d)", low, high)
	}
	return &Tracker{lane: lane, high: high, low: low}, nil
}

// Observe evaluates a new depth and reports a transition event, if any.
func (t *Tracker) Observe(depth int) (Event, bool) {
	if !t.throttled && depth >= t.high {
		t.throttled = true
		return Event{Lane: t.lane, Crossing: CrossedHigh, Depth: depth}, true
	}
	if t.throttled && depth <= t.low {
		t.throttled = false
		return Event{Lane: t.lane, Crossing: CrossedLow, Depth: depth}, true
	}
	return Event{}, false
}

// Throttled reports whether the lane is in the high zone.
func (t *Tracker) Throttled() bool { return t.throttled }
