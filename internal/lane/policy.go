package lane

import "fmt"

// Policy selects the behavior when a lane is full at enqueue time.
type Policy int

const (
	// PolicyReject drops the new item and reports EnqueueRejected.
	PolicyReject Policy = iota
	// PolicyEvictOldest pops the FIFO head to make room for the new item.
	PolicyEvictOldest
)

// String returns the textual policy name used in config files and flags.
func (p Policy) String() string {
	switch p {
	case PolicyReject:
		return "reject"
	case PolicyEvictOldest:
		return "evict-oldest"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the defined policies.
func (p Policy) Valid() bool {
	return p == PolicyReject || p == PolicyEvictOldest
}

// ParsePolicy parses a textual policy name.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "reject", "":
		return PolicyReject, nil
	case "evict-oldest", "evict_oldest":
		return PolicyEvictOldest, nil
	}
	return PolicyReject, fmt.Errorf("lane: unknown overflow policy %q", s)
}
