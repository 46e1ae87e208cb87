package metrics

import "sync/atomic"

// Counters tracks process-level request outcomes.
type Counters struct {
	matches   atomic.Int64
	fallbacks atomic.Int64
	feedback  atomic.Int64
}

// NewCounters constructs a zeroed counter set.
func NewCounters() *Counters {
	return &Counters{}
}

// MatchServed records a query answered from the FAQ bank.
func (c *Counters) MatchServed() { c.matches.Add(1) }

// FallbackServed records a query that fell through to the fallback answer.
func (c *Counters) FallbackServed() { c.fallbacks.Add(1) }

// FeedbackRecorded records an accepted feedback submission.
func (c *Counters) FeedbackRecorded() { c.feedback.Add(1) }

// Usage is a point-in-time snapshot of the counters.
type Usage struct {
	Matches   int64 `json:"matches"`
	Fallbacks int64 `json:"fallbacks"`
	Feedback  int64 `json:"feedback"`
}

// Snapshot reads the current counter values.
func (c *Counters) Snapshot() Usage {
	return Usage{
		Matches:   c.matches.Load(),
		Fallbacks: c.fallbacks.Load(),
		Feedback:  c.feedback.Load(),
	}
}
