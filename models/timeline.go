package models

import "fmt"

// TimelineEntry is the allocator's output for one visual asset: the
// display duration it was assigned and its cumulative offset from the
// start of the timeline.
//
// Invariants over a full timeline: durations are positive, offsets are
// the running sum of all earlier durations, and the durations sum to the
// probed narration length within a small tolerance (except where jitter
// is deliberately left unrenormalized; see the timeline package).
type TimelineEntry struct {
	Duration float64 `json:"duration"`
	Offset   float64 `json:"offset"`
}

// Validate checks a single entry.
func (e *TimelineEntry) Validate() error {
	if e.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %.3f", e.Duration)
	}
	if e.Offset < 0 {
		return fmt.Errorf("offset cannot be negative, got %.3f", e.Offset)
	}
	return nil
}

// End returns the timeline position at which this entry finishes.
func (e *TimelineEntry) End() float64 {
	return e.Offset + e.Duration
}
