package model

import "time"

// TimeSlot is a candidate or allocated span of calendar time. Score is only
// meaningful once the slot has been scored and lies in [0,100].
type TimeSlot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Score     float64   `json:"score"`
	Conflicts []string  `json:"conflicts,omitempty"`
}

// Duration returns End - Start.
func (s TimeSlot) Duration() time.Duration { return s.End.Sub(s.Start) }

// Contains reports whether t lies in [Start, End).
func (s TimeSlot) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Overlaps reports whether the half-open intervals of s and o intersect.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Validate rejects empty or inverted slots.
func (s TimeSlot) Validate() error {
	if !s.End.After(s.Start) {
		return ErrInvalidRange
	}
	return nil
}
