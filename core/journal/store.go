package journal

import (
	"context"
	"slices"
	"time"

	"github.com/kilianp07/focusplan/core/events"
)

// RunRecord captures one optimization run and its outcome.
type RunRecord struct {
	RunID        string             `json:"run_id"`
	Timestamp    time.Time          `json:"timestamp"`
	UserID       string             `json:"user_id"`
	WindowStart  time.Time          `json:"window_start"`
	WindowEnd    time.Time          `json:"window_end"`
	Meetings     int                `json:"meetings"`
	Placements   []events.Placement `json:"placements"`
	Unscheduled  []string           `json:"unscheduled"`
	SuccessRate  float64            `json:"success_rate"`
	AverageScore float64            `json:"average_score"`
	DurationMS   int64              `json:"duration_ms"`
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	Start     time.Time
	End       time.Time
	UserID    string
	MeetingID string
}

// Match reports whether r satisfies q.
func (q Query) Match(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.UserID != "" && r.UserID != q.UserID {
		return false
	}
	if q.MeetingID == "" {
		return true
	}
	if slices.Contains(r.Unscheduled, q.MeetingID) {
		return true
	}
	return slices.ContainsFunc(r.Placements, func(p events.Placement) bool {
		return p.MeetingID == q.MeetingID
	})
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q Query) ([]RunRecord, error)
	Close() error
}
