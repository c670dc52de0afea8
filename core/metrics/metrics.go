package metrics

import (
	"time"
)

// OptimizationEvent summarises one assignment run.
type OptimizationEvent struct {
	RunID                 string
	UserID                string
	Meetings              int
	Scheduled             int
	Unscheduled           int
	HighPriorityScheduled int
	SuccessRate           float64
	AverageScore          float64
	Duration              time.Duration
	Time                  time.Time
}

// MetricsSink records optimization runs for observability purposes.
type MetricsSink interface {
	RecordOptimization(ev OptimizationEvent) error
}

// PlacementEvent is one meeting placed by a run.
type PlacementEvent struct {
	RunID       string
	UserID      string
	MeetingID   string
	MeetingType string
	Start       time.Time
	Minutes     int
	Score       float64
}

// PlacementRecorder records individual placements.
type PlacementRecorder interface {
	RecordPlacements(ev []PlacementEvent) error
}

// WindowEvent is the complete plan a run produced for a scheduling window.
type WindowEvent struct {
	RunID      string
	UserID     string
	Start      time.Time
	End        time.Time
	Placements []PlacementEvent
}

// WindowRecorder records run plans per window. A later plan for the same
// days supersedes the earlier one instead of adding to it.
type WindowRecorder interface {
	RecordWindow(ev WindowEvent) error
}

// PolicyEvent is the outcome of a policy evaluation.
type PolicyEvent struct {
	UserID          string
	Violations      map[string]int
	ComplianceScore float64
	Time            time.Time
}

// PolicyRecorder records policy evaluations.
type PolicyRecorder interface {
	RecordPolicyEvaluation(ev PolicyEvent) error
}

// AllowanceEvent is one allowance decision.
type AllowanceEvent struct {
	UserID      string
	MeetingType string
	Allowed     bool
	Time        time.Time
}

// AllowanceRecorder records allowance decisions.
type AllowanceRecorder interface {
	RecordAllowance(ev AllowanceEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordOptimization(OptimizationEvent) error  { return nil }
func (NopSink) RecordPlacements([]PlacementEvent) error     { return nil }
func (NopSink) RecordWindow(WindowEvent) error              { return nil }
func (NopSink) RecordPolicyEvaluation(PolicyEvent) error    { return nil }
func (NopSink) RecordAllowance(AllowanceEvent) error        { return nil }
