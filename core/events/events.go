package events

import "time"

// Event is implemented by every event published on the bus. Kind is used as
// the last topic segment when events are forwarded over MQTT.
type Event interface {
	Kind() string
	User() string
}

// Placement is a meeting placed by a run.
type Placement struct {
	MeetingID string    `json:"meeting_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Score     float64   `json:"score"`
}

// ScheduleOptimized is published after each assignment run.
type ScheduleOptimized struct {
	RunID        string      `json:"run_id"`
	UserID       string      `json:"user_id"`
	Placements   []Placement `json:"placements"`
	Unscheduled  []string    `json:"unscheduled"`
	SuccessRate  float64     `json:"success_rate"`
	AverageScore float64     `json:"average_score"`
	Time         time.Time   `json:"time"`
}

func (ScheduleOptimized) Kind() string   { return "schedule" }
func (e ScheduleOptimized) User() string { return e.UserID }

// PolicyEvaluated is published after each policy evaluation.
type PolicyEvaluated struct {
	UserID          string         `json:"user_id"`
	ComplianceScore float64        `json:"compliance_score"`
	Violations      map[string]int `json:"violations"`
	Time            time.Time      `json:"time"`
}

func (PolicyEvaluated) Kind() string   { return "policy" }
func (e PolicyEvaluated) User() string { return e.UserID }

// AllowanceDecided is published for each allowance check.
type AllowanceDecided struct {
	UserID      string    `json:"user_id"`
	MeetingType string    `json:"meeting_type"`
	Proposed    time.Time `json:"proposed"`
	Allowed     bool      `json:"allowed"`
	Time        time.Time `json:"time"`
}

func (AllowanceDecided) Kind() string   { return "allowance" }
func (e AllowanceDecided) User() string { return e.UserID }

// ProfileInvalidated signals that cached energy data for a user is stale.
type ProfileInvalidated struct {
	UserID string    `json:"user_id"`
	Time   time.Time `json:"time"`
}

func (ProfileInvalidated) Kind() string   { return "energy" }
func (e ProfileInvalidated) User() string { return e.UserID }
