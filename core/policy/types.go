package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/focusplan/core/model"
)

// Severity ranks a violation.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Penalty is the compliance points deducted for one violation.
func (s Severity) Penalty() float64 {
	switch s {
	case SeverityLow:
		return 5
	case SeverityHigh:
		return 20
	default:
		return 10
	}
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "low":
		*s = SeverityLow
	case "medium":
		*s = SeverityMedium
	case "high":
		*s = SeverityHigh
	default:
		return fmt.Errorf("%w: unknown severity %q", model.ErrInvalidInput, b)
	}
	return nil
}

// Violation kinds.
const (
	InsufficientNoMeetingDays = "insufficient_no_meeting_days"
	NoMeetingDayViolation     = "no_meeting_day_violation"
	InsufficientFocusTime     = "insufficient_focus_time"
)

// Violation is one breach of the policy.
type Violation struct {
	Type            string     `json:"type"`
	Severity        Severity   `json:"severity"`
	Message         string     `json:"message"`
	SuggestedAction string     `json:"suggested_action,omitempty"`
	MeetingID       string     `json:"meeting_id,omitempty"`
	MeetingTitle    string     `json:"meeting_title,omitempty"`
	ScheduledTime   *time.Time `json:"scheduled_time,omitempty"`
	Day             *time.Time `json:"day,omitempty"`
}

// Correction proposes a configuration change that would fix a violation.
type Correction struct {
	Type    string `json:"type"`
	Weekday int    `json:"day_of_week"`
	DayName string `json:"day_name"`
	Reason  string `json:"reason"`
}

// Placement is a meeting and the slot it occupies.
type Placement struct {
	Meeting model.Meeting  `json:"meeting"`
	Slot    model.TimeSlot `json:"slot"`
}

// Schedule is the input of an evaluation. When Start or End are zero the
// span is derived from the placements.
type Schedule struct {
	Start      time.Time   `json:"start"`
	End        time.Time   `json:"end"`
	Placements []Placement `json:"placements"`
}

// span returns the evaluated [start, end) range; ok is false for an empty
// schedule without explicit bounds.
func (s Schedule) span() (start, end time.Time, ok bool) {
	start, end = s.Start, s.End
	for _, p := range s.Placements {
		if s.Start.IsZero() && (start.IsZero() || p.Slot.Start.Before(start)) {
			start = p.Slot.Start
		}
		if s.End.IsZero() && (end.IsZero() || p.Slot.End.After(end)) {
			end = p.Slot.End
		}
	}
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// Report is the outcome of a policy evaluation.
type Report struct {
	UserID          string       `json:"user_id"`
	EvaluatedAt     time.Time    `json:"enforcement_date"`
	NoMeetingDays   []time.Time  `json:"no_meeting_days_configured"`
	Violations      []Violation  `json:"violations"`
	Corrections     []Correction `json:"corrections"`
	ComplianceScore float64      `json:"compliance_score"`
	Recommendations []string     `json:"recommendations"`
}

// Allowance is the decision for a proposed meeting time.
type Allowance struct {
	Allowed          bool        `json:"allowed"`
	Reason           string      `json:"reason"`
	Warning          string      `json:"warning,omitempty"`
	AlternativeTimes []time.Time `json:"alternative_times,omitempty"`
}

// ComplianceScore is 100 minus the penalty of every violation, floored at 0.
func ComplianceScore(violations []Violation) float64 {
	score := 100.0
	for _, v := range violations {
		score -= v.Severity.Penalty()
	}
	if score < 0 {
		return 0
	}
	return score
}

func recommendations(violations []Violation) []string {
	if len(violations) == 0 {
		return []string{"No violations detected. Policy compliance is excellent."}
	}
	kinds := make(map[string]bool, len(violations))
	for _, v := range violations {
		kinds[v.Type] = true
	}
	recs := []string{}
	if kinds[InsufficientNoMeetingDays] {
		recs = append(recs, "Schedule at least one additional no-meeting day per week for focus time")
	}
	if kinds[NoMeetingDayViolation] {
		recs = append(recs, "Reschedule non-critical meetings away from designated no-meeting days")
	}
	if kinds[InsufficientFocusTime] {
		recs = append(recs, "Block additional 90-minute focus time slots in your calendar")
	}
	return recs
}
