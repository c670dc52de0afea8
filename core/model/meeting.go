package model

import (
	"fmt"
	"strings"
	"time"
)

// MeetingType classifies the cognitive demand of a meeting.
type MeetingType int

const (
	MeetingDeepWork MeetingType = iota
	MeetingCollaborative
	MeetingRoutine
	MeetingAdministrative
	// MeetingUrgent and MeetingExecutive are only meaningful for allowance
	// checks where they may override a block that accepts exceptions.
	MeetingUrgent
	MeetingExecutive
)

// String returns the wire name of the meeting type.
func (t MeetingType) String() string {
	switch t {
	case MeetingDeepWork:
		return "deep_work"
	case MeetingCollaborative:
		return "collaborative"
	case MeetingRoutine:
		return "routine"
	case MeetingAdministrative:
		return "administrative"
	case MeetingUrgent:
		return "urgent"
	case MeetingExecutive:
		return "executive"
	default:
		return "unknown"
	}
}

// RequiredEnergy is the energy level a participant should have for the
// meeting type to be comfortably held.
func (t MeetingType) RequiredEnergy() float64 {
	switch t {
	case MeetingDeepWork:
		return 80
	case MeetingCollaborative:
		return 60
	case MeetingRoutine:
		return 40
	case MeetingAdministrative:
		return 30
	case MeetingUrgent, MeetingExecutive:
		return 50
	default:
		return 50
	}
}

// IsException reports whether the type may override an exception-friendly block.
func (t MeetingType) IsException() bool {
	switch t {
	case MeetingUrgent, MeetingExecutive:
		return true
	case MeetingDeepWork, MeetingCollaborative, MeetingRoutine, MeetingAdministrative:
		return false
	default:
		return false
	}
}

// ParseMeetingType converts a wire name into a MeetingType.
func ParseMeetingType(s string) (MeetingType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deep_work":
		return MeetingDeepWork, nil
	case "collaborative":
		return MeetingCollaborative, nil
	case "routine":
		return MeetingRoutine, nil
	case "administrative":
		return MeetingAdministrative, nil
	case "urgent":
		return MeetingUrgent, nil
	case "executive":
		return MeetingExecutive, nil
	default:
		return 0, fmt.Errorf("%w: unknown meeting type %q", ErrInvalidInput, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t MeetingType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *MeetingType) UnmarshalText(b []byte) error {
	v, err := ParseMeetingType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Flexibility expresses how constrained the placement of a meeting is.
type Flexibility int

const (
	FlexibilityLow Flexibility = iota
	FlexibilityMedium
	FlexibilityHigh
)

func (f Flexibility) String() string {
	switch f {
	case FlexibilityLow:
		return "low"
	case FlexibilityMedium:
		return "medium"
	case FlexibilityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Rank orders flexibilities so that the most constrained meetings come first.
func (f Flexibility) Rank() int {
	switch f {
	case FlexibilityLow:
		return 0
	case FlexibilityMedium:
		return 1
	case FlexibilityHigh:
		return 2
	default:
		return 1
	}
}

// ParseFlexibility converts a wire name into a Flexibility.
func ParseFlexibility(s string) (Flexibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return FlexibilityLow, nil
	case "medium":
		return FlexibilityMedium, nil
	case "high":
		return FlexibilityHigh, nil
	default:
		return 0, fmt.Errorf("%w: unknown flexibility %q", ErrInvalidInput, s)
	}
}

func (f Flexibility) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Flexibility) UnmarshalText(b []byte) error {
	v, err := ParseFlexibility(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Meeting is a candidate meeting to be placed on a user's calendar.
type Meeting struct {
	ID              string      `json:"id" yaml:"id"`
	Title           string      `json:"title" yaml:"title"`
	DurationMinutes int         `json:"duration_minutes" yaml:"duration_minutes"`
	Type            MeetingType `json:"meeting_type" yaml:"meeting_type"`
	Participants    []string    `json:"participants,omitempty" yaml:"participants,omitempty"`
	Priority        int         `json:"priority" yaml:"priority"` // 1-10
	Flexibility     Flexibility `json:"flexibility" yaml:"flexibility"`
	PreferredTime   *time.Time  `json:"preferred_time,omitempty" yaml:"preferred_time,omitempty"`
	EarliestStart   *time.Time  `json:"earliest_start,omitempty" yaml:"earliest_start,omitempty"`
	LatestEnd       *time.Time  `json:"latest_end,omitempty" yaml:"latest_end,omitempty"`
}

// Duration returns the meeting length.
func (m Meeting) Duration() time.Duration {
	return time.Duration(m.DurationMinutes) * time.Minute
}

// Validate checks that the meeting can be scheduled at all.
func (m Meeting) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: meeting id is required", ErrInvalidInput)
	}
	if m.DurationMinutes <= 0 {
		return fmt.Errorf("%w: meeting %s: duration must be positive", ErrInvalidInput, m.ID)
	}
	if m.Priority < 1 || m.Priority > 10 {
		return fmt.Errorf("%w: meeting %s: priority %d outside 1-10", ErrInvalidInput, m.ID, m.Priority)
	}
	if m.Type.String() == "unknown" {
		return fmt.Errorf("%w: meeting %s: unknown meeting type", ErrInvalidInput, m.ID)
	}
	if m.Flexibility.String() == "unknown" {
		return fmt.Errorf("%w: meeting %s: unknown flexibility", ErrInvalidInput, m.ID)
	}
	if m.EarliestStart != nil && m.LatestEnd != nil && !m.LatestEnd.After(*m.EarliestStart) {
		return fmt.Errorf("%w: meeting %s: latest end must be after earliest start", ErrInvalidInput, m.ID)
	}
	return nil
}

// HighPriority reports whether the meeting counts as high priority in metrics.
func (m Meeting) HighPriority() bool { return m.Priority >= 7 }
