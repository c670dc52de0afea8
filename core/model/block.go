package model

import (
	"fmt"
	"strings"
	"time"
)

// BlockType describes why a span of calendar time is reserved.
type BlockType int

const (
	BlockNoMeetingDay BlockType = iota
	BlockFocusTime
	BlockPersonalTime
	BlockFlexible
)

func (t BlockType) String() string {
	switch t {
	case BlockNoMeetingDay:
		return "no_meeting_day"
	case BlockFocusTime:
		return "focus_time"
	case BlockPersonalTime:
		return "personal_time"
	case BlockFlexible:
		return "flexible"
	default:
		return "unknown"
	}
}

// ParseBlockType converts a wire name into a BlockType.
func ParseBlockType(s string) (BlockType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "no_meeting_day":
		return BlockNoMeetingDay, nil
	case "focus_time":
		return BlockFocusTime, nil
	case "personal_time":
		return BlockPersonalTime, nil
	case "flexible":
		return BlockFlexible, nil
	default:
		return 0, fmt.Errorf("%w: unknown block type %q", ErrInvalidInput, s)
	}
}

func (t BlockType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *BlockType) UnmarshalText(b []byte) error {
	v, err := ParseBlockType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Block reserves calendar time for a user.
type Block struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	Type              BlockType `json:"type"`
	Reason            string    `json:"reason"`
	ExceptionsAllowed bool      `json:"exceptions_allowed"`
	Recurring         bool      `json:"recurring"`
}

// Contains reports whether t lies in [Start, End).
func (b Block) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// Duration returns End - Start.
func (b Block) Duration() time.Duration { return b.End.Sub(b.Start) }

// NoMeetingDay is a weekly recurring day on which regular meetings are not allowed.
type NoMeetingDay struct {
	UserID            string `json:"user_id"`
	Weekday           int    `json:"day_of_week"` // 0=Monday ... 6=Sunday
	DayName           string `json:"day_name"`
	Recurring         bool   `json:"recurring"`
	ExceptionsAllowed bool   `json:"exceptions_allowed"`
	Active            bool   `json:"active"`
}

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayName returns the English name of an ISO-style weekday index (0=Monday).
func DayName(weekday int) (string, error) {
	if weekday < 0 || weekday > 6 {
		return "", fmt.Errorf("%w: day_of_week %d must be 0-6", ErrInvalidInput, weekday)
	}
	return dayNames[weekday], nil
}

// ISOWeekday maps t to 0=Monday ... 6=Sunday.
func ISOWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
