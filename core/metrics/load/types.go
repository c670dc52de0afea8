package load

import "time"

// Record aggregates the planned meeting load of a user for one day.
type Record struct {
	UserID         string
	Date           time.Time
	Meetings       int
	MeetingMinutes float64
}

// Ratio returns the share of workMinutes taken by meetings, capped at 1.
func (r Record) Ratio(workMinutes float64) float64 {
	if workMinutes <= 0 {
		return 0
	}
	if v := r.MeetingMinutes / workMinutes; v < 1 {
		return v
	}
	return 1
}

// FreeMinutes returns the working time left for focus work.
func (r Record) FreeMinutes(workMinutes float64) float64 {
	if free := workMinutes - r.MeetingMinutes; free > 0 {
		return free
	}
	return 0
}
