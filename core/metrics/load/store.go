package load

import "time"

// Store persists daily meeting load records.
type Store interface {
	// Add accumulates r into the record of its user and day.
	Add(Record) error
	// Replace drops the user's records for every day in [Day(start), end)
	// and accumulates recs in their place, so the latest plan of a window
	// supersedes earlier ones.
	Replace(userID string, start, end time.Time, recs []Record) error
	Query(userID string, start, end time.Time) ([]Record, error)
}

// Day aligns t to the start of its day in UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Days lists the days touched by [start, end).
func Days(start, end time.Time) []time.Time {
	var out []time.Time
	for d := Day(start); d.Before(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
