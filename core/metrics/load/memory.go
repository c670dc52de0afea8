package load

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore stores records in memory for testing or lightweight usage.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[time.Time]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[time.Time]*Record{}}
}

// Add accumulates r into the record of its user and day.
func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(r)
	return nil
}

func (s *MemoryStore) Replace(userID string, start, end time.Time, recs []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range Days(start, end) {
		delete(s.data[userID], d)
	}
	for _, r := range recs {
		r.UserID = userID
		s.add(r)
	}
	return nil
}

func (s *MemoryStore) add(r Record) {
	if s.data[r.UserID] == nil {
		s.data[r.UserID] = map[time.Time]*Record{}
	}
	d := Day(r.Date)
	rec := s.data[r.UserID][d]
	if rec == nil {
		rec = &Record{UserID: r.UserID, Date: d}
		s.data[r.UserID][d] = rec
	}
	rec.Meetings += r.Meetings
	rec.MeetingMinutes += r.MeetingMinutes
}

// Query returns records between start and end inclusive.
func (s *MemoryStore) Query(userID string, start, end time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start = Day(start)
	end = Day(end)
	var res []Record
	for d, r := range s.data[userID] {
		if d.Before(start) || d.After(end) {
			continue
		}
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}
