package policy

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/focusplan/core/model"
)

// BlockStore persists calendar blocks and no-meeting day configuration.
type BlockStore interface {
	AddBlock(ctx context.Context, b model.Block) error
	// BlocksForDay returns the user's blocks overlapping the calendar day of
	// day, ordered by start. Recurring blocks are projected onto the day when
	// their weekday matches.
	BlocksForDay(ctx context.Context, userID string, day time.Time) ([]model.Block, error)
	SetNoMeetingDay(ctx context.Context, d model.NoMeetingDay) error
	NoMeetingDays(ctx context.Context, userID string) ([]model.NoMeetingDay, error)
}

// MemoryBlockStore is an in-process BlockStore.
type MemoryBlockStore struct {
	mu     sync.RWMutex
	blocks map[string][]model.Block
	days   map[string]map[int]model.NoMeetingDay
}

// NewMemoryBlockStore returns an empty store.
func NewMemoryBlockStore() *MemoryBlockStore {
	return &MemoryBlockStore{
		blocks: make(map[string][]model.Block),
		days:   make(map[string]map[int]model.NoMeetingDay),
	}
}

func (s *MemoryBlockStore) AddBlock(_ context.Context, b model.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[b.UserID] = append(s.blocks[b.UserID], b)
	return nil
}

func (s *MemoryBlockStore) BlocksForDay(_ context.Context, userID string, day time.Time) ([]model.Block, error) {
	from := model.Day(day)
	to := from.AddDate(0, 0, 1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Block
	for _, b := range s.blocks[userID] {
		if b.Recurring {
			b = projectWeekly(b, from)
		}
		if b.Start.Before(to) && b.End.After(from) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (s *MemoryBlockStore) SetNoMeetingDay(_ context.Context, d model.NoMeetingDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.days[d.UserID] == nil {
		s.days[d.UserID] = make(map[int]model.NoMeetingDay)
	}
	s.days[d.UserID][d.Weekday] = d
	return nil
}

func (s *MemoryBlockStore) NoMeetingDays(_ context.Context, userID string) ([]model.NoMeetingDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.NoMeetingDay, 0, len(s.days[userID]))
	for _, d := range s.days[userID] {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weekday < out[j].Weekday })
	return out, nil
}

// projectWeekly moves a recurring block to the same time of day on day when
// the weekdays match and the block started on or before it.
func projectWeekly(b model.Block, day time.Time) model.Block {
	first := model.Day(b.Start)
	if model.ISOWeekday(first) != model.ISOWeekday(day) || day.Before(first) {
		return b
	}
	days := int(math.Round(day.Sub(first).Hours() / 24))
	b.Start = b.Start.AddDate(0, 0, days)
	b.End = b.End.AddDate(0, 0, days)
	return b
}
