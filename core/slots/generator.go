// Package slots generates fixed-granularity candidate slots inside working
// hours and tracks the free time still available during an assignment run.
package slots

import (
	"fmt"
	"iter"
	"time"

	"github.com/kilianp07/focusplan/core/model"
)

// Generator emits fixed-width candidate slots restricted to a daily working
// window. It holds no state between calls.
type Generator struct {
	Granularity time.Duration
	// WorkStartHour and WorkEndHour bound the working window [start, end) in
	// the location of the requested range.
	WorkStartHour int
	WorkEndHour   int
}

// NewGenerator returns a generator with 30 minute slots between 08:00 and 18:00.
func NewGenerator() Generator {
	return Generator{Granularity: 30 * time.Minute, WorkStartHour: 8, WorkEndHour: 18}
}

// Validate checks that the generator can emit at least one slot per day.
func (g Generator) Validate() error {
	if g.Granularity <= 0 || g.Granularity > 24*time.Hour {
		return fmt.Errorf("%w: slot granularity %s", model.ErrInvalidInput, g.Granularity)
	}
	if g.WorkStartHour < 0 || g.WorkEndHour > 24 || g.WorkStartHour >= g.WorkEndHour {
		return fmt.Errorf("%w: working hours %d-%d", model.ErrInvalidInput, g.WorkStartHour, g.WorkEndHour)
	}
	if time.Duration(g.WorkEndHour-g.WorkStartHour)*time.Hour < g.Granularity {
		return fmt.Errorf("%w: working window shorter than one slot", model.ErrInvalidInput)
	}
	return nil
}

// Generate lazily yields every slot of the working window that lies wholly
// inside [start, end), in chronological order. Slots are aligned to the
// granularity grid of each day. The sequence can be ranged over repeatedly.
func (g Generator) Generate(start, end time.Time) iter.Seq[model.TimeSlot] {
	return func(yield func(model.TimeSlot) bool) {
		if !end.After(start) || g.Validate() != nil {
			return
		}
		loc := start.Location()
		for day := model.Day(start); day.Before(end); day = nextDay(day) {
			y, m, d := day.Date()
			open := time.Date(y, m, d, g.WorkStartHour, 0, 0, 0, loc)
			closing := time.Date(y, m, d, g.WorkEndHour, 0, 0, 0, loc)
			for s := open; !s.Add(g.Granularity).After(closing); s = s.Add(g.Granularity) {
				e := s.Add(g.Granularity)
				if s.Before(start) {
					continue
				}
				if e.After(end) {
					return
				}
				if !yield(model.TimeSlot{Start: s, End: e}) {
					return
				}
			}
		}
	}
}

// Count returns the number of slots Generate would yield.
func (g Generator) Count(start, end time.Time) int {
	n := 0
	for range g.Generate(start, end) {
		n++
	}
	return n
}

func nextDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, day.Location())
}
