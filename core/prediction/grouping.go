package prediction

import (
	"sync"

	"github.com/kilianp07/focusplan/core/model"
)

// DefaultGrouping is the grouping efficiency assumed without adjacency data.
const DefaultGrouping = 75.0

// GroupingEstimator scores in [0,100] how well placing meeting in slot
// groups it with the rest of the calendar.
type GroupingEstimator interface {
	GroupingEfficiency(meeting model.Meeting, slot model.TimeSlot) float64
}

// Observer is implemented by estimators that learn from placements made
// during an assignment run.
type Observer interface {
	Observe(meeting model.Meeting, slot model.TimeSlot)
}

// StaticGrouping returns the same score for every slot.
type StaticGrouping struct {
	Score float64
}

// GroupingEfficiency implements GroupingEstimator.
func (s StaticGrouping) GroupingEfficiency(model.Meeting, model.TimeSlot) float64 {
	if s.Score == 0 {
		return DefaultGrouping
	}
	return s.Score
}

// AdjacencyGrouping favours slots that directly touch a meeting of the same
// type and, to a lesser degree, any meeting. Isolated slots get Base.
type AdjacencyGrouping struct {
	Base     float64
	SameType float64
	AnyType  float64

	mu     sync.RWMutex
	placed []placement
}

type placement struct {
	kind model.MeetingType
	slot model.TimeSlot
}

// NewAdjacencyGrouping returns an estimator scoring 75 for isolated slots,
// 100 next to the same meeting type and 85 next to any meeting.
func NewAdjacencyGrouping() *AdjacencyGrouping {
	return &AdjacencyGrouping{Base: DefaultGrouping, SameType: 100, AnyType: 85}
}

// Observe records a placed meeting.
func (a *AdjacencyGrouping) Observe(m model.Meeting, slot model.TimeSlot) {
	a.mu.Lock()
	a.placed = append(a.placed, placement{kind: m.Type, slot: slot})
	a.mu.Unlock()
}

// Reset forgets all observed placements.
func (a *AdjacencyGrouping) Reset() {
	a.mu.Lock()
	a.placed = nil
	a.mu.Unlock()
}

// GroupingEfficiency implements GroupingEstimator.
func (a *AdjacencyGrouping) GroupingEfficiency(m model.Meeting, slot model.TimeSlot) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	score := a.Base
	for _, p := range a.placed {
		if !p.slot.End.Equal(slot.Start) && !p.slot.Start.Equal(slot.End) {
			continue
		}
		if p.kind == m.Type {
			return a.SameType
		}
		if a.AnyType > score {
			score = a.AnyType
		}
	}
	return score
}
