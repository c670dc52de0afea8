package prediction

import (
	"sort"
	"time"

	"github.com/kilianp07/focusplan/core/model"
)

// DefaultAvailability is the participant availability assumed when no
// free/busy data is known.
const DefaultAvailability = 70.0

// AvailabilityPredictor scores in [0,100] how available the participants are
// during slot.
type AvailabilityPredictor interface {
	ParticipantAvailability(participants []string, slot model.TimeSlot) float64
}

// StaticAvailability returns the same score for every slot.
type StaticAvailability struct {
	Score float64
}

// ParticipantAvailability implements AvailabilityPredictor. A zero Score
// means DefaultAvailability.
func (s StaticAvailability) ParticipantAvailability([]string, model.TimeSlot) float64 {
	if s.Score == 0 {
		return DefaultAvailability
	}
	return s.Score
}

// BusyInterval is a span during which a participant is not available.
type BusyInterval struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// FreeBusyAvailability scores slots by the share of participants free for
// the whole slot. Participants without data count as free with the
// configured Unknown score.
type FreeBusyAvailability struct {
	busy map[string][]BusyInterval
	// Unknown is the score contribution of a participant without data, in [0,100].
	Unknown float64
}

// NewFreeBusyAvailability copies and sorts the busy intervals per participant.
func NewFreeBusyAvailability(busy map[string][]BusyInterval) *FreeBusyAvailability {
	cp := make(map[string][]BusyInterval, len(busy))
	for id, iv := range busy {
		list := append([]BusyInterval(nil), iv...)
		sort.Slice(list, func(i, j int) bool { return list[i].Start.Before(list[j].Start) })
		cp[id] = list
	}
	return &FreeBusyAvailability{busy: cp, Unknown: DefaultAvailability}
}

// ParticipantAvailability implements AvailabilityPredictor.
func (f *FreeBusyAvailability) ParticipantAvailability(participants []string, slot model.TimeSlot) float64 {
	if len(participants) == 0 {
		return 100
	}
	var total float64
	for _, p := range participants {
		intervals, ok := f.busy[p]
		if !ok {
			total += f.Unknown
			continue
		}
		if free(intervals, slot) {
			total += 100
		}
	}
	return total / float64(len(participants))
}

func free(intervals []BusyInterval, slot model.TimeSlot) bool {
	for _, iv := range intervals {
		if !iv.Start.Before(slot.End) {
			return true
		}
		if slot.Start.Before(iv.End) {
			return false
		}
	}
	return true
}
