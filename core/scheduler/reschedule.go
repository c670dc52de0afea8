package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/focusplan/core/energy"
	"github.com/kilianp07/focusplan/core/model"
	"github.com/kilianp07/focusplan/core/prediction"
	"github.com/kilianp07/focusplan/core/slots"
)

// RescheduleRequest identifies one scheduled meeting to look for a better
// place for.
type RescheduleRequest struct {
	Schedule     Result
	MeetingID    string
	Profile      energy.Profile
	Now          time.Time
	Availability prediction.AvailabilityPredictor
}

// Reschedule searches the lookahead window after Now for a slot that beats
// the meeting's current score by at least the configured improvement. Time
// held by the other scheduled meetings is not offered. It returns nil when
// nothing is materially better and never modifies the schedule.
func (a *Assigner) Reschedule(ctx context.Context, req RescheduleRequest) (*model.TimeSlot, error) {
	cur, ok := req.Schedule.Scheduled[req.MeetingID]
	if !ok {
		return nil, fmt.Errorf("meeting %s: %w", req.MeetingID, model.ErrNotFound)
	}
	end := req.Now.AddDate(0, 0, a.cfg.RescheduleLookaheadDays)
	if !end.After(req.Now) {
		return nil, nil
	}
	pool := slots.NewPool(a.gen.Generate(req.Now, end))
	for id, other := range req.Schedule.Scheduled {
		if id != req.MeetingID {
			pool.Remove(other.Slot.Start, other.Slot.End)
		}
	}

	sc := a.runScorer(Request{Availability: req.Availability})
	best, err := a.best(ctx, sc, pool, cur.Meeting, req.Profile)
	if err != nil || !best.found {
		return nil, err
	}
	threshold := cur.Score * (1 + a.cfg.RescheduleImprovement)
	if best.score <= threshold {
		a.log.Debugf("no materially better slot for %s (best %.1f, need > %.1f)", req.MeetingID, best.score, threshold)
		return nil, nil
	}
	return &model.TimeSlot{Start: best.start, End: best.start.Add(cur.Meeting.Duration()), Score: best.score}, nil
}
