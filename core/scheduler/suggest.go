package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/focusplan/core/energy"
	"github.com/kilianp07/focusplan/core/model"
	"github.com/kilianp07/focusplan/core/prediction"
	"github.com/kilianp07/focusplan/core/slots"
)

// SuggestRequest asks for the best slots of a single meeting.
type SuggestRequest struct {
	Meeting      model.Meeting
	Start        time.Time
	End          time.Time
	Profile      energy.Profile
	Availability prediction.AvailabilityPredictor
	// Limit overrides Config.SuggestionLimit when positive.
	Limit int
}

// Suggest ranks every feasible start of the meeting over a fresh pool and
// returns the best ones, highest score first and earlier start on ties.
func (a *Assigner) Suggest(ctx context.Context, req SuggestRequest) ([]model.TimeSlot, error) {
	if err := req.Meeting.Validate(); err != nil {
		return nil, err
	}
	if !req.End.After(req.Start) {
		return nil, fmt.Errorf("suggestion window: %w", model.ErrInvalidRange)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = a.cfg.SuggestionLimit
	}
	sc := a.runScorer(Request{Availability: req.Availability})
	pool := slots.NewPool(a.gen.Generate(req.Start, req.End))

	var out []model.TimeSlot
	for _, s := range a.starts(pool, req.Meeting) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := a.evaluate(sc, req.Meeting, s, req.Profile)
		out = append(out, model.TimeSlot{Start: s, End: s.Add(req.Meeting.Duration()), Score: c.score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Start.Before(out[j].Start)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
