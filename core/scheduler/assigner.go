package scheduler

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/focusplan/core/energy"
	"github.com/kilianp07/focusplan/core/logger"
	"github.com/kilianp07/focusplan/core/model"
	"github.com/kilianp07/focusplan/core/prediction"
	"github.com/kilianp07/focusplan/core/scoring"
	"github.com/kilianp07/focusplan/core/slots"
)

// Request describes one assignment run. Availability and Grouping override
// the scorer inputs for this run only.
type Request struct {
	UserID       string
	Meetings     []model.Meeting
	Start        time.Time
	End          time.Time
	Profile      energy.Profile
	Availability prediction.AvailabilityPredictor
	Grouping     prediction.GroupingEstimator
}

// Strategy assigns meetings to time. Assigner is the greedy implementation;
// alternatives can be substituted behind the same contract.
type Strategy interface {
	Assign(ctx context.Context, req Request) (Result, error)
}

var _ Strategy = (*Assigner)(nil)

// Assigner places meetings greedily by descending constraint. It keeps no
// state between runs and can serve concurrent requests.
type Assigner struct {
	cfg    Config
	gen    slots.Generator
	scorer *scoring.Scorer
	log    logger.Logger
}

// NewAssigner validates cfg and returns an Assigner.
func NewAssigner(cfg Config, scorer *scoring.Scorer, log logger.Logger) (*Assigner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if scorer == nil {
		var err error
		if scorer, err = scoring.New(); err != nil {
			return nil, err
		}
	}
	return &Assigner{cfg: cfg, gen: cfg.Generator(), scorer: scorer, log: logger.OrNop(log)}, nil
}

// Config returns the active configuration.
func (a *Assigner) Config() Config { return a.cfg }

// Weights returns the scoring weights in use.
func (a *Assigner) Weights() scoring.Weights { return a.scorer.Weights() }

type candidate struct {
	start time.Time
	score float64
	found bool
}

// better reports whether c beats o: higher score, then earlier start.
func (c candidate) better(o candidate) bool {
	if !o.found {
		return c.found
	}
	if !c.found {
		return false
	}
	if c.score != o.score {
		return c.score > o.score
	}
	return c.start.Before(o.start)
}

// Assign places every meeting of req it can and reports the rest as
// unscheduled. Invalid meetings or ranges are rejected before any placement.
func (a *Assigner) Assign(ctx context.Context, req Request) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}
	sc := a.runScorer(req)
	pool := slots.NewPool(a.gen.Generate(req.Start, req.End))
	res := Result{
		UserID:      req.UserID,
		Start:       req.Start,
		End:         req.End,
		Scheduled:   make(map[string]Assignment, len(req.Meetings)),
		Unscheduled: []model.Meeting{},
	}
	a.log.Infof("optimizing schedule for %d meetings (user %s)", len(req.Meetings), req.UserID)

	obs, _ := sc.Grouping().(prediction.Observer)
	for _, m := range Order(req.Meetings) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		best, err := a.best(ctx, sc, pool, m, req.Profile)
		if err != nil {
			return Result{}, err
		}
		if !best.found {
			res.Unscheduled = append(res.Unscheduled, m)
			a.log.Infof("could not schedule meeting %s (%s): no free block of %d minutes", m.ID, m.Title, m.DurationMinutes)
			continue
		}
		slot := model.TimeSlot{Start: best.start, End: best.start.Add(m.Duration()), Score: best.score}
		if err := pool.Reserve(slot.Start, slot.End); err != nil {
			return Result{}, fmt.Errorf("reserve %s: %w", m.ID, err)
		}
		res.Scheduled[m.ID] = Assignment{Meeting: m, Slot: slot, Score: best.score}
		if obs != nil {
			obs.Observe(m, slot)
		}
		a.log.Debugw("meeting scheduled", map[string]any{
			"meeting_id": m.ID,
			"start":      slot.Start,
			"score":      best.score,
		})
	}
	res.Metrics = ComputeMetrics(res.Scheduled, res.Unscheduled)
	res.Recommendations = Recommend(res.Metrics)
	return res, nil
}

func (a *Assigner) runScorer(req Request) *scoring.Scorer {
	grouping := req.Grouping
	if grouping == nil && a.cfg.Grouping == "adjacency" {
		grouping = prediction.NewAdjacencyGrouping()
	}
	if req.Availability == nil && grouping == nil {
		return a.scorer
	}
	return a.scorer.With(scoring.WithAvailability(req.Availability), scoring.WithGrouping(grouping))
}

// starts lists the feasible starts of m in pool honouring its bounds.
func (a *Assigner) starts(pool *slots.Pool, m model.Meeting) []time.Time {
	d := m.Duration()
	var out []time.Time
	for s := range pool.FeasibleStarts(d, a.cfg.Step()) {
		if m.EarliestStart != nil && s.Before(*m.EarliestStart) {
			continue
		}
		if m.LatestEnd != nil && s.Add(d).After(*m.LatestEnd) {
			break
		}
		out = append(out, s)
	}
	return out
}

func (a *Assigner) evaluate(sc *scoring.Scorer, m model.Meeting, s time.Time, p energy.Profile) candidate {
	slot := model.TimeSlot{Start: s, End: s.Add(m.Duration())}
	return candidate{start: s, score: sc.Score(m, slot, p), found: true}
}

// best scores every feasible start and reduces to the single best one.
// Scoring may fan out over Workers goroutines; the reduction is the same
// max-by-score, earliest-start rule either way.
func (a *Assigner) best(ctx context.Context, sc *scoring.Scorer, pool *slots.Pool, m model.Meeting, p energy.Profile) (candidate, error) {
	starts := a.starts(pool, m)
	workers := a.cfg.Workers
	if workers <= 1 || len(starts) < 2*workers {
		var best candidate
		for _, s := range starts {
			if c := a.evaluate(sc, m, s, p); c.better(best) {
				best = c
			}
		}
		return best, nil
	}

	chunk := (len(starts) + workers - 1) / workers
	partial := make([]candidate, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= len(starts) {
			break
		}
		hi := min(lo+chunk, len(starts))
		g.Go(func() error {
			var local candidate
			for _, s := range starts[lo:hi] {
				if err := gctx.Err(); err != nil {
					return err
				}
				if c := a.evaluate(sc, m, s, p); c.better(local) {
					local = c
				}
			}
			partial[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return candidate{}, err
	}
	var best candidate
	for _, c := range partial {
		if c.better(best) {
			best = c
		}
	}
	return best, nil
}

func validateRequest(req Request) error {
	if !req.End.After(req.Start) {
		return fmt.Errorf("scheduling window: %w", model.ErrInvalidRange)
	}
	seen := make(map[string]struct{}, len(req.Meetings))
	for _, m := range req.Meetings {
		if err := m.Validate(); err != nil {
			return err
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("%w: duplicate meeting id %s", model.ErrInvalidInput, m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	return nil
}
