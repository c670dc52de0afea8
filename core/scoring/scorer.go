// Package scoring computes the composite suitability of placing a meeting in
// a slot from weighted energy, availability, preference, priority and
// grouping terms.
package scoring

import (
	"fmt"
	"math"

	"github.com/kilianp07/focusplan/core/energy"
	"github.com/kilianp07/focusplan/core/model"
	"github.com/kilianp07/focusplan/core/prediction"
)

// NeutralPreference is the time preference score of meetings without a
// preferred time.
const NeutralPreference = 70.0

// Weights are the relative contributions of each sub-score. They must sum to 1.
type Weights struct {
	Energy         float64 `json:"energy" yaml:"energy"`
	Availability   float64 `json:"participant_availability" yaml:"participant_availability"`
	TimePreference float64 `json:"time_preference" yaml:"time_preference"`
	Priority       float64 `json:"priority" yaml:"priority"`
	Grouping       float64 `json:"grouping_efficiency" yaml:"grouping_efficiency"`
}

// DefaultWeights returns the fixed production weighting.
func DefaultWeights() Weights {
	return Weights{Energy: 0.35, Availability: 0.25, TimePreference: 0.15, Priority: 0.15, Grouping: 0.10}
}

// Validate ensures the weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Energy, w.Availability, w.TimePreference, w.Priority, w.Grouping} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: negative weight", model.ErrInvalidInput)
		}
	}
	sum := w.Energy + w.Availability + w.TimePreference + w.Priority + w.Grouping
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%w: weights sum to %.4f, want 1", model.ErrInvalidInput, sum)
	}
	return nil
}

// Breakdown holds the individual sub-scores of a slot, each in [0,100].
type Breakdown struct {
	Energy         float64 `json:"energy"`
	Availability   float64 `json:"participant_availability"`
	TimePreference float64 `json:"time_preference"`
	Priority       float64 `json:"priority"`
	Grouping       float64 `json:"grouping_efficiency"`
	Total          float64 `json:"total"`
}

// Scorer combines the sub-scores. It is safe for concurrent use as long as
// its predictors are.
type Scorer struct {
	weights      Weights
	availability prediction.AvailabilityPredictor
	grouping     prediction.GroupingEstimator
}

// Option customises a Scorer.
type Option func(*Scorer)

// WithAvailability sets the participant availability input.
func WithAvailability(a prediction.AvailabilityPredictor) Option {
	return func(s *Scorer) {
		if a != nil {
			s.availability = a
		}
	}
}

// WithGrouping sets the grouping efficiency input.
func WithGrouping(g prediction.GroupingEstimator) Option {
	return func(s *Scorer) {
		if g != nil {
			s.grouping = g
		}
	}
}

// WithWeights overrides the default weights. The service always scores
// with DefaultWeights; this is for tests and alternative strategies.
func WithWeights(w Weights) Option {
	return func(s *Scorer) { s.weights = w }
}

// New returns a Scorer using default weights and default scoring inputs
// unless overridden.
func New(opts ...Option) (*Scorer, error) {
	s := &Scorer{
		weights:      DefaultWeights(),
		availability: prediction.StaticAvailability{},
		grouping:     prediction.StaticGrouping{},
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.weights.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Weights returns the active weights.
func (s *Scorer) Weights() Weights { return s.weights }

// Grouping returns the grouping input, so callers can feed placements back.
func (s *Scorer) Grouping() prediction.GroupingEstimator { return s.grouping }

// Score returns the composite score in [0,100] of placing m at slot.
func (s *Scorer) Score(m model.Meeting, slot model.TimeSlot, p energy.Profile) float64 {
	return s.Breakdown(m, slot, p).Total
}

// Breakdown returns every sub-score together with the weighted total.
func (s *Scorer) Breakdown(m model.Meeting, slot model.TimeSlot, p energy.Profile) Breakdown {
	b := Breakdown{
		Energy:         energy.Suitability(p, slot.Start, m.Type),
		Availability:   bounded(s.availability.ParticipantAvailability(m.Participants, slot)),
		TimePreference: TimePreference(m, slot),
		Priority:       bounded(float64(m.Priority) * 10),
		Grouping:       bounded(s.grouping.GroupingEfficiency(m, slot)),
	}
	w := s.weights
	b.Total = bounded(b.Energy*w.Energy +
		b.Availability*w.Availability +
		b.TimePreference*w.TimePreference +
		b.Priority*w.Priority +
		b.Grouping*w.Grouping)
	return b
}

// TimePreference scores how close slot starts to the preferred time: one
// point lost per hour of distance, or NeutralPreference without a preference.
func TimePreference(m model.Meeting, slot model.TimeSlot) float64 {
	if m.PreferredTime == nil {
		return NeutralPreference
	}
	hours := math.Abs(slot.Start.Sub(*m.PreferredTime).Hours())
	return math.Max(0, 100-hours)
}

func bounded(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// With returns a copy of s with opts applied on top of its current inputs.
// The receiver is not modified.
func (s *Scorer) With(opts ...Option) *Scorer {
	cp := *s
	for _, o := range opts {
		o(&cp)
	}
	return &cp
}
