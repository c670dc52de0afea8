package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/focusplan/core/metrics"
)

// PromSink records scheduling events in Prometheus metrics.
type PromSink struct {
	runs        prometheus.Counter
	meetings    *prometheus.CounterVec
	successRate *prometheus.GaugeVec
	duration    prometheus.Histogram
	slotScore   *prometheus.HistogramVec
	compliance  *prometheus.GaugeVec
	violations  *prometheus.CounterVec
	allowance   *prometheus.CounterVec
}

// NewPromSink registers scheduling metrics on the default Prometheus registerer.
// The HTTP endpoint should be started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// that are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schedule_optimizations_total",
			Help: "Total number of schedule optimization runs",
		}),
		meetings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_meetings_total",
			Help: "Meetings processed by optimization runs",
		}, []string{"status"}),
		successRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "schedule_success_rate_percent",
			Help: "Share of meetings placed by the last run of a user",
		}, []string{"user_id"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "schedule_optimization_duration_seconds",
			Help:    "Wall time of optimization runs",
			Buckets: prometheus.DefBuckets,
		}),
		slotScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schedule_slot_score",
			Help:    "Score of the slot chosen for each placed meeting",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}, []string{"meeting_type"}),
		compliance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "policy_compliance_score",
			Help: "Compliance score of the last policy evaluation of a user",
		}, []string{"user_id"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policy_violations_total",
			Help: "Policy violations found by evaluations",
		}, []string{"type"}),
		allowance: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policy_allowance_decisions_total",
			Help: "Allowance checks by meeting type and outcome",
		}, []string{"meeting_type", "allowed"}),
	}
	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.meetings, err = register(reg, s.meetings); err != nil {
		return nil, err
	}
	if s.successRate, err = register(reg, s.successRate); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.slotScore, err = register(reg, s.slotScore); err != nil {
		return nil, err
	}
	if s.compliance, err = register(reg, s.compliance); err != nil {
		return nil, err
	}
	if s.violations, err = register(reg, s.violations); err != nil {
		return nil, err
	}
	if s.allowance, err = register(reg, s.allowance); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordOptimization updates run counters and the user's success rate.
func (s *PromSink) RecordOptimization(ev coremetrics.OptimizationEvent) error {
	s.runs.Inc()
	s.meetings.WithLabelValues("scheduled").Add(float64(ev.Scheduled))
	s.meetings.WithLabelValues("unscheduled").Add(float64(ev.Unscheduled))
	s.successRate.WithLabelValues(ev.UserID).Set(ev.SuccessRate)
	s.duration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordPlacements observes the chosen slot scores.
func (s *PromSink) RecordPlacements(evs []coremetrics.PlacementEvent) error {
	for _, p := range evs {
		s.slotScore.WithLabelValues(p.MeetingType).Observe(p.Score)
	}
	return nil
}

// RecordPolicyEvaluation sets the compliance gauge and counts violations.
func (s *PromSink) RecordPolicyEvaluation(ev coremetrics.PolicyEvent) error {
	s.compliance.WithLabelValues(ev.UserID).Set(ev.ComplianceScore)
	for kind, n := range ev.Violations {
		s.violations.WithLabelValues(kind).Add(float64(n))
	}
	return nil
}

// RecordAllowance counts allowance decisions.
func (s *PromSink) RecordAllowance(ev coremetrics.AllowanceEvent) error {
	s.allowance.WithLabelValues(ev.MeetingType, strconv.FormatBool(ev.Allowed)).Inc()
	return nil
}
