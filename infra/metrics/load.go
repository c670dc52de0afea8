package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	core "github.com/kilianp07/focusplan/core/metrics"
	"github.com/kilianp07/focusplan/core/metrics/load"
)

// DefaultWorkMinutes is a ten hour working day.
const DefaultWorkMinutes = 600.0

// LoadSink aggregates placements into daily meeting load KPIs.
type LoadSink struct {
	store       load.Store
	workMinutes float64
	minutes     *prometheus.GaugeVec
	ratio       *prometheus.GaugeVec
	free        *prometheus.GaugeVec
}

// NewLoadSink creates a sink with Prometheus gauges registered on reg.
func NewLoadSink(store load.Store, workMinutes float64, reg prometheus.Registerer) (*LoadSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if workMinutes <= 0 {
		workMinutes = DefaultWorkMinutes
	}
	s := &LoadSink{
		store:       store,
		workMinutes: workMinutes,
		minutes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "user_meeting_minutes",
			Help: "Planned meeting minutes per user and day",
		}, []string{"user_id", "day"}),
		ratio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "user_meeting_load_ratio",
			Help: "Share of the working day taken by meetings",
		}, []string{"user_id", "day"}),
		free: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "user_focus_minutes_available",
			Help: "Working minutes left free for focus work",
		}, []string{"user_id", "day"}),
	}
	var err error
	if s.minutes, err = register(reg, s.minutes); err != nil {
		return nil, err
	}
	if s.ratio, err = register(reg, s.ratio); err != nil {
		return nil, err
	}
	if s.free, err = register(reg, s.free); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordOptimization is a no-op; load is derived from placements.
func (s *LoadSink) RecordOptimization(core.OptimizationEvent) error { return nil }

// RecordWindow replaces the stored load of the run's window with the
// run's placements and refreshes the gauges of every day in the window.
// Re-optimizing a window therefore reports the latest plan, not the sum of
// all plans.
func (s *LoadSink) RecordWindow(ev core.WindowEvent) error {
	recs := make([]load.Record, 0, len(ev.Placements))
	for _, p := range ev.Placements {
		recs = append(recs, load.Record{UserID: ev.UserID, Date: p.Start, Meetings: 1, MeetingMinutes: float64(p.Minutes)})
	}
	if err := s.store.Replace(ev.UserID, ev.Start, ev.End, recs); err != nil {
		return err
	}
	records, err := s.store.Query(ev.UserID, ev.Start, ev.End)
	if err != nil {
		return err
	}
	byDay := make(map[time.Time]load.Record, len(records))
	for _, r := range records {
		byDay[load.Day(r.Date)] = r
	}
	for _, d := range load.Days(ev.Start, ev.End) {
		rr := byDay[d]
		day := d.Format("2006-01-02")
		s.minutes.WithLabelValues(ev.UserID, day).Set(rr.MeetingMinutes)
		s.ratio.WithLabelValues(ev.UserID, day).Set(rr.Ratio(s.workMinutes))
		s.free.WithLabelValues(ev.UserID, day).Set(rr.FreeMinutes(s.workMinutes))
	}
	return nil
}
