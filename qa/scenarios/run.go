package scenarios

import (
	"context"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/focusplan/app"
	"github.com/kilianp07/focusplan/config"
	"github.com/kilianp07/focusplan/core/energy"
	"github.com/kilianp07/focusplan/core/journal"
	"github.com/kilianp07/focusplan/core/logger"
	"github.com/kilianp07/focusplan/core/policy"
	"github.com/kilianp07/focusplan/infra/metrics"
)

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	profiles := energy.NewStaticSource(nil)
	if sc.Profile != nil {
		p := *sc.Profile
		p.UserID = sc.UserID
		profiles.Set(p)
	}
	svc, err := app.NewWithDeps(config.Default(), app.Deps{
		Profiles: profiles,
		Sink:     sink,
		Journal:  journal.NopStore{},
		Log:      logger.NopLogger{},
	})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer func() { _ = svc.Close() }()

	ctx := context.Background()
	for _, wd := range sc.NoMeetingDays {
		if _, err := svc.ConfigureNoMeetingDay(ctx, sc.UserID, wd, true); err != nil {
			t.Fatalf("no-meeting day %d: %v", wd, err)
		}
	}
	res, err := svc.OptimizeSchedule(ctx, sc.Meetings, sc.UserID, sc.Start, sc.End)
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}

	exp := sc.Expected
	if len(res.Scheduled) != exp.Scheduled {
		t.Errorf("scenario %s expected %d scheduled, got %d", sc.Name, exp.Scheduled, len(res.Scheduled))
	}
	var unscheduled []string
	for _, m := range res.Unscheduled {
		unscheduled = append(unscheduled, m.ID)
	}
	if !slices.Equal(unscheduled, exp.Unscheduled) {
		t.Errorf("scenario %s expected unscheduled %v, got %v", sc.Name, exp.Unscheduled, unscheduled)
	}
	if res.Metrics.SuccessRate < exp.MinSuccessRate {
		t.Errorf("scenario %s success rate %.2f below %.2f", sc.Name, res.Metrics.SuccessRate, exp.MinSuccessRate)
	}
	for id, want := range exp.Starts {
		a, ok := res.Scheduled[id]
		if !ok {
			t.Errorf("scenario %s: meeting %s not scheduled", sc.Name, id)
			continue
		}
		if !a.Slot.Start.Equal(want) {
			t.Errorf("scenario %s: meeting %s at %s, want %s", sc.Name, id, a.Slot.Start, want)
		}
	}
	if len(exp.Violations) > 0 {
		report := svc.EnforcePolicy(ctx, sc.UserID, res, nil)
		for _, v := range exp.Violations {
			if !slices.ContainsFunc(report.Violations, func(got policy.Violation) bool { return got.Type == v }) {
				t.Errorf("scenario %s: violation %s not reported", sc.Name, v)
			}
		}
	}

	if got := counter(t, reg, "schedule_meetings_total", "scheduled"); int(got) != exp.Scheduled {
		t.Errorf("scenario %s: schedule_meetings_total{status=scheduled} = %v, want %d", sc.Name, got, exp.Scheduled)
	}
}

// counter sums the samples of a counter family whose status label matches.
func counter(t *testing.T, g prometheus.Gatherer, name, status string) float64 {
	t.Helper()
	mfs, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sum float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() == status {
					sum += m.GetCounter().GetValue()
				}
			}
		}
	}
	return sum
}
