package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/focusplan/config"
	"github.com/kilianp07/focusplan/core/energy"
	"github.com/kilianp07/focusplan/core/events"
	"github.com/kilianp07/focusplan/core/journal"
	"github.com/kilianp07/focusplan/core/logger"
	coremetrics "github.com/kilianp07/focusplan/core/metrics"
	"github.com/kilianp07/focusplan/core/model"
	"github.com/kilianp07/focusplan/core/policy"
	"github.com/kilianp07/focusplan/core/scoring"
	"github.com/kilianp07/focusplan/infra/mqtt"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

type recordSink struct {
	mu          sync.Mutex
	runs        []coremetrics.OptimizationEvent
	placements  []coremetrics.PlacementEvent
	evaluations []coremetrics.PolicyEvent
	allowances  []coremetrics.AllowanceEvent
	windows     []coremetrics.WindowEvent
}

func (r *recordSink) RecordOptimization(ev coremetrics.OptimizationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, ev)
	return nil
}

func (r *recordSink) RecordPlacements(evs []coremetrics.PlacementEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placements = append(r.placements, evs...)
	return nil
}

func (r *recordSink) RecordWindow(ev coremetrics.WindowEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windows = append(r.windows, ev)
	return nil
}

func (r *recordSink) RecordPolicyEvaluation(ev coremetrics.PolicyEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluations = append(r.evaluations, ev)
	return nil
}

func (r *recordSink) RecordAllowance(ev coremetrics.AllowanceEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allowances = append(r.allowances, ev)
	return nil
}

func (r *recordSink) counts() (runs, placements, evaluations, allowances int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs), len(r.placements), len(r.evaluations), len(r.allowances)
}

type fixture struct {
	svc     *Service
	sink    *recordSink
	journal journal.Store
	pub     *mqtt.MockPublisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store, err := journal.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	require.NoError(t, err)
	f := fixture{sink: &recordSink{}, journal: store, pub: mqtt.NewMockPublisher()}
	cfg := config.Default()
	f.svc, err = NewWithDeps(cfg, Deps{
		Sink:      f.sink,
		Journal:   store,
		Publisher: f.pub,
		Log:       logger.NopLogger{},
		Now:       func() time.Time { return monday.Add(7 * time.Hour) },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.svc.Close() })
	return f
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, 5*time.Millisecond)
}

func meeting(id string, minutes, priority int) model.Meeting {
	return model.Meeting{
		ID:              id,
		Title:           id,
		DurationMinutes: minutes,
		Type:            model.MeetingCollaborative,
		Priority:        priority,
		Flexibility:     model.FlexibilityMedium,
	}
}

func TestOptimizeScheduleRecordsRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.OptimizeSchedule(ctx, []model.Meeting{meeting("m1", 60, 5), meeting("m2", 30, 8)},
		"alice", monday.Add(8*time.Hour), monday.Add(18*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Metrics.ScheduledCount)
	assert.Equal(t, 100.0, res.Metrics.SuccessRate)

	runs, placements, _, _ := f.sink.counts()
	assert.Equal(t, 1, runs)
	assert.Equal(t, 2, placements)

	recs, err := f.journal.Query(ctx, journal.Query{UserID: "alice", MeetingID: "m2"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Len(t, recs[0].Placements, 2)

	eventually(t, func() bool { return len(f.pub.Published()) == 1 })
	ev, ok := f.pub.Published()[0].(events.ScheduleOptimized)
	require.True(t, ok)
	assert.Equal(t, recs[0].RunID, ev.RunID)
}

func TestOptimizeScheduleInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.OptimizeSchedule(ctx, []model.Meeting{meeting("m1", 0, 5)},
		"alice", monday.Add(8*time.Hour), monday.Add(18*time.Hour))
	assert.True(t, errors.Is(err, model.ErrInvalidInput))

	recs, err := f.journal.Query(ctx, journal.Query{})
	require.NoError(t, err)
	assert.Empty(t, recs)
	runs, _, _, _ := f.sink.counts()
	assert.Zero(t, runs)
}

func TestSuggestMeetingTime(t *testing.T) {
	f := newFixture(t)
	slots, err := f.svc.SuggestMeetingTime(context.Background(), meeting("m1", 60, 5), "alice",
		[]string{"bob"}, monday.Add(8*time.Hour), monday.Add(18*time.Hour))
	require.NoError(t, err)
	require.Len(t, slots, 5)
	for i := 1; i < len(slots); i++ {
		assert.GreaterOrEqual(t, slots[i-1].Score, slots[i].Score)
	}
}

func TestRescheduleMeetingUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.OptimizeSchedule(ctx, []model.Meeting{meeting("m1", 60, 5)},
		"alice", monday.Add(8*time.Hour), monday.Add(18*time.Hour))
	require.NoError(t, err)
	_, err = f.svc.RescheduleMeeting(ctx, "missing", res, "alice")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestEnforcePolicyOnNoMeetingDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.ConfigureNoMeetingDay(ctx, "alice", 2, true)
	require.NoError(t, err)

	wedStart := monday.AddDate(0, 0, 2).Add(8 * time.Hour)
	wedEnd := wedStart.Add(10 * time.Hour)
	m := meeting("m1", 60, 5)
	m.EarliestStart, m.LatestEnd = &wedStart, &wedEnd
	res, err := f.svc.OptimizeSchedule(ctx, []model.Meeting{m}, "alice", monday, monday.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Equal(t, 1, res.Metrics.ScheduledCount)

	report := f.svc.EnforcePolicy(ctx, "alice", res, nil)
	var types []string
	for _, v := range report.Violations {
		types = append(types, v.Type)
	}
	assert.Contains(t, types, policy.NoMeetingDayViolation)
	assert.NotContains(t, types, policy.InsufficientNoMeetingDays)
	assert.Less(t, report.ComplianceScore, 100.0)

	eventually(t, func() bool { _, _, n, _ := f.sink.counts(); return n == 1 })
}

func TestCheckAllowanceInFocusBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := monday.Add(9 * time.Hour)
	_, err := f.svc.BlockTimeSlot(ctx, "alice", start, start.Add(2*time.Hour), model.BlockFocusTime, "deep work")
	require.NoError(t, err)

	a, err := f.svc.CheckAllowance(ctx, "alice", start.Add(30*time.Minute), model.MeetingRoutine, "")
	require.NoError(t, err)
	assert.False(t, a.Allowed)
	assert.Len(t, a.AlternativeTimes, 3)

	a, err = f.svc.CheckAllowance(ctx, "alice", start.Add(3*time.Hour), model.MeetingRoutine, "")
	require.NoError(t, err)
	assert.True(t, a.Allowed)

	eventually(t, func() bool { _, _, _, n := f.sink.counts(); return n == 2 })
}

func TestAnalyzeEnergyReplacesProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before, err := f.svc.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, before.HourlyMean)

	var samples []energy.Sample
	for d := 0; d < 5; d++ {
		day := monday.AddDate(0, 0, d)
		samples = append(samples,
			energy.Sample{Time: day.Add(9 * time.Hour), Level: 90},
			energy.Sample{Time: day.Add(15 * time.Hour), Level: 30})
	}
	a := f.svc.AnalyzeEnergy(ctx, "alice", samples)
	assert.Equal(t, 90.0, a.Profile.HourlyMean[9])

	after, err := f.svc.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 90.0, after.HourlyMean[9])
}

func TestToPolicySchedule(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.OptimizeSchedule(context.Background(), []model.Meeting{meeting("m1", 60, 5), meeting("m2", 60, 4)},
		"alice", monday.Add(8*time.Hour), monday.Add(18*time.Hour))
	require.NoError(t, err)
	s := ToPolicySchedule(res)
	require.Len(t, s.Placements, 2)
	assert.True(t, s.Placements[0].Slot.Start.Before(s.Placements[1].Slot.Start))
	assert.Equal(t, res.Start, s.Start)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Journal.Backend = "none"
	cfg.Scheduler.Strategy = "unknown"
	_, err := New(cfg)
	assert.Error(t, err)

	cfg.Scheduler.Strategy = "greedy"
	svc, err := New(cfg)
	require.NoError(t, err)
	assert.NoError(t, svc.Close())
}

func TestServiceScoresWithFixedWeights(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, scoring.DefaultWeights(), f.svc.assigner.Weights())
}

func TestOptimizeScheduleReportsWholeWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start, end := monday.Add(8*time.Hour), monday.Add(18*time.Hour)
	for i := 0; i < 2; i++ {
		_, err := f.svc.OptimizeSchedule(ctx, []model.Meeting{meeting("m1", 60, 5)}, "alice", start, end)
		require.NoError(t, err)
	}
	// A meeting longer than the window stays unscheduled; the empty plan is still reported.
	_, err := f.svc.OptimizeSchedule(ctx, []model.Meeting{meeting("m2", 600, 5)}, "alice", start, start.Add(time.Hour))
	require.NoError(t, err)

	f.sink.mu.Lock()
	defer f.sink.mu.Unlock()
	require.Len(t, f.sink.windows, 3)
	first, second := f.sink.windows[0], f.sink.windows[1]
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, start, second.Start)
	assert.Equal(t, end, second.End)
	assert.Len(t, second.Placements, 1)
	assert.Equal(t, "alice", second.UserID)
	assert.Empty(t, f.sink.windows[2].Placements)
}
