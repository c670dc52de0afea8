package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/focusplan/core/metrics"
)

type capture struct {
	mu     sync.Mutex
	bodies []string
}

func (c *capture) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.bodies = append(c.bodies, strings.TrimSpace(string(data)))
		c.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInfluxSink_RecordOptimization(t *testing.T) {
	c := &capture{}
	srv := c.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	now := time.Now()
	ev := coremetrics.OptimizationEvent{
		RunID:                 "run1",
		UserID:                "u1",
		Meetings:              2,
		Scheduled:             2,
		HighPriorityScheduled: 1,
		SuccessRate:           100,
		AverageScore:          72.45678,
		Duration:              1500 * time.Microsecond,
		Time:                  now,
	}
	if err := sink.RecordOptimization(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("schedule_optimization").
		AddTag("user_id", "u1").
		AddTag("run_id", "run1").
		AddTag("component", "scheduler").
		AddField("meetings", 2).
		AddField("scheduled", 2).
		AddField("unscheduled", 0).
		AddField("high_priority_scheduled", 1).
		AddField("success_rate", 100.0).
		AddField("average_score", 72.457).
		AddField("duration_ms", 1.5).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(c.bodies) != 1 || c.bodies[0] != expected {
		t.Errorf("unexpected body: %v", c.bodies)
	}
}

func TestInfluxSink_PlacementsAndPolicy(t *testing.T) {
	c := &capture{}
	srv := c.server(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()

	start := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	err := sink.RecordPlacements([]coremetrics.PlacementEvent{
		{UserID: "u1", MeetingID: "m1", MeetingType: "deep_work", Start: start, Minutes: 90, Score: 88},
		{UserID: "u1", MeetingID: "m2", MeetingType: "routine", Start: start.Add(2 * time.Hour), Minutes: 30, Score: 71},
	})
	if err != nil {
		t.Fatalf("placements: %v", err)
	}
	if err := sink.RecordPlacements(nil); err != nil {
		t.Fatalf("empty placements: %v", err)
	}
	if err := sink.RecordPolicyEvaluation(coremetrics.PolicyEvent{
		UserID:          "u1",
		ComplianceScore: 80,
		Violations:      map[string]int{"insufficient_no_meeting_days": 1},
		Time:            start,
	}); err != nil {
		t.Fatalf("policy: %v", err)
	}
	if len(c.bodies) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(c.bodies))
	}
	if lines := strings.Split(c.bodies[0], "\n"); len(lines) != 2 || !strings.HasPrefix(lines[0], "meeting_placement,") {
		t.Errorf("unexpected placement body: %s", c.bodies[0])
	}
	if !strings.Contains(c.bodies[1], "insufficient_no_meeting_days=1i") || !strings.Contains(c.bodies[1], "compliance_score=80") {
		t.Errorf("unexpected policy body: %s", c.bodies[1])
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
