package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/focusplan/core/metrics"
	"github.com/kilianp07/focusplan/infra/logger"
)

// InfluxSink writes scheduling events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client resources.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(points ...*write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordOptimization writes one schedule_optimization point.
func (s *InfluxSink) RecordOptimization(ev coremetrics.OptimizationEvent) error {
	p := write.NewPointWithMeasurement("schedule_optimization").
		AddTag("user_id", ev.UserID).
		AddTag("run_id", ev.RunID).
		AddTag("component", "scheduler").
		AddField("meetings", ev.Meetings).
		AddField("scheduled", ev.Scheduled).
		AddField("unscheduled", ev.Unscheduled).
		AddField("high_priority_scheduled", ev.HighPriorityScheduled).
		AddField("success_rate", round3(ev.SuccessRate)).
		AddField("average_score", round3(ev.AverageScore)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordPlacements writes a meeting_placement point per placed meeting.
func (s *InfluxSink) RecordPlacements(evs []coremetrics.PlacementEvent) error {
	if len(evs) == 0 {
		return nil
	}
	points := make([]*write.Point, 0, len(evs))
	for _, e := range evs {
		points = append(points, write.NewPointWithMeasurement("meeting_placement").
			AddTag("user_id", e.UserID).
			AddTag("run_id", e.RunID).
			AddTag("meeting_id", e.MeetingID).
			AddTag("meeting_type", e.MeetingType).
			AddField("minutes", e.Minutes).
			AddField("score", round3(e.Score)).
			AddField("hour", e.Start.Hour()).
			SetTime(e.Start))
	}
	return s.write(points...)
}

// RecordPolicyEvaluation writes the compliance score and violation counts.
func (s *InfluxSink) RecordPolicyEvaluation(ev coremetrics.PolicyEvent) error {
	p := write.NewPointWithMeasurement("policy_evaluation").
		AddTag("user_id", ev.UserID).
		AddTag("component", "policy").
		AddField("compliance_score", round3(ev.ComplianceScore))
	total := 0
	for kind, n := range ev.Violations {
		p = p.AddField(kind, n)
		total += n
	}
	p = p.AddField("violations", total).SetTime(ev.Time)
	return s.write(p)
}

// RecordAllowance writes an allowance_decision point.
func (s *InfluxSink) RecordAllowance(ev coremetrics.AllowanceEvent) error {
	p := write.NewPointWithMeasurement("allowance_decision").
		AddTag("user_id", ev.UserID).
		AddTag("meeting_type", ev.MeetingType).
		AddTag("allowed", strconv.FormatBool(ev.Allowed)).
		AddField("count", 1).
		SetTime(ev.Time)
	return s.write(p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
