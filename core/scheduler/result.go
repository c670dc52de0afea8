package scheduler

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/focusplan/core/model"
)

// Assignment is a meeting placed in a slot.
type Assignment struct {
	Meeting model.Meeting  `json:"meeting"`
	Slot    model.TimeSlot `json:"slot"`
	Score   float64        `json:"score"`
}

// Metrics summarise an assignment run.
type Metrics struct {
	TotalMeetings         int     `json:"total_meetings"`
	ScheduledCount        int     `json:"scheduled_count"`
	UnscheduledCount      int     `json:"unscheduled_count"`
	SuccessRate           float64 `json:"success_rate"`
	AverageScore          float64 `json:"average_optimization_score"`
	HighPriorityScheduled int     `json:"high_priority_scheduled"`
}

// Result is the outcome of an assignment run.
type Result struct {
	UserID          string                `json:"user_id"`
	Start           time.Time             `json:"start"`
	End             time.Time             `json:"end"`
	Scheduled       map[string]Assignment `json:"scheduled_meetings"`
	Unscheduled     []model.Meeting       `json:"unscheduled_meetings"`
	Metrics         Metrics               `json:"metrics"`
	Recommendations []string              `json:"recommendations"`
}

// Assignments returns the scheduled meetings ordered by start time.
func (r Result) Assignments() []Assignment {
	out := make([]Assignment, 0, len(r.Scheduled))
	for _, a := range r.Scheduled {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Slot.Start.Equal(out[j].Slot.Start) {
			return out[i].Slot.Start.Before(out[j].Slot.Start)
		}
		return out[i].Meeting.ID < out[j].Meeting.ID
	})
	return out
}

// ComputeMetrics derives run metrics. An empty run yields zero values.
func ComputeMetrics(scheduled map[string]Assignment, unscheduled []model.Meeting) Metrics {
	m := Metrics{
		ScheduledCount:   len(scheduled),
		UnscheduledCount: len(unscheduled),
	}
	m.TotalMeetings = m.ScheduledCount + m.UnscheduledCount
	if m.TotalMeetings == 0 {
		return m
	}
	m.SuccessRate = float64(m.ScheduledCount) / float64(m.TotalMeetings) * 100
	if len(scheduled) > 0 {
		scores := make([]float64, 0, len(scheduled))
		for _, a := range scheduled {
			scores = append(scores, a.Score)
			if a.Meeting.HighPriority() {
				m.HighPriorityScheduled++
			}
		}
		m.AverageScore = stat.Mean(scores, nil)
	}
	return m
}

// Recommend turns run metrics into advice for the user.
func Recommend(m Metrics) []string {
	recs := []string{}
	if m.TotalMeetings == 0 {
		return recs
	}
	if m.SuccessRate < 80 {
		recs = append(recs, "Consider extending the scheduling window or reducing meeting count")
	}
	if m.AverageScore < 70 {
		recs = append(recs, "Some meetings may be scheduled at suboptimal times. Review and adjust.")
	}
	return recs
}
