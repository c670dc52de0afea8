package energy

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/focusplan/core/logger"
	"github.com/kilianp07/focusplan/core/model"
)

// Sample is one self-reported or inferred energy observation.
type Sample struct {
	Time  time.Time `json:"time" yaml:"time"`
	Level float64   `json:"level" yaml:"level"`
}

// HourStats summarises the samples observed for one hour of the day.
type HourStats struct {
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Count int     `json:"count"`
}

// Analysis is the outcome of a historical analysis run.
type Analysis struct {
	Profile Profile           `json:"profile"`
	Hourly  map[int]HourStats `json:"hourly"`
}

// Analyzer derives energy profiles from historical samples.
type Analyzer struct {
	// TopN is the number of peak and low hours reported.
	TopN int
	Log  logger.Logger
}

// NewAnalyzer returns an Analyzer reporting three peak and low hours.
func NewAnalyzer(log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Analyzer{TopN: 3, Log: log}
}

// Analyze builds a profile for userID. With no samples the default profile is
// returned so callers never have to special-case new users.
func (a *Analyzer) Analyze(userID string, samples []Sample) Analysis {
	if len(samples) == 0 {
		p := DefaultProfile()
		p.UserID = userID
		return Analysis{Profile: p, Hourly: map[int]HourStats{}}
	}
	a.Log.Infof("analyzing %d energy samples for user %s", len(samples), userID)

	byHour := make(map[int][]float64)
	byDay := make(map[int][]float64)
	all := make([]float64, 0, len(samples))
	for _, s := range samples {
		lvl := clamp(s.Level)
		byHour[s.Time.Hour()] = append(byHour[s.Time.Hour()], lvl)
		wd := model.ISOWeekday(s.Time)
		byDay[wd] = append(byDay[wd], lvl)
		all = append(all, lvl)
	}

	hourly := make(map[int]HourStats, len(byHour))
	means := make(map[int]float64, len(byHour))
	for h, vals := range byHour {
		mean, std := stat.MeanStdDev(vals, nil)
		if len(vals) < 2 {
			std = 0
		}
		hourly[h] = HourStats{Mean: mean, Std: std, Count: len(vals)}
		means[h] = mean
	}

	overall := stat.Mean(all, nil)
	dow := make(map[int]float64, 7)
	for d := 0; d < 7; d++ {
		vals, ok := byDay[d]
		if !ok || overall == 0 {
			dow[d] = DefaultDayFactor
			continue
		}
		dow[d] = stat.Mean(vals, nil) / overall
	}

	peak := a.rankHours(means, true)
	low := a.rankHours(means, false)
	p := Profile{
		UserID:          userID,
		HourlyMean:      means,
		DayOfWeekFactor: dow,
		PeakHours:       peak,
		LowHours:        low,
		Recommendations: recommendations(peak, low),
	}
	a.Log.Debugw("energy profile built", map[string]any{"user_id": userID, "peak_hours": peak, "low_hours": low})
	return Analysis{Profile: p, Hourly: hourly}
}

func (a *Analyzer) rankHours(means map[int]float64, desc bool) []int {
	hours := make([]int, 0, len(means))
	for h := range means {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		mi, mj := means[hours[i]], means[hours[j]]
		if mi != mj {
			if desc {
				return mi > mj
			}
			return mi < mj
		}
		return hours[i] < hours[j]
	})
	n := a.TopN
	if n <= 0 {
		n = 3
	}
	if len(hours) > n {
		hours = hours[:n]
	}
	return hours
}

func recommendations(peak, low []int) []string {
	return []string{
		"Schedule deep work and important meetings during peak hours: " + formatHours(peak),
		"Avoid demanding tasks during low-energy periods: " + formatHours(low),
		"Consider scheduling routine tasks and administrative work during mid-energy periods",
	}
}

func formatHours(hours []int) string {
	sorted := append([]int(nil), hours...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, h := range sorted {
		parts[i] = fmt.Sprintf("%d:00", h)
	}
	return strings.Join(parts, ", ")
}
