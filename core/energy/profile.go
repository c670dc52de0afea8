package energy

import (
	"math"
	"time"

	"github.com/kilianp07/focusplan/core/model"
)

const (
	// DefaultHourlyEnergy is used for hours without observations.
	DefaultHourlyEnergy = 50.0
	// DefaultDayFactor is used for weekdays without observations.
	DefaultDayFactor = 1.0
)

// Profile is a per-user energy curve. HourlyMean is keyed by hour (0-23) and
// DayOfWeekFactor by weekday (0=Monday ... 6=Sunday) as a ratio to the
// overall mean.
type Profile struct {
	UserID          string          `json:"user_id" yaml:"user_id"`
	HourlyMean      map[int]float64 `json:"hourly_mean" yaml:"hourly_mean"`
	DayOfWeekFactor map[int]float64 `json:"day_of_week_factor" yaml:"day_of_week_factor"`
	PeakHours       []int           `json:"peak_hours" yaml:"peak_hours"`
	LowHours        []int           `json:"low_hours" yaml:"low_hours"`
	Recommendations []string        `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

// DefaultProfile is substituted when no analysed profile exists for a user.
func DefaultProfile() Profile {
	dow := make(map[int]float64, 7)
	for i := 0; i < 7; i++ {
		dow[i] = DefaultDayFactor
	}
	return Profile{
		HourlyMean:      map[int]float64{},
		DayOfWeekFactor: dow,
		PeakHours:       []int{9, 10, 11},
		LowHours:        []int{13, 14, 22},
		Recommendations: []string{"Collect more data for personalized insights"},
	}
}

// PredictEnergy returns the expected energy level in [0,100] at t.
func PredictEnergy(p Profile, t time.Time) float64 {
	base, ok := p.HourlyMean[t.Hour()]
	if !ok {
		base = DefaultHourlyEnergy
	}
	factor, ok := p.DayOfWeekFactor[model.ISOWeekday(t)]
	if !ok {
		factor = DefaultDayFactor
	}
	return clamp(base * factor)
}

// Suitability scores in [0,100] how well t suits a meeting of type mt.
// Energy above the requirement is mildly penalised; energy below it is
// penalised steeply so demanding work avoids low-energy windows.
func Suitability(p Profile, t time.Time, mt model.MeetingType) float64 {
	return SuitabilityFor(PredictEnergy(p, t), mt.RequiredEnergy())
}

// SuitabilityFor applies the suitability curve to a predicted level and threshold.
func SuitabilityFor(predicted, required float64) float64 {
	if required <= 0 {
		return clamp(100 - predicted/2)
	}
	if predicted >= required {
		return clamp(100 - (predicted-required)/2)
	}
	return clamp(predicted / required * 70)
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
