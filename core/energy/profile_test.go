package energy

import (
	"math"
	"testing"
	"time"

	"github.com/kilianp07/focusplan/core/model"
)

// 2025-03-03 is a Monday.
var monday9 = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

func TestPredictEnergyDefaults(t *testing.T) {
	p := DefaultProfile()
	if got := PredictEnergy(p, monday9); got != 50 {
		t.Fatalf("expected flat 50 got %v", got)
	}
	if got := PredictEnergy(Profile{}, monday9); got != 50 {
		t.Fatalf("nil maps should fall back to 50, got %v", got)
	}
}

func TestPredictEnergyUsesHourAndDay(t *testing.T) {
	p := Profile{
		HourlyMean:      map[int]float64{9: 80},
		DayOfWeekFactor: map[int]float64{0: 1.1, 2: 0.5},
	}
	if got := PredictEnergy(p, monday9); math.Abs(got-88) > 1e-9 {
		t.Fatalf("expected 88 got %v", got)
	}
	wed := monday9.AddDate(0, 0, 2)
	if got := PredictEnergy(p, wed); got != 40 {
		t.Fatalf("expected 40 got %v", got)
	}
}

func TestPredictEnergyClamps(t *testing.T) {
	cases := []Profile{
		{HourlyMean: map[int]float64{9: 500}},
		{HourlyMean: map[int]float64{9: -20}},
		{HourlyMean: map[int]float64{9: 90}, DayOfWeekFactor: map[int]float64{0: 3}},
		{HourlyMean: map[int]float64{9: math.NaN()}},
		{HourlyMean: map[int]float64{9: math.Inf(1)}},
		{HourlyMean: map[int]float64{9: 60}, DayOfWeekFactor: map[int]float64{0: math.Inf(-1)}},
	}
	for i, p := range cases {
		got := PredictEnergy(p, monday9)
		if got < 0 || got > 100 || math.IsNaN(got) {
			t.Errorf("case %d: %v outside [0,100]", i, got)
		}
		if again := PredictEnergy(p, monday9); again != got {
			t.Errorf("case %d: not deterministic", i)
		}
	}
}

func TestSuitabilityCurve(t *testing.T) {
	cases := []struct {
		predicted, required, want float64
	}{
		{80, 80, 100},
		{100, 80, 90},
		{40, 80, 35},
		{0, 80, 0},
		{60, 30, 85},
	}
	for _, c := range cases {
		if got := SuitabilityFor(c.predicted, c.required); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("SuitabilityFor(%v,%v)=%v want %v", c.predicted, c.required, got, c.want)
		}
	}
}

func TestSuitabilityMonotonic(t *testing.T) {
	for _, mt := range []model.MeetingType{model.MeetingDeepWork, model.MeetingCollaborative, model.MeetingRoutine, model.MeetingAdministrative} {
		req := mt.RequiredEnergy()
		prev := math.Inf(1)
		// walking from the threshold downward widens the deficit gap
		for e := req; e >= 0; e-- {
			got := SuitabilityFor(e, req)
			if got > prev {
				t.Fatalf("%s: suitability increased as deficit grew at %v", mt, e)
			}
			prev = got
		}
		prev = math.Inf(1)
		for e := req; e <= 100; e++ {
			got := SuitabilityFor(e, req)
			if got > prev {
				t.Fatalf("%s: suitability increased as surplus grew at %v", mt, e)
			}
			prev = got
		}
	}
}

func TestSuitabilityProfile(t *testing.T) {
	p := Profile{HourlyMean: map[int]float64{9: 85, 14: 45}}
	morning := Suitability(p, monday9, model.MeetingDeepWork)
	afternoon := Suitability(p, monday9.Add(5*time.Hour), model.MeetingDeepWork)
	if morning <= afternoon {
		t.Fatalf("deep work should prefer the high-energy morning: %v <= %v", morning, afternoon)
	}
	if got := Suitability(p, monday9, model.MeetingDeepWork); got != morning {
		t.Fatalf("suitability not pure")
	}
}
