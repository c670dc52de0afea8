package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetingValidate(t *testing.T) {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)
	base := Meeting{ID: "m1", DurationMinutes: 30, Type: MeetingCollaborative, Priority: 5, Flexibility: FlexibilityMedium}
	cases := []struct {
		name   string
		mutate func(*Meeting)
		ok     bool
	}{
		{"valid", func(*Meeting) {}, true},
		{"missing id", func(m *Meeting) { m.ID = "" }, false},
		{"zero duration", func(m *Meeting) { m.DurationMinutes = 0 }, false},
		{"negative duration", func(m *Meeting) { m.DurationMinutes = -15 }, false},
		{"priority too low", func(m *Meeting) { m.Priority = 0 }, false},
		{"priority too high", func(m *Meeting) { m.Priority = 11 }, false},
		{"unknown type", func(m *Meeting) { m.Type = MeetingType(42) }, false},
		{"unknown flexibility", func(m *Meeting) { m.Flexibility = Flexibility(9) }, false},
		{"inverted bounds", func(m *Meeting) { m.EarliestStart = &start; m.LatestEnd = &before }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := base
			c.mutate(&m)
			err := m.Validate()
			if c.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidInput), "expected ErrInvalidInput, got %v", err)
		})
	}
}

func TestParseMeetingType(t *testing.T) {
	for _, name := range []string{"deep_work", "collaborative", "routine", "administrative", "urgent", "executive"} {
		mt, err := ParseMeetingType(name)
		require.NoError(t, err)
		assert.Equal(t, name, mt.String())
	}
	_, err := ParseMeetingType("brainstorm")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRequiredEnergy(t *testing.T) {
	want := map[MeetingType]float64{
		MeetingDeepWork:       80,
		MeetingCollaborative:  60,
		MeetingRoutine:        40,
		MeetingAdministrative: 30,
		MeetingUrgent:         50,
	}
	for mt, w := range want {
		if got := mt.RequiredEnergy(); got != w {
			t.Errorf("%s: expected %v got %v", mt, w, got)
		}
	}
}

func TestMeetingJSONRoundTripUsesWireNames(t *testing.T) {
	raw := `{"id":"m2","title":"Deep Work","duration_minutes":90,"meeting_type":"deep_work","priority":9,"flexibility":"low"}`
	var m Meeting
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	assert.Equal(t, MeetingDeepWork, m.Type)
	assert.Equal(t, FlexibilityLow, m.Flexibility)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"meeting_type":"deep_work"`)
	assert.Contains(t, string(out), `"flexibility":"low"`)

	bad := `{"id":"x","meeting_type":"party"}`
	assert.Error(t, json.Unmarshal([]byte(bad), &m))
}

func TestISOWeekday(t *testing.T) {
	monday := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if got := ISOWeekday(monday.AddDate(0, 0, i)); got != i {
			t.Fatalf("day %d: got %d", i, got)
		}
	}
}

func TestDayName(t *testing.T) {
	name, err := DayName(2)
	require.NoError(t, err)
	assert.Equal(t, "Wednesday", name)
	_, err = DayName(7)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = DayName(-1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPolicyConfigDefaults(t *testing.T) {
	cfg := DefaultPolicyConfig()
	cfg.SetDefaults()
	assert.Equal(t, DefaultPolicyConfig(), cfg)
	require.NoError(t, cfg.Validate())

	// Zero thresholds are a valid request and survive defaulting.
	var zero PolicyConfig
	zero.SetDefaults()
	assert.Equal(t, 0, zero.MinNoMeetingDaysPerWeek)
	assert.Equal(t, 0, zero.MinFocusBlocksPerDay)
	assert.Equal(t, 90, zero.FocusBlockDurationMinutes)
	assert.Equal(t, []string{"urgent", "executive"}, zero.AllowedExceptionTypes)
	require.NoError(t, zero.Validate())

	cfg.AllowedExceptionTypes = []string{"coffee"}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)
}

func TestPolicyConfigExceptionAllowed(t *testing.T) {
	cfg := DefaultPolicyConfig()
	if cfg.ExceptionAllowed(MeetingUrgent) {
		t.Fatalf("exceptions must be disabled unless enforced")
	}
	cfg.EnforceExceptions = true
	if !cfg.ExceptionAllowed(MeetingExecutive) {
		t.Fatalf("executive should be allowed")
	}
	if cfg.ExceptionAllowed(MeetingRoutine) {
		t.Fatalf("routine should not be allowed")
	}
}

func TestTimeSlotOverlaps(t *testing.T) {
	s := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	a := TimeSlot{Start: s, End: s.Add(time.Hour)}
	b := TimeSlot{Start: s.Add(time.Hour), End: s.Add(2 * time.Hour)}
	c := TimeSlot{Start: s.Add(30 * time.Minute), End: s.Add(90 * time.Minute)}
	assert.False(t, a.Overlaps(b), "touching intervals must not overlap")
	assert.True(t, a.Overlaps(c))
	assert.True(t, a.Contains(s))
	assert.False(t, a.Contains(s.Add(time.Hour)))
	assert.ErrorIs(t, TimeSlot{Start: s, End: s}.Validate(), ErrInvalidInput)
}
