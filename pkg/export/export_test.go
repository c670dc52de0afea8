package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/focusplan/core/model"
	"github.com/kilianp07/focusplan/core/scheduler"
)

func sampleResult() scheduler.Result {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	m1 := model.Meeting{ID: "m1", Title: "Planning", DurationMinutes: 60, Type: model.MeetingCollaborative, Priority: 7}
	m2 := model.Meeting{ID: "m2", Title: "Review", DurationMinutes: 30, Type: model.MeetingRoutine, Priority: 3}
	m3 := model.Meeting{ID: "m3", Title: "Sync", DurationMinutes: 30, Type: model.MeetingRoutine, Priority: 2}
	return scheduler.Result{
		UserID: "alice",
		Scheduled: map[string]scheduler.Assignment{
			"m1": {Meeting: m1, Slot: model.TimeSlot{Start: start.Add(time.Hour), End: start.Add(2 * time.Hour)}, Score: 80.5},
			"m2": {Meeting: m2, Slot: model.TimeSlot{Start: start, End: start.Add(30 * time.Minute)}, Score: 70},
		},
		Unscheduled: []model.Meeting{m3},
	}
}

func TestRowsOrder(t *testing.T) {
	rows := Rows(sampleResult())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"m2", "m1", "m3"}, []string{rows[0].MeetingID, rows[1].MeetingID, rows[2].MeetingID})
	assert.False(t, rows[2].Scheduled)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "meeting_id", recs[0][0])
	assert.Equal(t, "2026-03-02T10:00:00Z", recs[2][4])
	assert.Equal(t, "80.50", recs[2][6])
	assert.Equal(t, "", recs[3][4])
}

func TestWriteJSONDecodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))
	var res scheduler.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	assert.Equal(t, 80.5, res.Scheduled["m1"].Score)
	assert.Equal(t, model.MeetingRoutine, res.Unscheduled[0].Type)
}

func TestWriteSlotsCSV(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, WriteSlotsCSV(&buf, []model.TimeSlot{{Start: start, End: start.Add(time.Hour), Score: 91}}))
	assert.Contains(t, buf.String(), "2026-03-02T09:00:00Z,2026-03-02T10:00:00Z,91.00")
}
