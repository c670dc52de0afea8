package loadkpi

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/focusplan/core/events"
	"github.com/kilianp07/focusplan/core/journal"
	"github.com/kilianp07/focusplan/core/metrics/load"
)

func TestBackfill(t *testing.T) {
	ctx := context.Background()
	runs, err := journal.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	require.NoError(t, err)
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, runs.Append(ctx, journal.RunRecord{
		RunID:     "r1",
		UserID:    "alice",
		Timestamp: day,
		Placements: []events.Placement{
			{MeetingID: "m1", Start: day, End: day.Add(time.Hour)},
			{MeetingID: "m2", Start: day.Add(2 * time.Hour), End: day.Add(150 * time.Minute)},
		},
	}))
	require.NoError(t, runs.Append(ctx, journal.RunRecord{RunID: "r2", UserID: "bob", Timestamp: day}))

	store := load.NewMemoryStore()
	n, err := Backfill(ctx, store, runs, journal.Query{UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	recs, err := store.Query("alice", day, day)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 2, recs[0].Meetings)
	assert.Equal(t, 90.0, recs[0].MeetingMinutes)
}

func TestBackfillIsIdempotent(t *testing.T) {
	ctx := context.Background()
	runs, err := journal.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	require.NoError(t, err)
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	week := func(id string, at time.Time, placements ...events.Placement) journal.RunRecord {
		return journal.RunRecord{
			RunID:       id,
			UserID:      "alice",
			Timestamp:   at,
			WindowStart: monday,
			WindowEnd:   monday.AddDate(0, 0, 5),
			Placements:  placements,
		}
	}
	nine := monday.Add(9 * time.Hour)
	// The newer run is appended first; replay follows the timestamps.
	require.NoError(t, runs.Append(ctx, week("r2", monday.Add(time.Hour),
		events.Placement{MeetingID: "m1", Start: nine, End: nine.Add(30 * time.Minute)})))
	require.NoError(t, runs.Append(ctx, week("r1", monday,
		events.Placement{MeetingID: "m1", Start: nine, End: nine.Add(time.Hour)},
		events.Placement{MeetingID: "m2", Start: nine.AddDate(0, 0, 1), End: nine.AddDate(0, 0, 1).Add(time.Hour)})))

	store := load.NewMemoryStore()
	for i := 0; i < 2; i++ {
		_, err := Backfill(ctx, store, runs, journal.Query{UserID: "alice"})
		require.NoError(t, err)
	}

	recs, err := store.Query("alice", monday, monday.AddDate(0, 0, 4))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, monday, recs[0].Date)
	assert.Equal(t, 1, recs[0].Meetings)
	assert.Equal(t, 30.0, recs[0].MeetingMinutes)
}
