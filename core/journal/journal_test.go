package journal

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/focusplan/core/events"
)

func sampleRecord(user string, ts time.Time) RunRecord {
	return RunRecord{
		RunID:     "run-" + user,
		Timestamp: ts,
		UserID:    user,
		Meetings:  2,
		Placements: []events.Placement{
			{MeetingID: "m1", Start: ts, End: ts.Add(time.Hour), Score: 81.5},
		},
		Unscheduled: []string{"m2"},
		SuccessRate: 50,
	}
}

func TestRunRecordJSON(t *testing.T) {
	data, err := json.Marshal(sampleRecord("u1", time.Unix(0, 0)))
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, k := range []string{"run_id", "timestamp", "user_id", "placements", "unscheduled", "success_rate"} {
		assert.Contains(t, m, k)
	}
}

func TestQueryMatch(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rec := sampleRecord("u1", now)
	cases := []struct {
		name string
		q    Query
		want bool
	}{
		{"empty", Query{}, true},
		{"user", Query{UserID: "u1"}, true},
		{"other user", Query{UserID: "u2"}, false},
		{"placed meeting", Query{MeetingID: "m1"}, true},
		{"unscheduled meeting", Query{MeetingID: "m2"}, true},
		{"unknown meeting", Query{MeetingID: "m3"}, false},
		{"before window", Query{Start: now.Add(time.Minute)}, false},
		{"after window", Query{End: now.Add(-time.Minute)}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.q.Match(rec))
		})
	}
}

func TestJSONLStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	store, err := NewJSONLStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	now := time.Now()
	require.NoError(t, store.Append(context.Background(), sampleRecord("u1", now)))
	require.NoError(t, store.Append(context.Background(), sampleRecord("u2", now)))

	out, err := store.Query(context.Background(), Query{UserID: "u2"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "run-u2", out[0].RunID)
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	rec := sampleRecord("u1", time.Now())
	rec.Unscheduled = make([]string, 2000)
	for i := range rec.Unscheduled {
		rec.Unscheduled[i] = "meeting-padding-identifier"
	}
	for i := 0; i < 40; i++ {
		require.NoError(t, store.Append(context.Background(), rec))
	}
	files, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "runs*.jsonl"))
	assert.Greater(t, len(files), 1, "expected rotated files")

	out, err := store.Query(context.Background(), Query{UserID: "u1"})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRotatingJSONLStore_Query(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Append(context.Background(), sampleRecord("u1", time.Now())))
	out, err := store.Query(context.Background(), Query{MeetingID: "m1"})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:journal_test.db?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	now := time.Now()
	require.NoError(t, store.Append(context.Background(), sampleRecord("u1", now)))
	require.NoError(t, store.Append(context.Background(), sampleRecord("u2", now)))

	out, err := store.Query(context.Background(), Query{UserID: "u1", MeetingID: "m2"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 50.0, out[0].SuccessRate)

	out, err = store.Query(context.Background(), Query{MeetingID: "nope"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestOpenAndConfig(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, "jsonl", cfg.Backend)
	assert.NoError(t, cfg.Validate())
	assert.Error(t, Config{Backend: "csv", Path: "x"}.Validate())
	assert.Error(t, Config{Backend: "jsonl", Path: "x", MaxSizeMB: -1}.Validate())

	dir := t.TempDir()
	s, err := Open(Config{Backend: "jsonl", Path: filepath.Join(dir, "a.jsonl")})
	require.NoError(t, err)
	assert.IsType(t, &JSONLStore{}, s)
	s, err = Open(Config{Backend: "jsonl", Path: filepath.Join(dir, "b.jsonl"), MaxSizeMB: 5})
	require.NoError(t, err)
	assert.IsType(t, &RotatingJSONLStore{}, s)
	_ = s.Close()
	s, err = Open(Config{Backend: "none"})
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, s)
}
