package loadkpi

import (
	"context"
	"sort"
	"time"

	"github.com/kilianp07/focusplan/core/journal"
	"github.com/kilianp07/focusplan/core/metrics/load"
)

// Backfill replays journaled runs matching q into the load store, oldest
// first, and returns the number of placements replayed. Each run replaces
// the load of its window, so the store ends up with the latest plan per
// day and running the job again yields the same totals.
func Backfill(ctx context.Context, store load.Store, runs journal.Store, q journal.Query) (int, error) {
	records, err := runs.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Timestamp.Before(records[j].Timestamp) })
	n := 0
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		start, end, ok := window(r)
		if !ok {
			continue
		}
		recs := make([]load.Record, 0, len(r.Placements))
		for _, p := range r.Placements {
			recs = append(recs, load.Record{
				Date:           load.Day(p.Start),
				Meetings:       1,
				MeetingMinutes: p.End.Sub(p.Start).Minutes(),
			})
		}
		if err := store.Replace(r.UserID, start, end, recs); err != nil {
			return n, err
		}
		n += len(recs)
	}
	return n, nil
}

// window returns the scheduling window of r. Runs journaled without one
// fall back to the days their placements cover.
func window(r journal.RunRecord) (time.Time, time.Time, bool) {
	if !r.WindowStart.IsZero() && r.WindowEnd.After(r.WindowStart) {
		return r.WindowStart, r.WindowEnd, true
	}
	if len(r.Placements) == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, end := r.Placements[0].Start, r.Placements[0].End
	for _, p := range r.Placements[1:] {
		if p.Start.Before(start) {
			start = p.Start
		}
		if p.End.After(end) {
			end = p.End
		}
	}
	return start, end, true
}
