package scheduler

import (
	"sort"

	"github.com/kilianp07/focusplan/core/model"
)

// Order returns the meetings in placement order: low flexibility first, then
// higher priority, then meetings with a preferred time. Equal keys keep
// their input order. The input slice is not modified.
func Order(meetings []model.Meeting) []model.Meeting {
	out := append([]model.Meeting(nil), meetings...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ra, rb := a.Flexibility.Rank(), b.Flexibility.Rank(); ra != rb {
			return ra < rb
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.PreferredTime != nil && b.PreferredTime == nil
	})
	return out
}
