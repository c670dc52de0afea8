// Package scheduler assigns candidate meetings to calendar time.
//
// Meetings are ordered so the most constrained ones (low flexibility, high
// priority, pinned to a preferred time) go first. Each meeting then takes
// the best scoring feasible start in the free-time pool, and that interval
// is removed from the pool. Placement is single pass and never revisited,
// so a meeting that finds no contiguous free block is reported as
// unscheduled rather than as an error.
//
// Results can be exported to JSON or CSV through pkg/export.
package scheduler
