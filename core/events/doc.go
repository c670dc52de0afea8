// Package events defines the scheduling events emitted on the event bus.
//
// Available event types:
//   - ScheduleOptimized: an assignment run finished
//   - PolicyEvaluated: a schedule was checked against the policy
//   - AllowanceDecided: a proposed meeting time was granted or denied
//   - ProfileInvalidated: a user's energy profile must be recomputed
package events
