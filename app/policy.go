package app

import (
	"context"
	"time"

	"github.com/kilianp07/focusplan/core/events"
	"github.com/kilianp07/focusplan/core/model"
	"github.com/kilianp07/focusplan/core/policy"
	"github.com/kilianp07/focusplan/core/scheduler"
)

// CheckAllowance decides whether a meeting may be held at proposed.
func (s *Service) CheckAllowance(ctx context.Context, userID string, proposed time.Time, kind model.MeetingType, overrideCode string) (policy.Allowance, error) {
	a, err := s.enforcer.CheckAllowance(ctx, userID, proposed, kind, overrideCode)
	if err != nil {
		return a, err
	}
	s.bus.Publish(events.AllowanceDecided{
		UserID:      userID,
		MeetingType: kind.String(),
		Proposed:    proposed,
		Allowed:     a.Allowed,
		Time:        s.now(),
	})
	return a, nil
}

// EnforcePolicy evaluates a scheduling result against the user's
// no-meeting and focus rules. A nil cfg uses the configured policy.
func (s *Service) EnforcePolicy(ctx context.Context, userID string, result scheduler.Result, cfg *model.PolicyConfig) policy.Report {
	report := s.enforcer.Enforce(ctx, userID, ToPolicySchedule(result), cfg)
	counts := make(map[string]int)
	for _, v := range report.Violations {
		counts[v.Type]++
	}
	s.bus.Publish(events.PolicyEvaluated{
		UserID:          userID,
		ComplianceScore: report.ComplianceScore,
		Violations:      counts,
		Time:            report.EvaluatedAt,
	})
	return report
}

// ToPolicySchedule converts a scheduling result into the enforcer's input.
func ToPolicySchedule(res scheduler.Result) policy.Schedule {
	as := res.Assignments()
	ps := make([]policy.Placement, len(as))
	for i, a := range as {
		ps[i] = policy.Placement{Meeting: a.Meeting, Slot: a.Slot}
	}
	return policy.Schedule{Start: res.Start, End: res.End, Placements: ps}
}

// BlockTimeSlot reserves time for the user.
func (s *Service) BlockTimeSlot(ctx context.Context, userID string, start, end time.Time, kind model.BlockType, reason string) (model.Block, error) {
	return s.enforcer.BlockTimeSlot(ctx, userID, start, end, kind, reason)
}

// ConfigureNoMeetingDay marks a weekday (0=Monday) as meeting free.
func (s *Service) ConfigureNoMeetingDay(ctx context.Context, userID string, weekday int, recurring bool) (model.NoMeetingDay, error) {
	return s.enforcer.ConfigureNoMeetingDay(ctx, userID, weekday, recurring)
}
