package policy

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/focusplan/core/logger"
	"github.com/kilianp07/focusplan/core/model"
)

// criticalPriority and above may be placed on no-meeting days.
const criticalPriority = 9

// suggestedNoMeetingDays are proposed, in order, when too few are configured.
var suggestedNoMeetingDays = []int{2, 4}

// Enforcer applies a PolicyConfig to schedules and allowance requests.
type Enforcer struct {
	store     BlockStore
	cfg       model.PolicyConfig
	log       logger.Logger
	now       func() time.Time
	workStart int
	workEnd   int
}

// Option customises an Enforcer.
type Option func(*Enforcer)

// WithWorkingHours sets the daily window in which free focus time is counted.
func WithWorkingHours(start, end int) Option {
	return func(e *Enforcer) { e.workStart, e.workEnd = start, end }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Enforcer) { e.now = now }
}

// NewEnforcer returns an Enforcer backed by store. A nil store is replaced
// by an empty in-memory one.
func NewEnforcer(store BlockStore, cfg model.PolicyConfig, log logger.Logger, opts ...Option) (*Enforcer, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		store = NewMemoryBlockStore()
	}
	e := &Enforcer{store: store, cfg: cfg, log: logger.OrNop(log), now: time.Now, workStart: 8, workEnd: 18}
	for _, o := range opts {
		o(e)
	}
	if e.workStart < 0 || e.workEnd > 24 || e.workEnd <= e.workStart {
		return nil, fmt.Errorf("%w: invalid working hours %d-%d", model.ErrInvalidInput, e.workStart, e.workEnd)
	}
	return e, nil
}

// Config returns the default policy applied when Enforce gets no override.
func (e *Enforcer) Config() model.PolicyConfig { return e.cfg }

// BlockTimeSlot reserves [start, end) on the user's calendar. Only flexible
// blocks accept exceptions.
func (e *Enforcer) BlockTimeSlot(ctx context.Context, userID string, start, end time.Time, kind model.BlockType, reason string) (model.Block, error) {
	if !end.After(start) {
		return model.Block{}, fmt.Errorf("block: %w", model.ErrInvalidRange)
	}
	if kind.String() == "unknown" {
		return model.Block{}, fmt.Errorf("%w: unknown block type", model.ErrInvalidInput)
	}
	b := model.Block{
		ID:                uuid.NewString(),
		UserID:            userID,
		Start:             start,
		End:               end,
		Type:              kind,
		Reason:            reason,
		ExceptionsAllowed: kind == model.BlockFlexible,
	}
	if err := e.store.AddBlock(ctx, b); err != nil {
		return model.Block{}, fmt.Errorf("store block: %w", err)
	}
	e.log.Infof("blocked %s to %s (%s) for user %s", start.Format(time.RFC3339), end.Format(time.RFC3339), kind, userID)
	return b, nil
}

// ConfigureNoMeetingDay marks weekday (0=Monday ... 6=Sunday) as a
// no-meeting day for the user.
func (e *Enforcer) ConfigureNoMeetingDay(ctx context.Context, userID string, weekday int, recurring bool) (model.NoMeetingDay, error) {
	name, err := model.DayName(weekday)
	if err != nil {
		return model.NoMeetingDay{}, err
	}
	d := model.NoMeetingDay{
		UserID:    userID,
		Weekday:   weekday,
		DayName:   name,
		Recurring: recurring,
		Active:    true,
	}
	if err := e.store.SetNoMeetingDay(ctx, d); err != nil {
		return model.NoMeetingDay{}, fmt.Errorf("store no-meeting day: %w", err)
	}
	e.log.Infof("configured no-meeting day %s for user %s", name, userID)
	return d, nil
}

// Enforce evaluates sched for the user. cfg replaces the enforcer's policy
// when non-nil; its thresholds are honoured as given, including 0. An
// invalid override is logged and the enforcer's policy applies instead.
// Store failures are logged and treated as missing data.
func (e *Enforcer) Enforce(ctx context.Context, userID string, sched Schedule, cfg *model.PolicyConfig) Report {
	rules := e.cfg
	if cfg != nil {
		override := *cfg
		override.SetDefaults()
		if err := override.Validate(); err != nil {
			e.log.Warnf("ignoring policy override for %s: %v", userID, err)
		} else {
			rules = override
		}
	}
	e.log.Infof("enforcing no-meeting policy for user %s", userID)

	weekdays := e.configuredWeekdays(ctx, userID)
	rep := Report{
		UserID:        userID,
		EvaluatedAt:   e.now(),
		NoMeetingDays: []time.Time{},
		Violations:    []Violation{},
		Corrections:   []Correction{},
	}

	start, end, ok := sched.span()
	var days []time.Time
	if ok {
		for d := model.Day(start); d.Before(end); d = d.AddDate(0, 0, 1) {
			days = append(days, d)
		}
	}
	blocks := make(map[time.Time][]model.Block, len(days))
	noMeeting := make(map[time.Time]bool)
	for _, d := range days {
		bs, err := e.store.BlocksForDay(ctx, userID, d)
		if err != nil {
			e.log.Warnf("blocks for %s unavailable: %v", d.Format(time.DateOnly), err)
		}
		blocks[d] = bs
		isNoMeeting := weekdays[model.ISOWeekday(d)]
		for _, b := range bs {
			if b.Type == model.BlockNoMeetingDay {
				isNoMeeting = true
				weekdays[model.ISOWeekday(d)] = true
			}
		}
		if isNoMeeting {
			noMeeting[d] = true
			rep.NoMeetingDays = append(rep.NoMeetingDays, d)
		}
	}

	if len(weekdays) < rules.MinNoMeetingDaysPerWeek {
		rep.Violations = append(rep.Violations, Violation{
			Type:            InsufficientNoMeetingDays,
			Severity:        SeverityHigh,
			Message:         fmt.Sprintf("Only %d no-meeting days scheduled, require %d", len(weekdays), rules.MinNoMeetingDaysPerWeek),
			SuggestedAction: "Add more no-meeting days",
		})
		for _, wd := range suggestedNoMeetingDays {
			if weekdays[wd] {
				continue
			}
			name, _ := model.DayName(wd)
			rep.Corrections = append(rep.Corrections, Correction{
				Type:    "add_no_meeting_day",
				Weekday: wd,
				DayName: name,
				Reason:  "Recommended for focus and deep work",
			})
		}
	}

	placements := append([]Placement(nil), sched.Placements...)
	sort.SliceStable(placements, func(i, j int) bool { return placements[i].Slot.Start.Before(placements[j].Slot.Start) })
	for _, p := range placements {
		day := model.Day(p.Slot.Start)
		if !noMeeting[day] || p.Meeting.Priority >= criticalPriority || rules.ExceptionAllowed(p.Meeting.Type) {
			continue
		}
		at := p.Slot.Start
		rep.Violations = append(rep.Violations, Violation{
			Type:          NoMeetingDayViolation,
			Severity:      SeverityMedium,
			MeetingID:     p.Meeting.ID,
			MeetingTitle:  p.Meeting.Title,
			ScheduledTime: &at,
			Day:           &day,
			Message:       fmt.Sprintf("Meeting scheduled on no-meeting day: %s", day.Format(time.DateOnly)),
		})
	}

	for _, d := range days {
		if model.ISOWeekday(d) > 4 || noMeeting[d] {
			continue
		}
		n := e.focusBlocks(d, blocks[d], placements, rules.FocusBlockDurationMinutes)
		if n >= rules.MinFocusBlocksPerDay {
			continue
		}
		day := d
		rep.Violations = append(rep.Violations, Violation{
			Type:     InsufficientFocusTime,
			Severity: SeverityMedium,
			Day:      &day,
			Message: fmt.Sprintf("Only %d focus blocks on %s, require %d",
				n, d.Format(time.DateOnly), rules.MinFocusBlocksPerDay),
		})
	}

	rep.ComplianceScore = ComplianceScore(rep.Violations)
	rep.Recommendations = recommendations(rep.Violations)
	e.log.Debugw("policy evaluated", map[string]any{
		"user_id":    userID,
		"violations": len(rep.Violations),
		"compliance": rep.ComplianceScore,
	})
	return rep
}

func (e *Enforcer) configuredWeekdays(ctx context.Context, userID string) map[int]bool {
	out := make(map[int]bool)
	days, err := e.store.NoMeetingDays(ctx, userID)
	if err != nil {
		e.log.Warnf("no-meeting days for %s unavailable: %v", userID, err)
		return out
	}
	for _, d := range days {
		if d.Active {
			out[d.Weekday] = true
		}
	}
	return out
}

type span struct{ start, end time.Time }

// focusBlocks counts every whole focus-length chunk of the day's focus_time
// blocks plus those of working time left free by meetings and blocks.
func (e *Enforcer) focusBlocks(day time.Time, blocks []model.Block, placements []Placement, minutes int) int {
	open := day.Add(time.Duration(e.workStart) * time.Hour)
	closeAt := day.Add(time.Duration(e.workEnd) * time.Hour)
	length := time.Duration(minutes) * time.Minute

	count := 0
	var busy []span
	for _, b := range blocks {
		if b.Type == model.BlockFocusTime {
			if from, to := maxTime(b.Start, open), minTime(b.End, closeAt); to.After(from) {
				count += int(to.Sub(from) / length)
			}
		}
		busy = append(busy, span{b.Start, b.End})
	}
	for _, p := range placements {
		if p.Slot.Start.Before(closeAt) && p.Slot.End.After(open) {
			busy = append(busy, span{p.Slot.Start, p.Slot.End})
		}
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].start.Before(busy[j].start) })

	cursor := open
	for _, b := range busy {
		if b.start.After(cursor) {
			count += int(minTime(b.start, closeAt).Sub(cursor) / length)
		}
		if b.end.After(cursor) {
			cursor = b.end
		}
		if !cursor.Before(closeAt) {
			return count
		}
	}
	count += int(closeAt.Sub(cursor) / length)
	return count
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// CheckAllowance decides whether a meeting of kind may start at proposed.
// Time inside a block is granted only when the block accepts exceptions for
// urgent or executive meetings, or when overrideCode is a configured code.
// Otherwise three alternative times are offered.
func (e *Enforcer) CheckAllowance(ctx context.Context, userID string, proposed time.Time, kind model.MeetingType, overrideCode string) (Allowance, error) {
	blocks, err := e.store.BlocksForDay(ctx, userID, proposed)
	if err != nil {
		return Allowance{}, fmt.Errorf("blocks for %s: %w", userID, err)
	}
	for _, b := range blocks {
		if !b.Contains(proposed) {
			continue
		}
		if (b.ExceptionsAllowed && kind.IsException()) || e.validOverride(overrideCode) {
			return Allowance{
				Allowed: true,
				Reason:  fmt.Sprintf("Exception granted for %s meeting", kind),
				Warning: fmt.Sprintf("Conflicts with %s block", b.Type),
			}, nil
		}
		return Allowance{
			Allowed:          false,
			Reason:           fmt.Sprintf("Time blocked for %s: %s", b.Type, b.Reason),
			AlternativeTimes: Alternatives(proposed),
		}, nil
	}
	return Allowance{Allowed: true, Reason: "No conflicts detected"}, nil
}

func (e *Enforcer) validOverride(code string) bool {
	return code != "" && slices.Contains(e.cfg.OverrideCodes, code)
}

// Alternatives proposes the same time on the next day, two hours later, and
// the next 14:00.
func Alternatives(t time.Time) []time.Time {
	afternoon := time.Date(t.Year(), t.Month(), t.Day(), 14, 0, 0, 0, t.Location())
	if !afternoon.After(t) {
		afternoon = afternoon.AddDate(0, 0, 1)
	}
	return []time.Time{t.AddDate(0, 0, 1), t.Add(2 * time.Hour), afternoon}
}
