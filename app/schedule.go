package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/focusplan/core/events"
	"github.com/kilianp07/focusplan/core/journal"
	coremetrics "github.com/kilianp07/focusplan/core/metrics"
	"github.com/kilianp07/focusplan/core/model"
	coremon "github.com/kilianp07/focusplan/core/monitoring"
	"github.com/kilianp07/focusplan/core/scheduler"
)

// OptimizeSchedule places meetings for userID inside [start, end) using the
// configured strategy and the user's energy profile.
func (s *Service) OptimizeSchedule(ctx context.Context, meetings []model.Meeting, userID string, start, end time.Time) (scheduler.Result, error) {
	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return scheduler.Result{}, err
	}
	began := s.now()
	res, err := s.strategy.Assign(ctx, scheduler.Request{
		UserID:       userID,
		Meetings:     meetings,
		Start:        start,
		End:          end,
		Profile:      profile,
		Availability: s.avail,
	})
	if err != nil {
		if !errors.Is(err, model.ErrInvalidInput) && ctx.Err() == nil {
			coremon.CaptureException(err, coremon.UserTags("scheduler", userID))
		}
		return scheduler.Result{}, err
	}
	took := s.now().Sub(began)
	runID := uuid.NewString()
	s.log.Infof("run %s for %s: %d/%d meetings scheduled in %s",
		runID, userID, res.Metrics.ScheduledCount, res.Metrics.TotalMeetings, took)
	coremon.Breadcrumb("scheduler", fmt.Sprintf("run %s for %s: %.1f%% scheduled", runID, userID, res.Metrics.SuccessRate))

	placements := placementsOf(res)
	unscheduled := make([]string, len(res.Unscheduled))
	for i, m := range res.Unscheduled {
		unscheduled[i] = m.ID
	}
	s.record(runID, res, took, start, end)
	if err := s.journal.Append(ctx, journal.RunRecord{
		RunID:        runID,
		Timestamp:    began,
		UserID:       userID,
		WindowStart:  start,
		WindowEnd:    end,
		Meetings:     res.Metrics.TotalMeetings,
		Placements:   placements,
		Unscheduled:  unscheduled,
		SuccessRate:  res.Metrics.SuccessRate,
		AverageScore: res.Metrics.AverageScore,
		DurationMS:   took.Milliseconds(),
	}); err != nil {
		s.log.Warnf("journal append for run %s: %v", runID, err)
	}
	s.bus.Publish(events.ScheduleOptimized{
		RunID:        runID,
		UserID:       userID,
		Placements:   placements,
		Unscheduled:  unscheduled,
		SuccessRate:  res.Metrics.SuccessRate,
		AverageScore: res.Metrics.AverageScore,
		Time:         began,
	})
	return res, nil
}

func placementsOf(res scheduler.Result) []events.Placement {
	as := res.Assignments()
	out := make([]events.Placement, len(as))
	for i, a := range as {
		out[i] = events.Placement{MeetingID: a.Meeting.ID, Start: a.Slot.Start, End: a.Slot.End, Score: a.Score}
	}
	return out
}

func (s *Service) record(runID string, res scheduler.Result, took time.Duration, start, end time.Time) {
	m := res.Metrics
	if err := s.sink.RecordOptimization(coremetrics.OptimizationEvent{
		RunID:                 runID,
		UserID:                res.UserID,
		Meetings:              m.TotalMeetings,
		Scheduled:             m.ScheduledCount,
		Unscheduled:           m.UnscheduledCount,
		HighPriorityScheduled: m.HighPriorityScheduled,
		SuccessRate:           m.SuccessRate,
		AverageScore:          m.AverageScore,
		Duration:              took,
		Time:                  s.now(),
	}); err != nil {
		s.log.Warnf("record optimization: %v", err)
	}
	evs := make([]coremetrics.PlacementEvent, 0, len(res.Scheduled))
	for _, a := range res.Assignments() {
		evs = append(evs, coremetrics.PlacementEvent{
			RunID:       runID,
			UserID:      res.UserID,
			MeetingID:   a.Meeting.ID,
			MeetingType: a.Meeting.Type.String(),
			Start:       a.Slot.Start,
			Minutes:     a.Meeting.DurationMinutes,
			Score:       a.Score,
		})
	}
	if rec, ok := s.sink.(coremetrics.PlacementRecorder); ok && len(evs) > 0 {
		if err := rec.RecordPlacements(evs); err != nil {
			s.log.Warnf("record placements: %v", err)
		}
	}
	// An empty plan still clears the load previously reported for the window.
	if rec, ok := s.sink.(coremetrics.WindowRecorder); ok {
		if err := rec.RecordWindow(coremetrics.WindowEvent{
			RunID:      runID,
			UserID:     res.UserID,
			Start:      start,
			End:        end,
			Placements: evs,
		}); err != nil {
			s.log.Warnf("record window: %v", err)
		}
	}
}

// SuggestMeetingTime returns the best slots for a single meeting. When
// participants is non-empty it replaces the meeting's participant list.
func (s *Service) SuggestMeetingTime(ctx context.Context, meeting model.Meeting, userID string, participants []string, start, end time.Time) ([]model.TimeSlot, error) {
	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(participants) > 0 {
		meeting.Participants = append([]string(nil), participants...)
	}
	return s.assigner.Suggest(ctx, scheduler.SuggestRequest{
		Meeting:      meeting,
		Start:        start,
		End:          end,
		Profile:      profile,
		Availability: s.avail,
	})
}

// RescheduleMeeting looks for a materially better slot for one meeting of
// a previous result. A nil slot means the current placement should stay.
func (s *Service) RescheduleMeeting(ctx context.Context, meetingID string, result scheduler.Result, userID string) (*model.TimeSlot, error) {
	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	slot, err := s.assigner.Reschedule(ctx, scheduler.RescheduleRequest{
		Schedule:     result,
		MeetingID:    meetingID,
		Profile:      profile,
		Now:          s.now(),
		Availability: s.avail,
	})
	if err != nil {
		return nil, err
	}
	if slot != nil {
		s.log.Infof("meeting %s of %s can move to %s (score %.1f)", meetingID, userID, slot.Start.Format(time.RFC3339), slot.Score)
	}
	return slot, nil
}
