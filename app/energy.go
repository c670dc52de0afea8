package app

import (
	"context"

	"github.com/kilianp07/focusplan/core/energy"
	"github.com/kilianp07/focusplan/core/events"
)

// AnalyzeEnergy derives a profile from historical samples. When the service
// serves profiles from memory the new profile replaces the user's current
// one.
func (s *Service) AnalyzeEnergy(_ context.Context, userID string, samples []energy.Sample) energy.Analysis {
	a := energy.NewAnalyzer(s.log).Analyze(userID, samples)
	if s.static != nil && len(samples) > 0 {
		s.static.Set(a.Profile)
		s.InvalidateProfile(userID)
	}
	return a
}

// Profile returns the cached energy profile of a user.
func (s *Service) Profile(ctx context.Context, userID string) (energy.Profile, error) {
	return s.profiles.Profile(ctx, userID)
}

// InvalidateProfile drops the cached profile of a user so the next request
// reloads it.
func (s *Service) InvalidateProfile(userID string) {
	s.profiles.Invalidate(userID)
	s.bus.Publish(events.ProfileInvalidated{UserID: userID, Time: s.now()})
}
