package metrics

import (
	"context"

	"github.com/kilianp07/focusplan/core/events"
	coremetrics "github.com/kilianp07/focusplan/core/metrics"
	coremon "github.com/kilianp07/focusplan/core/monitoring"
	"github.com/kilianp07/focusplan/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// policy and allowance events. Optimization runs are recorded directly by
// the caller. It stops when the context is canceled or the bus closes.
func StartEventCollector(ctx context.Context, bus eventbus.Subscriber[events.Event], sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer coremon.Recover()
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.PolicyEvaluated:
					if r, ok := sink.(coremetrics.PolicyRecorder); ok {
						_ = r.RecordPolicyEvaluation(coremetrics.PolicyEvent{
							UserID:          e.UserID,
							Violations:      e.Violations,
							ComplianceScore: e.ComplianceScore,
							Time:            e.Time,
						})
					}
				case events.AllowanceDecided:
					if r, ok := sink.(coremetrics.AllowanceRecorder); ok {
						_ = r.RecordAllowance(coremetrics.AllowanceEvent{
							UserID:      e.UserID,
							MeetingType: e.MeetingType,
							Allowed:     e.Allowed,
							Time:        e.Time,
						})
					}
				}
			}
		}
	}()
}
