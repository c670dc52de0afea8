package metrics

// MultiSink fans events out to multiple sinks. Optional recorders are only
// forwarded to the sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordOptimization forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordOptimization(ev OptimizationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordOptimization(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordPlacements forwards placement events.
func (m *MultiSink) RecordPlacements(ev []PlacementEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PlacementRecorder); ok {
			if err := rec.RecordPlacements(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordWindow forwards run plans.
func (m *MultiSink) RecordWindow(ev WindowEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(WindowRecorder); ok {
			if err := rec.RecordWindow(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPolicyEvaluation forwards policy events.
func (m *MultiSink) RecordPolicyEvaluation(ev PolicyEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PolicyRecorder); ok {
			if err := rec.RecordPolicyEvaluation(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAllowance forwards allowance decisions.
func (m *MultiSink) RecordAllowance(ev AllowanceEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AllowanceRecorder); ok {
			if err := rec.RecordAllowance(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
