package mqtt

import (
	"context"
	"errors"
	"sync"

	"github.com/kilianp07/focusplan/core/events"
	"github.com/kilianp07/focusplan/core/logger"
	coremon "github.com/kilianp07/focusplan/core/monitoring"
	coremqtt "github.com/kilianp07/focusplan/core/mqtt"
	"github.com/kilianp07/focusplan/internal/eventbus"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// Forward publishes every bus event through pub until ctx is canceled or
// the bus closes. Publish failures are logged and do not stop forwarding.
func Forward(ctx context.Context, bus eventbus.Subscriber[events.Event], pub Publisher, log logger.Logger) {
	if bus == nil || pub == nil {
		return
	}
	log = logger.OrNop(log)
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
				if err := pub.PublishEvent(ev); err != nil {
					log.Warnf("forward %s event for %s: %v", ev.Kind(), ev.User(), err)
				}
			}
		}
	}()
}

// MockPublisher records events in memory and is used in tests.
type MockPublisher struct {
	mu      sync.Mutex
	Events  []events.Event
	FailFor map[string]bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailFor: make(map[string]bool)}
}

// PublishEvent records ev or fails when its user is listed in FailFor.
func (m *MockPublisher) PublishEvent(ev events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFor[ev.User()] {
		return errors.New("publish failed")
	}
	m.Events = append(m.Events, ev)
	return nil
}

// Published returns a copy of the recorded events.
func (m *MockPublisher) Published() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]events.Event(nil), m.Events...)
}
