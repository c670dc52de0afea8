package mqtt

import "github.com/kilianp07/focusplan/core/events"

// Publisher forwards scheduling events to an MQTT broker so calendar and
// notification services can react to them.
type Publisher interface {
	// PublishEvent sends ev on the topic derived from its user and kind.
	PublishEvent(ev events.Event) error
}
