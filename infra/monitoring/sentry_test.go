package monitoring

import (
	"testing"

	"github.com/kilianp07/focusplan/config"
	coremon "github.com/kilianp07/focusplan/core/monitoring"
)

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.(coremon.NopMonitor); !ok {
		t.Fatalf("expected nop monitor, got %T", m)
	}
}

func TestSentryMonitorIgnoresNil(t *testing.T) {
	m := &sentryMonitor{}
	m.CaptureException(nil, map[string]string{"module": "scheduler"})
}
