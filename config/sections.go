package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kilianp07/focusplan/core/energy"
	"github.com/kilianp07/focusplan/core/scheduler"
)

// SchedulerConfig selects the assignment strategy and its parameters.
type SchedulerConfig struct {
	scheduler.Config `json:",squash"`
	// Strategy names the registered assignment strategy. Only "greedy" ships.
	Strategy string `json:"strategy"`
}

func (c *SchedulerConfig) SetDefaults() {
	c.Config.SetDefaults()
	if c.Strategy == "" {
		c.Strategy = "greedy"
	}
}

// EnergyConfig locates analysed profiles and sizes the profile cache.
type EnergyConfig struct {
	// ProfilesFile is a YAML or JSON list of precomputed profiles.
	ProfilesFile string             `json:"profiles_file"`
	Cache        energy.CacheConfig `json:"cache"`
}

// SentryConfig defines settings for Sentry error monitoring.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
}

// LogConfig sets the global log level.
type LogConfig struct {
	Level string `json:"level"`
}

func (c *LogConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

func (c LogConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid level %q: %w", c.Level, err)
	}
	return nil
}
