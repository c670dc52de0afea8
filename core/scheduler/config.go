package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/focusplan/core/model"
	"github.com/kilianp07/focusplan/core/slots"
)

// Config defines assignment parameters loaded from configuration.
type Config struct {
	SlotDurationMinutes int `json:"slot_duration_minutes" yaml:"slot_duration_minutes"`
	WorkStartHour       int `json:"work_start_hour" yaml:"work_start_hour"`
	WorkEndHour         int `json:"work_end_hour" yaml:"work_end_hour"`
	// SuggestionLimit caps the number of slots returned by Suggest.
	SuggestionLimit int `json:"suggestion_limit" yaml:"suggestion_limit"`
	// Workers > 1 scores the candidate starts of a meeting concurrently.
	Workers int `json:"workers" yaml:"workers"`
	// RescheduleLookaheadDays is the forward window searched by Reschedule.
	RescheduleLookaheadDays int `json:"reschedule_lookahead_days" yaml:"reschedule_lookahead_days"`
	// RescheduleImprovement is the relative gain (0.15 = 15%) a new slot must
	// beat the current score by to be suggested.
	RescheduleImprovement float64 `json:"reschedule_improvement" yaml:"reschedule_improvement"`
	// Grouping selects the grouping-efficiency input: "static" or "adjacency".
	Grouping string `json:"grouping" yaml:"grouping"`
}

// DefaultConfig returns 30 minute slots from 08:00 to 18:00, five
// suggestions and a seven day, 15% reschedule search.
func DefaultConfig() Config {
	return Config{
		SlotDurationMinutes:     30,
		WorkStartHour:           8,
		WorkEndHour:             18,
		SuggestionLimit:         5,
		Workers:                 1,
		RescheduleLookaheadDays: 7,
		RescheduleImprovement:   0.15,
		Grouping:                "static",
	}
}

// SetDefaults fills zero values from DefaultConfig.
func (c *Config) SetDefaults() {
	def := DefaultConfig()
	if c.SlotDurationMinutes == 0 {
		c.SlotDurationMinutes = def.SlotDurationMinutes
	}
	if c.WorkStartHour == 0 && c.WorkEndHour == 0 {
		c.WorkStartHour, c.WorkEndHour = def.WorkStartHour, def.WorkEndHour
	}
	if c.SuggestionLimit == 0 {
		c.SuggestionLimit = def.SuggestionLimit
	}
	if c.Workers == 0 {
		c.Workers = def.Workers
	}
	if c.RescheduleLookaheadDays == 0 {
		c.RescheduleLookaheadDays = def.RescheduleLookaheadDays
	}
	if c.RescheduleImprovement == 0 {
		c.RescheduleImprovement = def.RescheduleImprovement
	}
	if c.Grouping == "" {
		c.Grouping = def.Grouping
	}
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.SlotDurationMinutes <= 0 {
		return fmt.Errorf("%w: slot_duration_minutes must be positive", model.ErrInvalidInput)
	}
	if err := c.Generator().Validate(); err != nil {
		return err
	}
	if c.SuggestionLimit < 0 || c.Workers < 0 || c.RescheduleLookaheadDays < 0 {
		return fmt.Errorf("%w: limits must not be negative", model.ErrInvalidInput)
	}
	if c.RescheduleImprovement < 0 {
		return fmt.Errorf("%w: reschedule_improvement must not be negative", model.ErrInvalidInput)
	}
	switch c.Grouping {
	case "static", "adjacency":
	default:
		return fmt.Errorf("%w: unknown grouping %q", model.ErrInvalidInput, c.Grouping)
	}
	return nil
}

// Step returns the slot granularity.
func (c Config) Step() time.Duration {
	return time.Duration(c.SlotDurationMinutes) * time.Minute
}

// Generator returns the slot generator described by the configuration.
func (c Config) Generator() slots.Generator {
	return slots.Generator{Granularity: c.Step(), WorkStartHour: c.WorkStartHour, WorkEndHour: c.WorkEndHour}
}

// LoadConfig loads Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cfg Config
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	return cfg, err
}

// DecodeConfig reads from r to decode a Config.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		dec := json.NewDecoder(r)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	return cfg, nil
}
