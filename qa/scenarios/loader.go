package scenarios

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/focusplan/core/energy"
	"github.com/kilianp07/focusplan/core/model"
)

// Expected lists the checks of a scenario. Zero values are not checked,
// except Scheduled and Unscheduled which always are.
type Expected struct {
	Scheduled      int                  `yaml:"scheduled"`
	Unscheduled    []string             `yaml:"unscheduled,omitempty"`
	MinSuccessRate float64              `yaml:"min_success_rate,omitempty"`
	Starts         map[string]time.Time `yaml:"starts,omitempty"`
	// Violations are policy violation types that must be reported.
	Violations []string `yaml:"violations,omitempty"`
}

// Scenario is a self-contained scheduling run described in YAML.
type Scenario struct {
	Name          string          `yaml:"name"`
	Description   string          `yaml:"description,omitempty"`
	UserID        string          `yaml:"user_id"`
	Start         time.Time       `yaml:"start"`
	End           time.Time       `yaml:"end"`
	Profile       *energy.Profile `yaml:"profile,omitempty"`
	Meetings      []model.Meeting `yaml:"meetings"`
	NoMeetingDays []int           `yaml:"no_meeting_days,omitempty"`
	Expected      Expected        `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.UserID == "" {
		sc.UserID = "qa"
	}
	return &sc, nil
}
