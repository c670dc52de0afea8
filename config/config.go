package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/focusplan/core/journal"
	"github.com/kilianp07/focusplan/core/metrics"
	"github.com/kilianp07/focusplan/core/model"
	"github.com/kilianp07/focusplan/infra/mqtt"
)

// EnvPrefix marks environment overrides. FP_SCHEDULER__WORKERS=4 sets
// scheduler.workers.
const EnvPrefix = "FP_"

type Config struct {
	Scheduler SchedulerConfig    `json:"scheduler"`
	Policy    model.PolicyConfig `json:"policy"`
	Energy    EnergyConfig       `json:"energy"`
	Metrics   metrics.Config     `json:"metrics"`
	Journal   journal.Config     `json:"journal"`
	MQTT      mqtt.Config        `json:"mqtt"`
	Sentry    SentryConfig       `json:"sentry"`
	Log       LogConfig          `json:"log"`
}

// Default returns a configuration with every section defaulted. It is used
// when no file is given.
func Default() *Config {
	cfg := base()
	cfg.SetDefaults()
	return &cfg
}

// base is the starting point every file or environment override is
// decoded onto. Sections whose zero values are meaningful are prefilled here
// rather than in SetDefaults, so an explicit 0 in a file survives.
func base() Config {
	cfg := Config{Policy: model.DefaultPolicyConfig()}
	// Left nil so a configured list replaces the default instead of being
	// merged into it element by element.
	cfg.Policy.AllowedExceptionTypes = nil
	return cfg
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Scheduler.SetDefaults()
	c.Policy.SetDefaults()
	c.Energy.Cache.SetDefaults()
	c.Journal.SetDefaults()
	c.MQTT.SetDefaults()
	c.Log.SetDefaults()
}

// Validate checks every section and joins the failures.
func (c *Config) Validate() error {
	var errs []error
	add := func(section string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", section, err))
		}
	}
	add("scheduler", c.Scheduler.Validate())
	add("policy", c.Policy.Validate())
	add("journal", c.Journal.Validate())
	add("mqtt", c.MQTT.Validate())
	add("log", c.Log.Validate())
	return errors.Join(errs...)
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	return unmarshal(k)
}

// LoadEnv builds a configuration from defaults and environment overrides only.
func LoadEnv() (*Config, error) {
	return unmarshal(koanf.New("."))
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := base()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
