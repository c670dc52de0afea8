package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/focusplan/app/plugins"
	"github.com/kilianp07/focusplan/config"
	"github.com/kilianp07/focusplan/core/energy"
	"github.com/kilianp07/focusplan/core/events"
	"github.com/kilianp07/focusplan/core/journal"
	"github.com/kilianp07/focusplan/core/logger"
	coremetrics "github.com/kilianp07/focusplan/core/metrics"
	coremqtt "github.com/kilianp07/focusplan/core/mqtt"
	"github.com/kilianp07/focusplan/core/policy"
	"github.com/kilianp07/focusplan/core/prediction"
	"github.com/kilianp07/focusplan/core/scheduler"
	"github.com/kilianp07/focusplan/core/scoring"
	infralog "github.com/kilianp07/focusplan/infra/logger"
	inframetrics "github.com/kilianp07/focusplan/infra/metrics"
	"github.com/kilianp07/focusplan/infra/mqtt"
	"github.com/kilianp07/focusplan/internal/eventbus"
)

// Deps overrides the components New would otherwise build from the
// configuration. Zero fields are built from cfg.
type Deps struct {
	Profiles     energy.Source
	Availability prediction.AvailabilityPredictor
	Sink         coremetrics.MetricsSink
	Journal      journal.Store
	Publisher    coremqtt.Publisher
	Blocks       policy.BlockStore
	Log          logger.Logger
	Now          func() time.Time
}

// Service is the facade over scheduling, policy enforcement and energy
// profiles. Every run is journaled, measured and published on the bus.
type Service struct {
	cfg      *config.Config
	static   *energy.StaticSource
	profiles *energy.CachedSource
	avail    prediction.AvailabilityPredictor
	strategy scheduler.Strategy
	assigner *scheduler.Assigner
	enforcer *policy.Enforcer
	sink     coremetrics.MetricsSink
	journal  journal.Store
	bus      *eventbus.TypedBus[events.Event]
	mqtt     *mqtt.PahoClient
	log      logger.Logger
	now      func() time.Time
	cancel   context.CancelFunc
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	return NewWithDeps(cfg, Deps{})
}

// NewWithDeps creates a Service, using the given dependencies where set.
func NewWithDeps(cfg *config.Config, deps Deps) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	log := deps.Log
	if log == nil {
		log = infralog.New("service")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	s := &Service{cfg: cfg, avail: deps.Availability, log: log, now: now}

	scorer, err := scoring.New()
	if err != nil {
		return nil, fmt.Errorf("scorer: %w", err)
	}
	if s.assigner, err = scheduler.NewAssigner(cfg.Scheduler.Config, scorer, log); err != nil {
		return nil, fmt.Errorf("assigner: %w", err)
	}
	if s.strategy, err = plugins.NewStrategy(cfg.Scheduler.Strategy, cfg.Scheduler.Config, scorer, log); err != nil {
		return nil, err
	}

	upstream := deps.Profiles
	if upstream == nil {
		if s.static, err = loadProfiles(cfg.Energy.ProfilesFile); err != nil {
			return nil, err
		}
		upstream = s.static
	}
	s.profiles = energy.NewCachedSource(upstream, cfg.Energy.Cache, log)

	blocks := deps.Blocks
	if blocks == nil {
		blocks = policy.NewMemoryBlockStore()
	}
	s.enforcer, err = policy.NewEnforcer(blocks, cfg.Policy, log,
		policy.WithWorkingHours(cfg.Scheduler.WorkStartHour, cfg.Scheduler.WorkEndHour),
		policy.WithClock(now))
	if err != nil {
		return nil, fmt.Errorf("enforcer: %w", err)
	}

	if s.sink = deps.Sink; s.sink == nil {
		if s.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
	}
	if s.journal = deps.Journal; s.journal == nil {
		if s.journal, err = journal.Open(cfg.Journal); err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.bus = eventbus.NewTypedWithBuffer[events.Event](64)
	inframetrics.StartEventCollector(ctx, s.bus, s.sink)

	pub := deps.Publisher
	if pub == nil && cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT, s.InvalidateProfile)
		if err != nil {
			s.closeStores()
			cancel()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		s.mqtt = client
		pub = client
	}
	if pub != nil {
		mqtt.Forward(ctx, s.bus, pub, log)
	}
	return s, nil
}

func loadProfiles(path string) (*energy.StaticSource, error) {
	src := energy.NewStaticSource(nil)
	if path == "" {
		return src, nil
	}
	profiles, err := energy.LoadProfiles(path)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		src.Set(p)
	}
	return src, nil
}

// Events exposes the bus so callers can observe runs and decisions.
func (s *Service) Events() eventbus.Subscriber[events.Event] { return s.bus }

// Config returns the active configuration.
func (s *Service) Config() *config.Config { return s.cfg }

// Close stops background forwarding and releases the journal, metrics and
// MQTT resources.
func (s *Service) Close() error {
	s.cancel()
	s.bus.Close()
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("%d events were dropped by slow subscribers", n)
	}
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	return s.closeStores()
}

func (s *Service) closeStores() error {
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	var errs []error
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("journal: %w", err))
		}
	}
	return errors.Join(errs...)
}
