package plugins

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kilianp07/focusplan/core/logger"
	"github.com/kilianp07/focusplan/core/scheduler"
	"github.com/kilianp07/focusplan/core/scoring"
)

// StrategyFactory builds an assignment strategy from the scheduler
// configuration and the scorer shared by the service.
type StrategyFactory func(cfg scheduler.Config, scorer *scoring.Scorer, log logger.Logger) (scheduler.Strategy, error)

var (
	mu         sync.RWMutex
	strategies = map[string]StrategyFactory{}
)

// RegisterStrategy makes a strategy available under name. Registering the
// same name twice replaces the factory.
func RegisterStrategy(name string, f StrategyFactory) {
	mu.Lock()
	defer mu.Unlock()
	strategies[name] = f
}

// NewStrategy builds the strategy registered under name.
func NewStrategy(name string, cfg scheduler.Config, scorer *scoring.Scorer, log logger.Logger) (scheduler.Strategy, error) {
	mu.RLock()
	f, ok := strategies[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown scheduling strategy %q", name)
	}
	return f(cfg, scorer, log)
}

// Strategies lists the registered names in order.
func Strategies() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(strategies))
	for n := range strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterStrategy("greedy", func(cfg scheduler.Config, scorer *scoring.Scorer, log logger.Logger) (scheduler.Strategy, error) {
		return scheduler.NewAssigner(cfg, scorer, log)
	})
}
