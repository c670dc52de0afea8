package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/focusplan/core/factory"
	coremetrics "github.com/kilianp07/focusplan/core/metrics"
	"github.com/kilianp07/focusplan/core/metrics/load"
	"github.com/kilianp07/focusplan/infra/kpi"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})

	_ = coremetrics.RegisterMetricsSink("load", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			Backend     string  `json:"backend"`
			Path        string  `json:"path"`
			WorkMinutes float64 `json:"work_minutes_per_day"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		var store load.Store
		switch c.Backend {
		case "", "memory":
			store = load.NewMemoryStore()
		case "sqlite":
			if c.Path == "" {
				return nil, fmt.Errorf("load sink: sqlite backend requires path")
			}
			s, err := kpi.NewSQLiteStore(c.Path)
			if err != nil {
				return nil, err
			}
			store = s
		default:
			return nil, fmt.Errorf("load sink: unknown backend %s", c.Backend)
		}
		return NewLoadSink(store, c.WorkMinutes, prometheus.DefaultRegisterer)
	})
}
