package main

import (
	"go.uber.org/zap"

	"salesetl/internal/config"
	"salesetl/internal/metrics"
	"salesetl/internal/metrics/datadog"
	"salesetl/internal/metrics/prompush"
)

// setupMetrics installs the configured backend and returns a function that
// flushes it. A backend that cannot be created leaves metrics disabled.
func setupMetrics(p config.Pipeline, log *zap.Logger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch p.Metrics.Backend {
	case "prometheus":
		b, err = prompush.NewBackend(p.Job, p.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       p.Metrics.DatadogAddr,
			Namespace:  "salesetl.",
			GlobalTags: []string{"job:" + p.Job},
		})
	case "", "none":
		log.Debug("metrics disabled")
		return func() {}
	default:
		log.Warn("unknown metrics backend; metrics disabled", zap.String("backend", p.Metrics.Backend))
		return func() {}
	}
	if err != nil {
		log.Warn("metrics backend init failed; using nop", zap.String("backend", p.Metrics.Backend), zap.Error(err))
		return func() {}
	}

	log.Info("metrics enabled", zap.String("backend", p.Metrics.Backend))
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", zap.Error(err))
		}
	}
}
