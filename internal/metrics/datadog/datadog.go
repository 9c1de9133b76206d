// Package datadog implements a Datadog backend for the metrics package.
//
// This package adapts the generic metrics.Backend interface to Datadog's
// DogStatsD protocol using the official statsd client library. It translates
// metric labels into Datadog tags and forwards counter and histogram
// observations to a local or remote Datadog agent.
package datadog

import (
	"fmt"
	"net"
	"os"
	"sort"

	"github.com/DataDog/datadog-go/v5/statsd"

	"salesetl/internal/metrics"
)

// DefaultAddr is used when neither Config.Addr nor DD_AGENT_HOST is set.
const DefaultAddr = "127.0.0.1:8125"

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or "unix:///path/to/socket".
	// Empty falls back to DD_AGENT_HOST:8125, then DefaultAddr.
	Addr string

	// Namespace is an optional prefix added to all metric names, e.g. "sales.".
	Namespace string

	// GlobalTags are tags applied to all metrics emitted by this backend,
	// e.g. []string{"env:prod","service:salesetl"}.
	GlobalTags []string
}

// Backend is a Datadog implementation of metrics.Backend.
//
// It wraps a statsd.Client and maps metric names and labels to Datadog
// metric names and tags. The same Backend instance is intended to be
// installed as the global metrics backend via metrics.SetBackend.
type Backend struct {
	client statsd.ClientInterface
}

// ResolveAddr returns cfgAddr, or the agent address derived from the
// environment when cfgAddr is empty.
func ResolveAddr(cfgAddr string) string {
	if cfgAddr != "" {
		return cfgAddr
	}
	if host := os.Getenv("DD_AGENT_HOST"); host != "" {
		return net.JoinHostPort(host, "8125")
	}
	return DefaultAddr
}

// NewBackend constructs a Datadog metrics backend from the given configuration.
func NewBackend(cfg Config) (*Backend, error) {
	opts := []statsd.Option{}
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}

	c, err := statsd.New(ResolveAddr(cfg.Addr), opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c}, nil
}

// IncCounter implements metrics.Backend.IncCounter using a Datadog Count metric.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	// DogStatsD Count expects an int64; fractional deltas are truncated.
	_ = b.client.Count(name, int64(delta), labelsToTags(labels), 1)
}

// ObserveHistogram implements metrics.Backend.ObserveHistogram using a Datadog Histogram metric.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Histogram(name, value, labelsToTags(labels), 1)
}

// Flush implements metrics.Backend.Flush. The job calls it once at exit, so
// it also closes the client.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	if err := b.client.Flush(); err != nil {
		return fmt.Errorf("datadog: flush: %w", err)
	}
	return b.client.Close()
}

// labelsToTags converts labels into sorted Datadog tag strings "key:value".
func labelsToTags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
