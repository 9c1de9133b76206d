// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the job labels (step, status, kind, dataset) onto Prometheus
//     labels; job itself becomes the Pushgateway grouping key.
//   - Pushing collected metrics to a Pushgateway at the end of the run, since
//     a batch job does not live long enough to be scraped.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"salesetl/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter   *prometheus.CounterVec // salesetl_step_total
	stepDuration  *prometheus.SummaryVec // salesetl_step_duration_seconds
	recordCounter *prometheus.CounterVec // salesetl_records_total
	issueCounter  *prometheus.CounterVec // salesetl_quality_issues_total
	batchCounter  prometheus.Counter     // salesetl_batches_total
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (usually the configured job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "sales_etl"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Total number of ETL stage executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.StepDuration,
			Help:       "Duration of ETL stages in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	recordCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RecordsTotal,
			Help: "Row counts per kind (extracted_sales, cleaned_sales, enriched, loaded, ...).",
		},
		[]string{"kind"},
	)
	issueCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.QualityIssues,
			Help: "Data quality warnings per kind and dataset.",
		},
		[]string{"kind", "dataset"},
	)
	batchCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metrics.BatchesTotal,
			Help: "Total number of warehouse load batches flushed for this job.",
		},
	)

	for name, c := range map[string]prometheus.Collector{
		"step counter":   stepCounter,
		"step summary":   stepDuration,
		"record counter": recordCounter,
		"issue counter":  issueCounter,
		"batch counter":  batchCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stepCounter:   stepCounter,
		stepDuration:  stepDuration,
		recordCounter: recordCounter,
		issueCounter:  issueCounter,
		batchCounter:  batchCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter == nil {
			return
		}
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)

	case metrics.RecordsTotal:
		if b.recordCounter == nil {
			return
		}
		b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)

	case metrics.QualityIssues:
		if b.issueCounter == nil {
			return
		}
		b.issueCounter.WithLabelValues(labels["kind"], labels["dataset"]).Add(delta)

	case metrics.BatchesTotal:
		if b.batchCounter == nil {
			return
		}
		b.batchCounter.Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
