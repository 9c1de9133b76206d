// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the sales ETL job.
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete systems (Prometheus Pushgateway, Datadog) live in subpackages,
//     mirroring the storage backends.
//
// Callers record per-stage timings (extract, transform, load, export),
// row counts per stage, data quality warnings and loader batches.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by every backend.
const (
	StepTotal     = "salesetl_step_total"
	StepDuration  = "salesetl_step_duration_seconds"
	RecordsTotal  = "salesetl_records_total"
	QualityIssues = "salesetl_quality_issues_total"
	BatchesTotal  = "salesetl_batches_total"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"

	labelJob     = "job"
	labelStep    = "step"
	labelStatus  = "status"
	labelKind    = "kind"
	labelDataset = "dataset"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep measures latency and success/failure of one ETL stage.
func RecordStep(job, step string, err error, d time.Duration) {
	status := statusSuccess
	if err != nil {
		status = statusFailure
	}

	lbls := Labels{
		labelJob:    job,
		labelStep:   step,
		labelStatus: status,
	}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRow increments a row counter for the given job and kind.
//
// Kinds follow the stage summaries, e.g.:
//   - "extracted_sales", "extracted_customers"
//   - "cleaned_sales", "cleaned_customers"
//   - "enriched"
//   - "loaded"
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(delta), Labels{
		labelJob:  job,
		labelKind: kind,
	})
}

// RecordIssue counts data quality warnings by kind and dataset.
func RecordIssue(job, kind, dataset string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(QualityIssues, float64(delta), Labels{
		labelJob:     job,
		labelKind:    kind,
		labelDataset: dataset,
	})
}

// RecordBatches increments a batch-level counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(delta), Labels{
		labelJob: job,
	})
}
