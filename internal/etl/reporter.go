package etl

import (
	"salesetl/internal/metrics"
	"salesetl/internal/transformer"
)

// metricsReporter forwards transform warnings and stage row counts to the
// metrics facade.
type metricsReporter struct{ job string }

func (m metricsReporter) Warn(w transformer.Warning) {
	metrics.RecordIssue(m.job, string(w.Kind), w.Dataset, int64(w.Count))
}

func (m metricsReporter) Done(stage string, rows int) {
	metrics.RecordRow(m.job, stage, int64(rows))
}
