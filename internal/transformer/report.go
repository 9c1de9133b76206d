package transformer

import (
	"sync"

	"go.uber.org/zap"
)

// WarningKind identifies a recoverable data quality problem.
type WarningKind string

const (
	// WarnMissingCriticalFields: sales rows dropped for lacking order_id,
	// date or product.
	WarnMissingCriticalFields WarningKind = "missing_critical_fields"
	// WarnMissingCustomerID: sales rows whose customer_id was filled with
	// the UNKNOWN sentinel.
	WarnMissingCustomerID WarningKind = "missing_customer_id"
	// WarnInvalidUnitPrice: sales rows whose unit_price was replaced with
	// the median.
	WarnInvalidUnitPrice WarningKind = "invalid_unit_price"
	// WarnDuplicateCustomerID: customer rows dropped as duplicates.
	WarnDuplicateCustomerID WarningKind = "duplicate_customer_id"
)

// Warning is a DataQualityWarning: a problem recovered locally and reported
// as a count, never as an error.
type Warning struct {
	Kind    WarningKind
	Dataset string
	Count   int
}

// Reporter receives run metadata from the transform components.
// Implementations must be safe for concurrent use; the two cleaners may run
// in parallel.
type Reporter interface {
	// Warn is called once per recovered problem kind with a positive count.
	Warn(w Warning)
	// Done is called when a stage finishes, with its output row count.
	Done(stage string, rows int)
}

// Report is the per-run tally of recovered problems.
type Report struct {
	DroppedMissingFields int `json:"dropped_missing_fields"`
	FilledCustomerIDs    int `json:"filled_customer_ids"`
	RepairedPrices       int `json:"repaired_prices"`
	DuplicateCustomers   int `json:"duplicate_customers"`
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Warn(Warning)     {}
func (NopReporter) Done(string, int) {}

// LogReporter writes warnings and stage completions to a zap logger.
type LogReporter struct {
	log *zap.Logger
}

// NewLogReporter returns a Reporter backed by l. A nil logger discards output.
func NewLogReporter(l *zap.Logger) *LogReporter {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogReporter{log: l}
}

func (r *LogReporter) Warn(w Warning) {
	r.log.Warn("recovered data quality issue",
		zap.String("dataset", w.Dataset),
		zap.String("kind", string(w.Kind)),
		zap.Int("count", w.Count),
	)
}

func (r *LogReporter) Done(stage string, rows int) {
	r.log.Info("stage complete", zap.String("stage", stage), zap.Int("rows", rows))
}

// Reporters fans out to every non-nil reporter in order.
func Reporters(rs ...Reporter) Reporter {
	out := make(multiReporter, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

type multiReporter []Reporter

func (m multiReporter) Warn(w Warning) {
	for _, r := range m {
		r.Warn(w)
	}
}

func (m multiReporter) Done(stage string, rows int) {
	for _, r := range m {
		r.Done(stage, rows)
	}
}

// tally accumulates a Report for a single TransformAll call.
type tally struct {
	mu     sync.Mutex
	report Report
}

func (t *tally) Warn(w Warning) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch w.Kind {
	case WarnMissingCriticalFields:
		t.report.DroppedMissingFields += w.Count
	case WarnMissingCustomerID:
		t.report.FilledCustomerIDs += w.Count
	case WarnInvalidUnitPrice:
		t.report.RepairedPrices += w.Count
	case WarnDuplicateCustomerID:
		t.report.DuplicateCustomers += w.Count
	}
}

func (t *tally) Done(string, int) {}

func (t *tally) snapshot() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.report
}

// warn sends w to r when the count is positive.
func warn(r Reporter, kind WarningKind, dataset string, count int) {
	if count > 0 {
		r.Warn(Warning{Kind: kind, Dataset: dataset, Count: count})
	}
}
