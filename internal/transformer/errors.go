package transformer

import (
	"errors"
	"fmt"
	"strings"

	"salesetl/pkg/records"
)

// StructuralKind classifies fatal transform failures.
type StructuralKind string

const (
	// KindUnparseableDate: a date value survived the presence filter but
	// matches no accepted layout.
	KindUnparseableDate StructuralKind = "unparseable_date"
	// KindMissingConfig: a required configuration key is absent.
	KindMissingConfig StructuralKind = "missing_config"
	// KindMissingColumn: an input Set lacks a column the stage reads.
	KindMissingColumn StructuralKind = "missing_column"
	// KindInvalidNumber: a numeric column holds a non-numeric value.
	KindInvalidNumber StructuralKind = "invalid_number"
	// KindNoPriceBaseline: prices need repair but no price exists to take a
	// median from.
	KindNoPriceBaseline StructuralKind = "no_price_baseline"
)

// StructuralError is a fatal transform error. It aborts the whole run and
// reaches the orchestrator unmodified.
type StructuralError struct {
	Kind    StructuralKind
	Dataset string
	Column  string
	Row     int // 0-based row in the stage input; -1 when not row specific
	Value   string
	Err     error
}

func (e *StructuralError) Error() string {
	var b strings.Builder
	b.WriteString("structural error: ")
	b.WriteString(string(e.Kind))
	if e.Dataset != "" {
		fmt.Fprintf(&b, " dataset=%s", e.Dataset)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column=%s", e.Column)
	}
	if e.Row >= 0 {
		fmt.Fprintf(&b, " row=%d", e.Row)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " value=%q", e.Value)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *StructuralError) Unwrap() error { return e.Err }

// IsStructural reports whether err is or wraps a *StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// MissingConfig returns the StructuralError for an absent configuration key.
func MissingConfig(key string) *StructuralError {
	return &StructuralError{Kind: KindMissingConfig, Column: key, Row: -1}
}

// requireColumns checks that s has every column in cols.
func requireColumns(s *records.Set, dataset string, cols ...string) error {
	for _, c := range cols {
		if !s.Has(c) {
			return &StructuralError{Kind: KindMissingColumn, Dataset: dataset, Column: c, Row: -1}
		}
	}
	return nil
}
