package builtin

import (
	"testing"

	"salesetl/pkg/records"
)

// mkSet builds a Set from columns and rows, failing the test on width errors.
func mkSet(t *testing.T, cols []string, rows ...[]any) *records.Set {
	t.Helper()
	s := records.New(cols...)
	for _, r := range rows {
		if err := s.Append(r...); err != nil {
			t.Fatalf("append %v: %v", r, err)
		}
	}
	return s
}

// column returns the values of col as a slice for compact comparisons.
func column(s *records.Set, col string) []any { return s.Column(col) }
