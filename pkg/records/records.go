// Package records defines the in-memory tabular container shared by every
// pipeline stage.
//
// A Set holds an ordered list of named columns and rows of positional values
// aligned to those columns. Values are generic scalars:
//
//	nil        missing value
//	string     text
//	int64      integer
//	float64    decimal
//	bool       boolean
//	time.Time  date / timestamp
//
// A Set has exactly one owner at a time. Stages that need to change data call
// Clone (or Filter) first and mutate the copy they own; the input a stage was
// given is never written to.
package records

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is a single row keyed by column name. It is a convenience view used
// for JSON rendering; the Set itself stores positional rows.
type Record map[string]any

// Set is an ordered collection of uniformly-shaped rows with named columns.
type Set struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New returns an empty Set with the given columns. Duplicate column names
// are ignored after the first occurrence.
func New(columns ...string) *Set {
	s := &Set{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		s.AddColumn(c)
	}
	return s
}

// Columns returns a copy of the column names in order.
func (s *Set) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Len returns the number of rows.
func (s *Set) Len() int { return len(s.rows) }

// Has reports whether col exists.
func (s *Set) Has(col string) bool {
	_, ok := s.index[col]
	return ok
}

// Index returns the position of col, or -1 when absent.
func (s *Set) Index(col string) int {
	if i, ok := s.index[col]; ok {
		return i
	}
	return -1
}

// AddColumn appends col (filled with nil for existing rows) and returns its
// index. If col already exists its current index is returned unchanged.
func (s *Set) AddColumn(col string) int {
	if i, ok := s.index[col]; ok {
		return i
	}
	s.columns = append(s.columns, col)
	i := len(s.columns) - 1
	s.index[col] = i
	for r := range s.rows {
		s.rows[r] = append(s.rows[r], nil)
	}
	return i
}

// Append adds a row. The number of values must equal the number of columns.
func (s *Set) Append(vals ...any) error {
	if len(vals) != len(s.columns) {
		return fmt.Errorf("records: row has %d values, want %d", len(vals), len(s.columns))
	}
	row := make([]any, len(vals))
	copy(row, vals)
	s.rows = append(s.rows, row)
	return nil
}

// Value returns the value at (row, col). Unknown columns yield nil.
func (s *Set) Value(row int, col string) any {
	i, ok := s.index[col]
	if !ok {
		return nil
	}
	return s.rows[row][i]
}

// Put stores v at (row, col). It panics on an unknown column, which is a
// programming error rather than a data problem.
func (s *Set) Put(row int, col string, v any) {
	i, ok := s.index[col]
	if !ok {
		panic(fmt.Sprintf("records: unknown column %q", col))
	}
	s.rows[row][i] = v
}

// Column returns a copy of all values in col, or nil if col is absent.
func (s *Set) Column(col string) []any {
	i, ok := s.index[col]
	if !ok {
		return nil
	}
	out := make([]any, len(s.rows))
	for r, row := range s.rows {
		out[r] = row[i]
	}
	return out
}

// Rows exposes the positional rows aligned to Columns. Callers must treat the
// result as read-only.
func (s *Set) Rows() [][]any { return s.rows }

// Record returns row i as a column-keyed map.
func (s *Set) Record(i int) Record {
	rec := make(Record, len(s.columns))
	for c, name := range s.columns {
		rec[name] = s.rows[i][c]
	}
	return rec
}

// Clone returns a deep copy whose rows can be mutated independently.
func (s *Set) Clone() *Set {
	out := New(s.columns...)
	out.rows = make([][]any, len(s.rows))
	for r, row := range s.rows {
		cp := make([]any, len(row))
		copy(cp, row)
		out.rows[r] = cp
	}
	return out
}

// Filter returns a new Set holding copies of the rows for which keep returns
// true, in original order.
func (s *Set) Filter(keep func(row int) bool) *Set {
	out := New(s.columns...)
	for r, row := range s.rows {
		if !keep(r) {
			continue
		}
		cp := make([]any, len(row))
		copy(cp, row)
		out.rows = append(out.rows, cp)
	}
	return out
}

// IsMissing reports whether v counts as an absent value: nil or a string
// that is empty after trimming whitespace.
func IsMissing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

// Float converts numeric scalars to float64. ok is false for nil and
// non-numeric values.
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	}
	return 0, false
}

// Int converts integral scalars to int64. Floats with a fractional part are
// rejected.
func Int(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		if t == float64(int64(t)) {
			return int64(t), true
		}
	}
	return 0, false
}

// String renders a scalar the way it is written to text outputs (CSV
// snapshots, map keys). Dates without a clock component render as
// YYYY-MM-DD.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
