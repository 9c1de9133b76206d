// Package builtin contains simple, reusable transforms over records.Set used
// by the cleaning stages.
//
// Transforms that drop rows return a new Set and leave the input untouched.
// Transforms that rewrite values in place (FillMissing, ParseDates) expect the
// caller to own the Set it passes in, typically a Clone.
package builtin

import "salesetl/pkg/records"

// Require removes any row missing a value for at least one of Fields.
// A value is missing when it is nil or a blank string.
type Require struct {
	Fields []string
}

// Apply returns a new Set containing only rows that have every required
// field present, plus the number of rows dropped. Unknown fields count as
// missing for every row.
func (r Require) Apply(in *records.Set) (*records.Set, int) {
	idx := make([]int, len(r.Fields))
	for i, f := range r.Fields {
		idx[i] = in.Index(f)
	}
	rows := in.Rows()
	out := in.Filter(func(row int) bool {
		for _, c := range idx {
			if c < 0 || records.IsMissing(rows[row][c]) {
				return false
			}
		}
		return true
	})
	return out, in.Len() - out.Len()
}
