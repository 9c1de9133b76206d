package builtin

import "salesetl/pkg/records"

// FillMissing replaces nil or blank values in Field with Value.
type FillMissing struct {
	Field string
	Value any
}

// Apply rewrites s in place and returns how many values were filled. A Set
// without Field is left unchanged.
func (f FillMissing) Apply(s *records.Set) int {
	if !s.Has(f.Field) {
		return 0
	}
	filled := 0
	for r := 0; r < s.Len(); r++ {
		if records.IsMissing(s.Value(r, f.Field)) {
			s.Put(r, f.Field, f.Value)
			filled++
		}
	}
	return filled
}
