package ddl

import (
	"fmt"
	"time"

	"salesetl/pkg/records"
)

// InferType returns the narrowest LogicalType that holds every non-nil value
// in vals. Integers mixed with floats widen to float; any other mix, and a
// column with no values at all, is text. Times with no clock component are
// dates.
func InferType(vals []any) LogicalType {
	var (
		typ  LogicalType
		seen bool
	)
	for _, v := range vals {
		var t LogicalType
		switch x := v.(type) {
		case nil:
			continue
		case int64, int:
			t = TypeInt
		case float64:
			t = TypeFloat
		case bool:
			t = TypeBool
		case time.Time:
			t = TypeDate
			if x.Hour() != 0 || x.Minute() != 0 || x.Second() != 0 || x.Nanosecond() != 0 {
				t = TypeTimestamp
			}
		default:
			return TypeText
		}
		if !seen {
			typ, seen = t, true
			continue
		}
		typ = widen(typ, t)
		if typ == TypeText {
			return TypeText
		}
	}
	if !seen {
		return TypeText
	}
	return typ
}

func widen(a, b LogicalType) LogicalType {
	switch {
	case a == b:
		return a
	case (a == TypeInt && b == TypeFloat) || (a == TypeFloat && b == TypeInt):
		return TypeFloat
	case (a == TypeDate && b == TypeTimestamp) || (a == TypeTimestamp && b == TypeDate):
		return TypeTimestamp
	}
	return TypeText
}

// FromSet derives a TableDef for table from the columns and values of s.
// Every column is nullable; map translates the inferred logical types.
func FromSet(table string, s *records.Set, mapType TypeMapper) (TableDef, error) {
	if table == "" {
		return TableDef{}, fmt.Errorf("ddl: missing table")
	}
	if mapType == nil {
		return TableDef{}, fmt.Errorf("ddl: nil type mapper")
	}
	cols := s.Columns()
	if len(cols) == 0 {
		return TableDef{}, fmt.Errorf("ddl: %s has no columns", table)
	}
	defs := make([]ColumnDef, 0, len(cols))
	for _, c := range cols {
		defs = append(defs, ColumnDef{
			Name:     c,
			SQLType:  mapType(InferType(s.Column(c))),
			Nullable: true,
		})
	}
	return TableDef{FQN: table, Columns: defs}, nil
}
