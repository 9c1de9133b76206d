package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"salesetl/pkg/records"
)

// WriteSet writes s to w as CSV with a header row. Missing values are empty
// cells. Floats always carry a decimal point so that a later Parse restores
// them as float64.
func WriteSet(w io.Writer, s *records.Set, comma rune) error {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}
	if err := cw.Write(s.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	cells := make([]string, len(s.Columns()))
	for r, row := range s.Rows() {
		for i, v := range row {
			cells[i] = cellText(v)
		}
		if err := cw.Write(cells); err != nil {
			return fmt.Errorf("write csv row %d: %w", r, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellText(v any) string {
	f, ok := v.(float64)
	if !ok {
		return records.String(v)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
