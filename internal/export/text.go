package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"salesetl/pkg/records"
)

// WriteTable prints s as aligned text columns with a header and a rule
// under it. Missing values print as NULL.
func WriteTable(w io.Writer, s *records.Set) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	cols := s.Columns()
	fmt.Fprintln(tw, strings.Join(cols, "\t"))

	rule := make([]string, len(cols))
	for i, c := range cols {
		rule[i] = strings.Repeat("-", max(len(c), 3))
	}
	fmt.Fprintln(tw, strings.Join(rule, "\t"))

	cells := make([]string, len(cols))
	for _, row := range s.Rows() {
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = records.String(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
