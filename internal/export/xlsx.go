// Package export renders transform output into spreadsheet reports.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"salesetl/pkg/records"
)

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

// WriteXLSX writes one worksheet per set, named after its key and ordered by
// name. The first row of every sheet holds the bold column headers. Missing
// values are left as empty cells.
func WriteXLSX(w io.Writer, sheets map[string]*records.Set) error {
	if len(sheets) == 0 {
		return fmt.Errorf("xlsx: nothing to write")
	}
	names := make([]string, 0, len(sheets))
	for name := range sheets {
		names = append(names, name)
	}
	sort.Strings(names)

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}

	for i, name := range names {
		sheet := name
		if len(sheet) > maxSheetName {
			sheet = sheet[:maxSheetName]
		}
		if i == 0 {
			// Reuse the default sheet so the workbook has no empty tab.
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("xlsx: rename sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("xlsx: new sheet %s: %w", sheet, err)
		}
		if err := writeSheet(f, sheet, sheets[name], bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, s *records.Set, headerStyle int) error {
	cols := s.Columns()
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("xlsx: %s header style: %w", sheet, err)
	}

	for r, row := range s.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		vals := make([]any, len(row))
		for i, v := range row {
			if v == nil {
				vals[i] = ""
				continue
			}
			vals[i] = v
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("xlsx: %s row %d: %w", sheet, r+1, err)
		}
	}

	if len(cols) > 0 {
		last, err := excelize.ColumnNumberToName(len(cols))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
			return fmt.Errorf("xlsx: %s widths: %w", sheet, err)
		}
	}
	return nil
}
