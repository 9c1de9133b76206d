// Package csv reads delimited text into a records.Set with per-column type
// inference, and writes a records.Set back out as CSV.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"salesetl/pkg/records"
)

// DefaultNullValues are the cell values read as missing, in addition to the
// empty string.
var DefaultNullValues = []string{"NA", "N/A", "n/a", "NaN", "nan", "NULL", "null", "#N/A", "<NA>"}

// Options configures the CSV parser. All fields are optional.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value before
	// type inference.
	TrimSpace bool

	// HeaderMap renames source headers to canonical column names.
	HeaderMap map[string]string

	// NullValues overrides DefaultNullValues. The empty string is always
	// missing.
	NullValues []string

	// KeepText disables type inference; every present value stays a string.
	KeepText bool
}

// Parser parses CSV input according to Options. It is safe for concurrent
// use.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads a header row and every data row from r.
//
// Each column is typed independently: when every present value parses as an
// integer the column holds int64, otherwise when every present value parses
// as a number it holds float64, otherwise string. Dates are left as text.
// Text is normalized to NFC. A row whose width differs from the header is an
// error carrying the line number.
func (p *Parser) Parse(r io.Reader) (*records.Set, error) {
	cr := csv.NewReader(decodeUTF(r))
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.ReuseRecord = true

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read csv header: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	headers, err := normalizeHeaders(h, p.opt)
	if err != nil {
		return nil, err
	}

	nulls := p.opt.NullValues
	if nulls == nil {
		nulls = DefaultNullValues
	}
	isNull := make(map[string]struct{}, len(nulls)+1)
	isNull[""] = struct{}{}
	for _, n := range nulls {
		isNull[n] = struct{}{}
	}

	var rows [][]any
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		vals := make([]any, len(row))
		for i, v := range row {
			if p.opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			if _, ok := isNull[v]; ok {
				continue
			}
			vals[i] = norm.NFC.String(v)
		}
		rows = append(rows, vals)
	}

	if !p.opt.KeepText {
		for c := range headers {
			inferColumn(rows, c)
		}
	}

	s := records.New(headers...)
	for _, row := range rows {
		if err := s.Append(row...); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Read is shorthand for NewParser(opt).Parse(r).
func Read(r io.Reader, opt Options) (*records.Set, error) {
	return NewParser(opt).Parse(r)
}

type columnKind int

const (
	kindInt columnKind = iota
	kindFloat
	kindText
)

// inferColumn converts column c of rows in place to the narrowest kind that
// every present value fits.
func inferColumn(rows [][]any, c int) {
	kind := kindInt
	for _, row := range rows {
		s, ok := row[c].(string)
		if !ok {
			continue
		}
		if kind == kindInt {
			if _, err := strconv.ParseInt(s, 10, 64); err == nil {
				continue
			}
			kind = kindFloat
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			continue
		}
		kind = kindText
		break
	}
	if kind == kindText {
		return
	}
	for _, row := range rows {
		s, ok := row[c].(string)
		if !ok {
			continue
		}
		if kind == kindInt {
			n, _ := strconv.ParseInt(s, 10, 64)
			row[c] = n
			continue
		}
		f, _ := strconv.ParseFloat(s, 64)
		row[c] = f
	}
}

// normalizeHeaders trims header cells, applies HeaderMap and names blank
// headers unnamed_<i>. Duplicate names are an error.
func normalizeHeaders(h []string, opt Options) ([]string, error) {
	res := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		c := norm.NFC.String(strings.TrimSpace(col))
		if m, ok := opt.HeaderMap[c]; ok {
			c = m
		}
		if c == "" {
			c = fmt.Sprintf("unnamed_%d", i)
		}
		if j, dup := seen[c]; dup {
			return nil, fmt.Errorf("read csv header: column %q appears at positions %d and %d", c, j, i)
		}
		seen[c] = i
		res[i] = c
	}
	return res, nil
}
