package builtin

import (
	"fmt"
	"strings"
	"time"

	"salesetl/pkg/records"
)

// DefaultDateLayouts are tried in order when ParseDates has no Layouts.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
}

// ParseError reports a value that could not be converted.
type ParseError struct {
	Field string
	Row   int
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("field %q row %d: cannot parse %q as date", e.Field, e.Row, e.Value)
}

// ParseDates converts the string values of Field into time.Time using the
// first layout that matches. Values that are already time.Time and nil
// values are left as they are.
type ParseDates struct {
	Field   string
	Layouts []string

	// Location used for layouts without a zone; UTC when nil.
	Location *time.Location
}

// Apply rewrites s in place. It stops at the first value no layout accepts
// and returns a *ParseError for it.
func (p ParseDates) Apply(s *records.Set) error {
	if !s.Has(p.Field) {
		return fmt.Errorf("parse dates: unknown field %q", p.Field)
	}
	layouts := p.Layouts
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}

	for r := 0; r < s.Len(); r++ {
		v := s.Value(r, p.Field)
		switch t := v.(type) {
		case nil, time.Time:
			continue
		case string:
			if strings.TrimSpace(t) == "" {
				s.Put(r, p.Field, nil)
				continue
			}
			parsed, ok := parseWithLayouts(strings.TrimSpace(t), layouts, loc)
			if !ok {
				return &ParseError{Field: p.Field, Row: r, Value: t}
			}
			s.Put(r, p.Field, parsed)
		default:
			return &ParseError{Field: p.Field, Row: r, Value: records.String(v)}
		}
	}
	return nil
}

func parseWithLayouts(s string, layouts []string, loc *time.Location) (time.Time, bool) {
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
