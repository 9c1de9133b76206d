// Package ddl contains the SQLite dialect for the generic ddl package.
//
// SQLite is dynamically typed, so MapType picks column affinities rather than
// strict types. Dates and timestamps are stored as ISO-8601 TEXT.
package ddl

import (
	"strings"

	gddl "salesetl/internal/ddl"
)

// Dialect renders SQLite DDL with double-quoted identifiers.
var Dialect = gddl.Dialect{
	Name:       "sqlite ddl",
	QuoteIdent: QuoteIdent,
}

// QuoteIdent double-quotes id, escaping embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// MapType maps a logical type to a SQLite column affinity.
//
//   - int        -> INTEGER
//   - bool       -> INTEGER (0/1)
//   - float      -> REAL
//   - date/time  -> TEXT
//   - others     -> TEXT
func MapType(t gddl.LogicalType) string {
	switch t {
	case gddl.TypeInt, gddl.TypeBool:
		return "INTEGER"
	case gddl.TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}
