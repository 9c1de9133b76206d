// Package ddl contains the MySQL dialect for the generic ddl package.
package ddl

import (
	"strings"

	gddl "salesetl/internal/ddl"
)

// Dialect renders MySQL DDL with `backtick` identifiers.
var Dialect = gddl.Dialect{
	Name:       "mysql ddl",
	QuoteIdent: QuoteIdent,
}

// QuoteIdent wraps id in backticks, doubling embedded backticks.
func QuoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// MapType maps a logical type into a MySQL column type.
func MapType(t gddl.LogicalType) string {
	switch t {
	case gddl.TypeInt:
		return "BIGINT"
	case gddl.TypeFloat:
		return "DOUBLE"
	case gddl.TypeBool:
		return "BOOLEAN"
	case gddl.TypeDate:
		return "DATE"
	case gddl.TypeTimestamp:
		return "DATETIME"
	default:
		return "TEXT"
	}
}
