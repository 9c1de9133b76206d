// Package ddl contains the Postgres dialect for the generic ddl package.
package ddl

import (
	"strings"

	gddl "salesetl/internal/ddl"
)

// Dialect renders Postgres DDL with double-quoted identifiers.
var Dialect = gddl.Dialect{
	Name:       "postgres ddl",
	QuoteIdent: QuoteIdent,
}

// QuoteIdent quotes a single identifier segment for Postgres, e.g.:
//
//	QuoteIdent(`region`)     => `"region"`
//	QuoteIdent(`weird"name`) => `"weird""name"`
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// MapType maps a logical type into a Postgres SQL type.
//
//	int        -> BIGINT
//	float      -> DOUBLE PRECISION
//	bool       -> BOOLEAN
//	date       -> DATE
//	timestamp  -> TIMESTAMP
//	everything else -> TEXT
func MapType(t gddl.LogicalType) string {
	switch t {
	case gddl.TypeInt:
		return "BIGINT"
	case gddl.TypeFloat:
		return "DOUBLE PRECISION"
	case gddl.TypeBool:
		return "BOOLEAN"
	case gddl.TypeDate:
		return "DATE"
	case gddl.TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
