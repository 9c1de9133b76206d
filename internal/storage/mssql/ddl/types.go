// Package ddl contains the SQL Server dialect for the generic ddl package.
package ddl

import (
	"strings"

	gddl "salesetl/internal/ddl"
)

// Dialect renders SQL Server DDL with [bracketed] identifiers.
var Dialect = gddl.Dialect{
	Name:       "mssql ddl",
	QuoteIdent: QuoteIdent,
}

// QuoteIdent brackets a SQL Server identifier, escaping ].
func QuoteIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// MapType maps a logical type into a SQL Server column type. Text falls back
// to NVARCHAR(MAX).
func MapType(t gddl.LogicalType) string {
	switch t {
	case gddl.TypeInt:
		return "BIGINT"
	case gddl.TypeFloat:
		return "FLOAT"
	case gddl.TypeBool:
		return "BIT"
	case gddl.TypeDate:
		return "DATE"
	case gddl.TypeTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}
