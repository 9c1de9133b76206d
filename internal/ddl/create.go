// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render CREATE TABLE and DROP TABLE statements from that model.
//
// Rendering is parameterized by a Dialect. The zero Dialect is fully generic:
// it does not quote identifiers and emits TableDef.FQN and ColumnDef.Name
// as-is. Backend packages (e.g., internal/storage/postgres) supply a Dialect
// with their identifier quoting and a MapType for logical column types.
//
// ColumnDef.Default is raw SQL; the caller is responsible for its safety and
// dialect correctness.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect carries the backend-specific parts of DDL rendering.
type Dialect struct {
	// Name prefixes error messages (e.g. "sqlite ddl").
	Name string
	// QuoteIdent quotes one identifier segment. Nil emits names verbatim.
	QuoteIdent func(string) string
	// IfNotExists adds IF NOT EXISTS to CREATE TABLE.
	IfNotExists bool
}

func (d Dialect) prefix() string {
	if d.Name == "" {
		return "ddl"
	}
	return d.Name
}

func (d Dialect) ident(s string) string {
	if d.QuoteIdent == nil {
		return s
	}
	return d.QuoteIdent(s)
}

// QuoteFQN quotes each dot-separated segment of fqn, dropping empty ones.
func (d Dialect) QuoteFQN(fqn string) string {
	if d.QuoteIdent == nil {
		return strings.TrimSpace(fqn)
	}
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.QuoteIdent(p))
	}
	return strings.Join(out, ".")
}

// CreateTableSQL renders a CREATE TABLE statement from a TableDef.
//
// Rules:
//
//   - t.FQN must be non-empty.
//
//   - Each column must have a non-empty Name and SQLType.
//
//   - A column is rendered as:
//
//     <Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
//     where NOT NULL is added when Nullable == false.
//
//   - Columns with PrimaryKey == true are collected and rendered as a separate
//     PRIMARY KEY (<col1>, <col2>, ...) clause at the end of the column list.
//
//   - The resulting statement has the form:
//
//     CREATE TABLE [IF NOT EXISTS] <FQN> (
//     <col1-def>,
//     <col2-def>,
//     ...,
//     [PRIMARY KEY (<pk-cols>)]
//     );
func (d Dialect) CreateTableSQL(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", d.prefix())
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", d.prefix())
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", d.prefix(), fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", d.prefix(), name)
		}

		var sb strings.Builder
		sb.WriteString(d.ident(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}

		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}

		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.ident(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	create := "CREATE TABLE "
	if d.IfNotExists {
		create += "IF NOT EXISTS "
	}
	return fmt.Sprintf(
		"%s%s (\n  %s\n);",
		create,
		d.QuoteFQN(fqn),
		strings.Join(cols, ",\n  "),
	), nil
}

// DropTableSQL renders DROP TABLE IF EXISTS for fqn.
func (d Dialect) DropTableSQL(fqn string) (string, error) {
	if strings.TrimSpace(fqn) == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", d.prefix())
	}
	return "DROP TABLE IF EXISTS " + d.QuoteFQN(fqn) + ";", nil
}
