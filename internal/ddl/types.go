package ddl

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, TIMESTAMPTZ)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the fully-qualified table name (FQN) and an ordered list of
// columns. The FQN may be dotted (e.g., "schema.table"); renderers quote each
// segment.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// LogicalType is the backend-neutral type of a column, inferred from the
// values it holds. Backends translate it with their MapType.
type LogicalType string

const (
	TypeInt       LogicalType = "int"
	TypeFloat     LogicalType = "float"
	TypeBool      LogicalType = "bool"
	TypeDate      LogicalType = "date"
	TypeTimestamp LogicalType = "timestamp"
	TypeText      LogicalType = "text"
)

// TypeMapper translates a LogicalType into a dialect column type.
type TypeMapper func(LogicalType) string
