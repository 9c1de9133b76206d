// Package mysql implements a MySQL-backed storage.Repository with
// go-sql-driver/mysql and sqlx. Loads use one multi-row INSERT per batch.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"salesetl/internal/storage/mysql/ddl"
	"salesetl/pkg/records"
)

// maxPlaceholders stays under MySQL's 65535 prepared-statement parameter cap.
const maxPlaceholders = 60000

// Config holds MySQL repository configuration.
type Config struct {
	// DSN uses the go-sql-driver format: user:pass@tcp(host:3306)/db
	DSN string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db *sqlx.DB
}

// NewRepository opens a pool and returns a Close function for cleanup.
// ParseTime is forced on so DATE and DATETIME columns scan as time.Time.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	mc.ParseTime = true
	if mc.Loc == nil {
		mc.Loc = time.UTC
	}

	db, err := sqlx.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	return &Repository{db: db}, func() { _ = db.Close() }, nil
}

// CopyFrom inserts rows into table using multi-row INSERT statements inside
// one transaction.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	var total int64
	for _, chunk := range chunkRows(rows, max(1, maxPlaceholders/len(columns))) {
		q, args, err := buildInsert(table, columns, chunk)
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: insert into %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}

func chunkRows(rows [][]any, size int) [][][]any {
	var out [][][]any
	for len(rows) > size {
		out = append(out, rows[:size])
		rows = rows[size:]
	}
	return append(out, rows)
}

// buildInsert renders INSERT INTO t (a, b) VALUES (?, ?), (?, ?) and the
// flattened argument list.
func buildInsert(table string, columns []string, rows [][]any) (string, []any, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = ddl.QuoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", ddl.Dialect.QuoteFQN(table), strings.Join(quoted, ", "))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mysql: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
		args = append(args, row...)
	}
	return sb.String(), args, nil
}

// Exec executes a statement that returns no rows.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// Query runs sqlText inside a READ ONLY transaction and collects the result.
// The transaction is always rolled back.
func (r *Repository) Query(ctx context.Context, sqlText string) (*records.Set, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("mysql: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryxContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("mysql: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("mysql: columns: %w", err)
	}
	out := records.New(cols...)
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("mysql: scan: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		if err := out.Append(vals...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: rows: %w", err)
	}
	return out, nil
}

// Tables lists base tables in the connection's database, sorted.
func (r *Repository) Tables(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.SelectContext(ctx, &names, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("mysql: list tables: %w", err)
	}
	return names, nil
}
