// Package sqlite implements a SQLite-backed storage.Repository on top of
// sqlx and the pure-Go modernc driver. It is the default, file-backed
// warehouse. Loads run as prepared INSERTs inside one transaction per batch;
// SQLite has no bulk-load API like Postgres COPY.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"salesetl/internal/storage/sqlite/ddl"
	"salesetl/pkg/records"
)

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a file path, a "file:" URI, or ":memory:".
	DSN string
	// ReadOnly sets PRAGMA query_only on every pooled connection.
	ReadOnly bool
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db *sqlx.DB
}

// Open opens dsn with the modernc driver. Parent directories of file paths
// are created. In-memory databases are pinned to one connection so every
// statement sees the same database.
func Open(dsn string) (*sqlx.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	memory := dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
	if !memory && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: create %s: %w", dir, err)
			}
		}
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// New wraps an open database.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dsn := cfg.DSN
	if cfg.ReadOnly {
		dsn = readOnlyDSN(dsn)
	}
	db, err := Open(dsn)
	if err != nil {
		return nil, nil, err
	}

	// Fail fast on unusable paths.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return New(db), closeFn, nil
}

// readOnlyDSN appends the query_only pragma, which modernc runs on each new
// connection.
func readOnlyDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=query_only(1)"
}

// CopyFrom inserts rows into table using a single transaction and a prepared
// INSERT statement. Dates are written as ISO-8601 text.
//
// It returns the number of rows inserted. len(row) must equal len(columns)
// for every row.
func (r *Repository) CopyFrom(
	ctx context.Context,
	table string,
	columns []string,
	rows [][]any,
) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = ddl.QuoteIdent(c)
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		ddl.Dialect.QuoteFQN(table),
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PreparexContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	args := make([]any, len(columns))
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		for i, v := range row {
			args[i] = toDriver(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert into %s: %w", table, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

func toDriver(v any) any {
	if t, ok := v.(time.Time); ok {
		return records.String(t)
	}
	return v
}

// Exec executes a statement that returns no rows (typically DDL).
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// Query runs sqlText on a connection switched to query_only inside a
// transaction that is always rolled back, so statements that write (including
// data-modifying CTEs) fail. BLOB and TEXT values are returned as strings.
func (r *Repository) Query(ctx context.Context, sqlText string) (*records.Set, error) {
	conn, err := r.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite: conn: %w", err)
	}
	defer conn.Close()

	// Restore the connection's own setting; read-only DSNs keep query_only on.
	var prev int
	if err := conn.GetContext(ctx, &prev, "PRAGMA query_only"); err != nil {
		return nil, fmt.Errorf("sqlite: query_only: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = 1"); err != nil {
		return nil, fmt.Errorf("sqlite: query_only: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), fmt.Sprintf("PRAGMA query_only = %d", prev))
	}()

	tx, err := conn.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin read-only tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryxContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlite: columns: %w", err)
	}
	out := records.New(cols...)
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
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
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}
	return out, nil
}

// Tables lists user tables, sorted by name.
func (r *Repository) Tables(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.SelectContext(ctx, &names,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list tables: %w", err)
	}
	return names, nil
}

// Schema returns the CREATE statement SQLite stored for table.
func (r *Repository) Schema(ctx context.Context, table string) (string, error) {
	var ddlText string
	err := r.db.GetContext(ctx, &ddlText,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
	if err != nil {
		return "", fmt.Errorf("sqlite: schema %s: %w", table, err)
	}
	return ddlText, nil
}
