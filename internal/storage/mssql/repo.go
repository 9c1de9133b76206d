// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API.
package mssql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"salesetl/internal/storage/mssql/ddl"
	"salesetl/pkg/records"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN string
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db *sqlx.DB
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sqlx.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	close := func() { _ = db.Close() }
	return &Repository{db: db}, close, nil
}

// CopyFrom performs a bulk insert into table inside one transaction. Rows are
// written through the TDS bulk-load protocol rather than INSERT statements.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(msFQN(table), mssql.BulkOptions{}, columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mssql: exec: %w", err)
	}
	return nil
}

// Query runs sqlText inside a transaction that is always rolled back, so any
// write it performs is discarded. SQL Server has no read-only transaction mode.
func (r *Repository) Query(ctx context.Context, sqlText string) (*records.Set, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mssql: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryxContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("mssql: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("mssql: columns: %w", err)
	}
	out := records.New(cols...)
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("mssql: scan: %w", err)
		}
		for i, v := range vals {
			vals[i] = normalize(v)
		}
		if err := out.Append(vals...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mssql: rows: %w", err)
	}
	return out, nil
}

// normalize converts driver values outside the records scalar set.
// DECIMAL and MONEY arrive as []byte text.
func normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case int32:
		return int64(t)
	case int16:
		return int64(t)
	case uint8:
		return int64(t)
	case float32:
		return float64(t)
	}
	return v
}

// Tables lists base tables as schema.table, sorted; dbo tables are unqualified.
func (r *Repository) Tables(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.SelectContext(ctx, &names, `
		SELECT CASE WHEN TABLE_SCHEMA = 'dbo' THEN TABLE_NAME
		            ELSE TABLE_SCHEMA + '.' + TABLE_NAME END AS name
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE'
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("mssql: list tables: %w", err)
	}
	return names, nil
}

// msFQN quotes a possibly schema-qualified name like "dbo.fact_sales" to
// "[dbo].[fact_sales]".
func msFQN(name string) string { return ddl.Dialect.QuoteFQN(strings.TrimSpace(name)) }
