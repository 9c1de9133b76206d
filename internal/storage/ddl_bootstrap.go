package storage

import (
	"context"
	"fmt"
	"sync"

	"salesetl/internal/ddl"
	"salesetl/pkg/records"
)

// DDLBootstrapper drops table if it exists and creates it with columns
// inferred from set, using the backend's dialect. Backends register one per
// storage kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, table string, set *records.Set) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// ReplaceTable recreates table for set using the bootstrapper registered for
// kind. Callers stay backend-agnostic.
func ReplaceTable(ctx context.Context, kind string, repo Repository, table string, set *records.Set) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, table, set)
}

// DialectBootstrapper builds the common DDLBootstrapper: DROP TABLE IF EXISTS
// followed by CREATE TABLE rendered with d and mapType.
func DialectBootstrapper(d ddl.Dialect, mapType ddl.TypeMapper) DDLBootstrapper {
	return func(ctx context.Context, repo Repository, table string, set *records.Set) error {
		td, err := ddl.FromSet(table, set, mapType)
		if err != nil {
			return fmt.Errorf("infer table definition: %w", err)
		}
		drop, err := d.DropTableSQL(table)
		if err != nil {
			return err
		}
		create, err := d.CreateTableSQL(td)
		if err != nil {
			return err
		}
		if err := repo.Exec(ctx, drop); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
		if err := repo.Exec(ctx, create); err != nil {
			return fmt.Errorf("create %s: %w", table, err)
		}
		return nil
	}
}
