// Package storage contains the warehouse contract shared by every backend,
// the backend registry, and a generic batched loader.
//
// Backends live in subpackages (sqlite, postgres, mssql, mysql) and register
// themselves from init; import internal/storage/all to enable all of them.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"salesetl/pkg/records"
)

// Repository is a connection to one warehouse.
type Repository interface {
	// Exec runs a statement that returns no rows (typically DDL).
	Exec(ctx context.Context, sql string) error
	// CopyFrom bulk-inserts rows aligned to columns into table using the
	// backend's fastest primitive and returns the number of rows written.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	// Query runs sql read-only and returns the full result. Statements that
	// write are refused by the backend or rolled back.
	Query(ctx context.Context, sql string) (*records.Set, error)
	// Tables lists the user tables visible to the connection, sorted.
	Tables(ctx context.Context) ([]string, error)
	Close()
}

// Config selects a backend and how to reach it.
type Config struct {
	Kind string
	DSN  string
	// ReadOnly asks the backend to refuse writes on every connection. Only
	// sqlite enforces it at open time; the other backends rely on Query.
	ReadOnly bool
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind, replacing any previous
// registration.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
