// This adapter wires the Postgres backend into the storage-agnostic factory
// by registering a constructor at init time, together with a DDL bootstrapper
// so callers can replace tables based only on storage.kind.
package postgres

import (
	"context"

	"salesetl/internal/storage"
	pgddl "salesetl/internal/storage/postgres/ddl"
)

// Kind is the storage.kind value for this backend.
const Kind = "postgres"

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo implements storage.Repository by delegating to the concrete
// *postgres.Repository while providing a Close method that calls the close
// function returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Ensure wrappedRepo satisfies storage.Repository at compile time.
var _ storage.Repository = (*wrappedRepo)(nil)

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// init registers the "postgres" backend with the storage factory.
//
// Typical usage:
//
//	repo, err := storage.New(ctx, storage.Config{Kind: "postgres", DSN: dsn})
//	defer repo.Close()
//	err = storage.ReplaceTable(ctx, "postgres", repo, "fact_sales", set)
func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL(Kind, storage.DialectBootstrapper(pgddl.Dialect, pgddl.MapType))
}
