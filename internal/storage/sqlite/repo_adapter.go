package sqlite

// Registration of the SQLite backend with the storage factory. Callers reach
// it through storage.New without importing this package directly.

import (
	"context"

	"salesetl/internal/storage"
	sqliteddl "salesetl/internal/storage/sqlite/ddl"
)

// Kind is the storage.kind value for this backend.
const Kind = "sqlite"

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo adapts *sqlite.Repository to the storage.Repository interface,
// adding a Close method that calls the cleanup function returned by
// NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// Ensure wrappedRepo satisfies the interface at compile time.
var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, ReadOnly: cfg.ReadOnly})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL(Kind, storage.DialectBootstrapper(sqliteddl.Dialect, sqliteddl.MapType))
}
