// This adapter wires the MSSQL backend into the storage-agnostic factory.
package mssql

import (
	"context"

	"salesetl/internal/storage"
	msddl "salesetl/internal/storage/mssql/ddl"
)

// Kind is the storage.kind value for this backend.
const Kind = "mssql"

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL(Kind, storage.DialectBootstrapper(msddl.Dialect, msddl.MapType))
}

// wrappedRepo adapts *mssql.Repository to storage.Repository by attaching the
// close function returned by NewRepository.
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
