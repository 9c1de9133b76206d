// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories and DDL bootstrappers with the
// storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "sqlite"   (salesetl/internal/storage/sqlite), the default warehouse
//   - "postgres" (salesetl/internal/storage/postgres)
//   - "mssql"    (salesetl/internal/storage/mssql)
//   - "mysql"    (salesetl/internal/storage/mysql)
//
// Typical usage (in cmd/etl/main.go or a similar wiring layer):
//
//	import _ "salesetl/internal/storage/all" // enable all built-in backends
//
//	repo, err := storage.New(ctx, storage.Config{
//	    Kind: p.Warehouse.Kind,
//	    DSN:  p.WarehouseDSN(),
//	})
//	if err != nil {
//	    // handle error
//	}
//	defer repo.Close()
//
// A binary that needs only a subset of backends can import those packages
// directly instead.
package all

import (
	_ "salesetl/internal/storage/mssql"
	_ "salesetl/internal/storage/mysql"
	_ "salesetl/internal/storage/postgres"
	_ "salesetl/internal/storage/sqlite"
)
