// Command warehouse-query runs SQL against the sales warehouse and prints
// the results as text tables. Without -sql or -file it prints the top
// products by revenue and the sales by region.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"salesetl/internal/config"
	"salesetl/internal/datasource/file"
	"salesetl/internal/etl"
	"salesetl/internal/export"
	"salesetl/internal/storage"
	_ "salesetl/internal/storage/all"
)

var newRepositoryFn = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	return storage.New(ctx, cfg)
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("warehouse-query", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "configs/config.yaml", "pipeline config YAML path")
	sql := fs.String("sql", "", "single statement to run")
	sqlFile := fs.String("file", "", "file of ';'-separated statements to run")
	limit := fs.Int("top", 5, "number of products in the default report")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	p, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	var stmts []string
	switch {
	case *sql != "":
		stmts = []string{*sql}
	case *sqlFile != "":
		stmts, err = file.ReadStatements(*sqlFile)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	default:
		stmts = []string{
			etl.TopProductsSQL(p.Warehouse.FactTable, *limit),
			etl.SalesByRegionSQL(),
		}
	}

	repo, err := newRepositoryFn(ctx, storage.Config{Kind: p.Warehouse.Kind, DSN: p.WarehouseDSN()})
	if err != nil {
		fmt.Fprintf(stderr, "open warehouse: %v\n", err)
		return 1
	}
	defer repo.Close()

	for i, stmt := range stmts {
		if i > 0 {
			fmt.Fprintln(stdout)
		}
		fmt.Fprintf(stdout, "-- %s\n", stmt)
		set, err := repo.Query(ctx, stmt)
		if err != nil {
			fmt.Fprintf(stderr, "query %d: %v\n", i+1, err)
			return 1
		}
		if err := export.WriteTable(stdout, set); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	return 0
}
