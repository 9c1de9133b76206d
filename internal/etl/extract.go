// Package etl wires the extract, transform and load stages of a sales run.
package etl

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"salesetl/internal/datasource"
	"salesetl/internal/parser"
	"salesetl/internal/transformer"
	"salesetl/pkg/records"
)

// Extractor reads the raw sales and customer datasets.
type Extractor struct {
	sales     datasource.Source
	customers datasource.Source
	parser    parser.Parser
	log       *zap.Logger
}

// NewExtractor returns an Extractor that parses both sources with p.
func NewExtractor(sales, customers datasource.Source, p parser.Parser, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{sales: sales, customers: customers, parser: p, log: log}
}

// Extract reads both datasets concurrently. The first failure cancels the
// other read.
func (e *Extractor) Extract(ctx context.Context) (transformer.Raw, error) {
	var raw transformer.Raw
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := e.read(gctx, transformer.DatasetSales, e.sales)
		raw.Sales = s
		return err
	})
	g.Go(func() error {
		s, err := e.read(gctx, transformer.DatasetCustomers, e.customers)
		raw.Customers = s
		return err
	})

	if err := g.Wait(); err != nil {
		return transformer.Raw{}, err
	}
	return raw, nil
}

func (e *Extractor) read(ctx context.Context, dataset string, src datasource.Source) (*records.Set, error) {
	start := time.Now()
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", dataset, err)
	}
	defer rc.Close()

	set, err := e.parser.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", dataset, err)
	}
	e.log.Info("extracted",
		zap.String("dataset", dataset),
		zap.Int("rows", set.Len()),
		zap.Strings("columns", set.Columns()),
		zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)),
	)
	return set, nil
}
