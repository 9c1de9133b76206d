package etl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"salesetl/internal/datasource"
	"salesetl/internal/export"
	csvparser "salesetl/internal/parser/csv"
	"salesetl/internal/storage"
	"salesetl/internal/transformer"
	"salesetl/pkg/records"
)

// AggPrefix prefixes the warehouse table of every aggregation.
const AggPrefix = "agg_"

// AggregateTable returns the warehouse table name for aggregation name.
func AggregateTable(name string) string { return AggPrefix + name }

// Loader writes transform results to the warehouse. Every table is dropped
// and recreated on each load.
type Loader struct {
	repo      storage.Repository
	kind      string
	factTable string
	batchSize int
	log       *zap.Logger
	onBatch   func(rows int64)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the logger used for per-table and per-batch progress.
func WithLoaderLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// WithBatchHook calls fn after every batch written to any table.
func WithBatchHook(fn func(rows int64)) LoaderOption {
	return func(ld *Loader) { ld.onBatch = fn }
}

// NewLoader returns a Loader for repo. kind selects the DDL dialect
// registered with storage.RegisterDDL.
func NewLoader(repo storage.Repository, kind, factTable string, batchSize int, opts ...LoaderOption) *Loader {
	ld := &Loader{
		repo:      repo,
		kind:      kind,
		factTable: factTable,
		batchSize: batchSize,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load writes the enriched set to the fact table and each aggregation to
// its agg_<name> table, in name order. It returns rows written per table.
func (l *Loader) Load(ctx context.Context, res *transformer.Result) (map[string]int64, error) {
	if res == nil || res.Enriched == nil {
		return nil, errors.New("load: no transform result")
	}
	loaded := make(map[string]int64, len(res.Aggregations)+1)

	n, err := l.loadTable(ctx, l.factTable, res.Enriched)
	if err != nil {
		return loaded, err
	}
	loaded[l.factTable] = n

	names := make([]string, 0, len(res.Aggregations))
	for name := range res.Aggregations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		table := AggregateTable(name)
		n, err := l.loadTable(ctx, table, res.Aggregations[name])
		if err != nil {
			return loaded, err
		}
		loaded[table] = n
	}
	return loaded, nil
}

func (l *Loader) loadTable(ctx context.Context, table string, set *records.Set) (int64, error) {
	if err := storage.ReplaceTable(ctx, l.kind, l.repo, table, set); err != nil {
		return 0, fmt.Errorf("load %s: %w", table, err)
	}
	opts := []storage.LoadOption{storage.WithLogger(l.log.With(zap.String("table", table)))}
	if l.onBatch != nil {
		opts = append(opts, storage.WithBatchHook(l.onBatch))
	}
	n, err := storage.LoadSet(ctx, l.repo, table, set, l.batchSize, opts...)
	if err != nil {
		return n, err
	}
	l.log.Info("table loaded", zap.String("table", table), zap.Int64("rows", n))
	return n, nil
}

// Query runs sql against the warehouse and returns the result set.
func (l *Loader) Query(ctx context.Context, sql string) (*records.Set, error) {
	return l.repo.Query(ctx, sql)
}

// Tables lists the warehouse tables.
func (l *Loader) Tables(ctx context.Context) ([]string, error) {
	return l.repo.Tables(ctx)
}

// WriteSnapshot writes set as CSV to sink. Nothing is written when encoding
// fails.
func WriteSnapshot(ctx context.Context, sink datasource.Sink, set *records.Set, comma rune) error {
	var buf bytes.Buffer
	if err := csvparser.WriteSet(&buf, set, comma); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return writeSink(ctx, sink, &buf)
}

// WriteReport writes the aggregations as an XLSX workbook to sink.
func WriteReport(ctx context.Context, sink datasource.Sink, aggs map[string]*records.Set) error {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, aggs); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return writeSink(ctx, sink, &buf)
}

func writeSink(ctx context.Context, sink datasource.Sink, r io.Reader) error {
	w, err := sink.Create(ctx)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		return errors.Join(err, w.Close())
	}
	return w.Close()
}
