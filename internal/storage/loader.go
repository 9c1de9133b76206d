package storage

// This file implements a generic, batched loader that drains rows from a
// channel and invokes a bulk-insert function (CopyFn) per batch. Backends
// implement CopyFn with their most efficient primitive (Postgres COPY, SQL
// Server bulk copy, multi-row INSERT).

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"salesetl/pkg/records"
)

// CopyFn inserts rows aligned to columns and returns the number of rows
// reported as inserted. It should cancel promptly when ctx is done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadOption configures LoadBatches and LoadSet.
type LoadOption func(*loadOpts)

type loadOpts struct {
	log     *zap.Logger
	onBatch func(rows int64)
}

// WithLogger logs progress after every flush.
func WithLogger(l *zap.Logger) LoadOption {
	return func(o *loadOpts) {
		if l != nil {
			o.log = l
		}
	}
}

// WithBatchHook calls fn with the row count of every successful batch.
func WithBatchHook(fn func(rows int64)) LoadOption {
	return func(o *loadOpts) { o.onBatch = fn }
}

// LoadBatches drains rows from in, groups them into batches of batchSize and
// calls copyFn for each non-empty batch. It returns the total number of rows
// reported by copyFn and the first error encountered. On cancellation it
// returns (total, ctx.Err()).
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
	opts ...LoadOption,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}
	o := loadOpts{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		total       int64
		batches     int64
		batch       = make([][]any, 0, batchSize)
		start       = time.Now()
		lastFlushTS = start
		lastTotal   int64
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n

		// Reuse allocated slice; keep capacity to avoid churn.
		batch = batch[:0]

		if err != nil {
			o.log.Error("copy failed", zap.Int64("inserted", n), zap.Int64("total", total), zap.Error(err))
			return err
		}

		batches++
		if o.onBatch != nil {
			o.onBatch(n)
		}
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(total-lastTotal) / sinceLast.Seconds()
		}
		o.log.Debug("batch flushed",
			zap.Int64("batch", batches),
			zap.Float64("rps", rps),
			zap.Int64("inserted", n),
			zap.Int64("total_inserted", total),
			zap.Duration("elapsed", now.Sub(start).Truncate(time.Millisecond)),
		)
		lastFlushTS = now
		lastTotal = total
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}

// LoadSet streams every row of set into table through repo.CopyFrom in
// batches. A batchSize <= 0 sends the whole set as one batch.
func LoadSet(
	ctx context.Context,
	repo Repository,
	table string,
	set *records.Set,
	batchSize int,
	opts ...LoadOption,
) (int64, error) {
	if batchSize <= 0 {
		batchSize = max(set.Len(), 1)
	}
	columns := set.Columns()

	g, gctx := errgroup.WithContext(ctx)
	in := make(chan []any, batchSize)

	g.Go(func() error {
		defer close(in)
		for _, row := range set.Rows() {
			select {
			case in <- row:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var total int64
	g.Go(func() error {
		var err error
		total, err = LoadBatches(gctx, columns, in, batchSize,
			func(ctx context.Context, cols []string, rows [][]any) (int64, error) {
				return repo.CopyFrom(ctx, table, cols, rows)
			}, opts...)
		return err
	})

	if err := g.Wait(); err != nil {
		return total, fmt.Errorf("load %s: %w", table, err)
	}
	return total, nil
}
