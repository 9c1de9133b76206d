package etl

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"salesetl/internal/config"
	"salesetl/internal/datasource/file"
	"salesetl/internal/metrics"
	csvparser "salesetl/internal/parser/csv"
	"salesetl/internal/storage"
	"salesetl/internal/transformer"
)

// Step names used for logs and metrics.
const (
	StepExtract   = "extract"
	StepTransform = "transform"
	StepLoad      = "load"
	StepExport    = "export"
)

var (
	// newRepositoryFn opens the warehouse; tests replace it with a fake.
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return storage.New(ctx, cfg)
	}

	// newRunID provides a test seam for deterministic run ids.
	newRunID = func() string { return uuid.NewString() }

	clockNowFn = time.Now
)

// Summary describes one completed run.
type Summary struct {
	RunID     string                   `json:"run_id"`
	Job       string                   `json:"job"`
	StartedAt time.Time                `json:"started_at"`
	Elapsed   time.Duration            `json:"elapsed_ns"`
	Steps     map[string]time.Duration `json:"steps_ns"`

	ExtractedSales     int `json:"extracted_sales"`
	ExtractedCustomers int `json:"extracted_customers"`
	EnrichedRows       int `json:"enriched_rows"`

	// EnrichedFingerprint is the xxh3 fingerprint of the enriched set in hex.
	// Runs over the same inputs and rules report the same value.
	EnrichedFingerprint string `json:"enriched_fingerprint"`

	// Tables maps warehouse table name to rows loaded.
	Tables  map[string]int64   `json:"tables"`
	Report  transformer.Report `json:"report"`
	Outputs []string           `json:"outputs"`
}

// Run executes extract, transform and load for cfg. Nothing is written to
// the warehouse or the output directory when extract or transform fails.
// Structural transform errors are returned unwrapped.
func Run(ctx context.Context, cfg config.Pipeline, log *zap.Logger) (*Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	rules, err := qualityRules(cfg)
	if err != nil {
		return nil, err
	}
	comma, err := parserComma(cfg.Parser.Comma)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		RunID:     newRunID(),
		Job:       cfg.Job,
		StartedAt: clockNowFn(),
		Steps:     make(map[string]time.Duration, 4),
	}
	log = log.With(zap.String("job", cfg.Job), zap.String("run_id", sum.RunID))
	log.Info("run started",
		zap.String("raw_data", cfg.Paths.RawData),
		zap.String("warehouse_kind", cfg.Warehouse.Kind),
	)

	step := func(name string, fn func() error) error {
		start := clockNowFn()
		err := fn()
		d := clockNowFn().Sub(start)
		sum.Steps[name] = d
		metrics.RecordStep(cfg.Job, name, err, d)
		if err != nil {
			log.Error("step failed", zap.String("step", name), zap.Duration("elapsed", d), zap.Error(err))
			return err
		}
		log.Info("step done", zap.String("step", name), zap.Duration("elapsed", d.Truncate(time.Millisecond)))
		return nil
	}

	// Extract
	var raw transformer.Raw
	if err := step(StepExtract, func() error {
		ex := NewExtractor(
			file.Join(cfg.Paths.RawData, cfg.Files.Sales),
			file.Join(cfg.Paths.RawData, cfg.Files.Customers),
			csvparser.NewParser(csvparser.Options{Comma: comma, TrimSpace: cfg.Parser.TrimSpace}),
			log,
		)
		var err error
		raw, err = ex.Extract(ctx)
		return err
	}); err != nil {
		return sum, err
	}
	sum.ExtractedSales = raw.Sales.Len()
	sum.ExtractedCustomers = raw.Customers.Len()
	metrics.RecordRow(cfg.Job, "extracted_"+transformer.DatasetSales, int64(sum.ExtractedSales))
	metrics.RecordRow(cfg.Job, "extracted_"+transformer.DatasetCustomers, int64(sum.ExtractedCustomers))

	// Transform
	var res *transformer.Result
	if err := step(StepTransform, func() error {
		p := transformer.NewPipeline(rules,
			transformer.WithReporter(transformer.Reporters(
				transformer.NewLogReporter(log),
				metricsReporter{job: cfg.Job},
			)),
			transformer.WithParallelClean(cfg.Runtime.ParallelClean),
		)
		var err error
		res, err = p.TransformAll(raw)
		return err
	}); err != nil {
		return sum, err
	}
	sum.EnrichedRows = res.Enriched.Len()
	sum.EnrichedFingerprint = fmt.Sprintf("%016x", res.Enriched.Fingerprint())
	sum.Report = res.Report

	// Load
	if err := step(StepLoad, func() error {
		repo, err := newRepositoryFn(ctx, storage.Config{Kind: cfg.Warehouse.Kind, DSN: cfg.WarehouseDSN()})
		if err != nil {
			return fmt.Errorf("open warehouse: %w", err)
		}
		defer repo.Close()

		ld := NewLoader(repo, cfg.Warehouse.Kind, cfg.Warehouse.FactTable, cfg.Warehouse.BatchSize,
			WithLoaderLogger(log),
			WithBatchHook(func(int64) { metrics.RecordBatches(cfg.Job, 1) }),
		)
		sum.Tables, err = ld.Load(ctx, res)
		return err
	}); err != nil {
		return sum, err
	}
	metrics.RecordRow(cfg.Job, "loaded", sum.Tables[cfg.Warehouse.FactTable])

	// Export
	if err := step(StepExport, func() error {
		snap := file.Join(cfg.Paths.ProcessedData, cfg.Exports.CSVSnapshot)
		if err := WriteSnapshot(ctx, snap, res.Enriched, comma); err != nil {
			return err
		}
		sum.Outputs = append(sum.Outputs, snap.Path())

		if cfg.Exports.XLSXReport == "" {
			return nil
		}
		rep := file.Join(cfg.Paths.ProcessedData, cfg.Exports.XLSXReport)
		if err := WriteReport(ctx, rep, res.Aggregations); err != nil {
			return err
		}
		sum.Outputs = append(sum.Outputs, rep.Path())
		return nil
	}); err != nil {
		return sum, err
	}

	sum.Elapsed = clockNowFn().Sub(sum.StartedAt)
	log.Info("run finished",
		zap.Duration("elapsed", sum.Elapsed.Truncate(time.Millisecond)),
		zap.Int("enriched_rows", sum.EnrichedRows),
		zap.String("enriched_fingerprint", sum.EnrichedFingerprint),
		zap.Any("report", sum.Report),
	)
	return sum, nil
}

func qualityRules(cfg config.Pipeline) (transformer.QualityRules, error) {
	if cfg.QualityRules.MinPrice == nil {
		return transformer.QualityRules{}, transformer.MissingConfig("quality_rules.min_price")
	}
	return transformer.QualityRules{MinPrice: *cfg.QualityRules.MinPrice}, nil
}

func parserComma(s string) (rune, error) {
	if s == "" {
		return ',', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("parser.comma=%q must be a single character", s)
	}
	return r, nil
}

// TopProductsSQL ranks products by revenue in factTable.
func TopProductsSQL(factTable string, limit int) string {
	return fmt.Sprintf(`SELECT product, SUM(total_amount) AS revenue, COUNT(order_id) AS orders
FROM %s
GROUP BY product
ORDER BY revenue DESC, product
LIMIT %d`, factTable, limit)
}

// SalesByRegionSQL reads the region aggregation.
func SalesByRegionSQL() string {
	return "SELECT * FROM " + AggregateTable(transformer.AggSalesByRegion) + " ORDER BY total_amount DESC"
}
