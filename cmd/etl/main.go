package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"salesetl/internal/config"
	"salesetl/internal/etl"
	"salesetl/internal/export"
	"salesetl/internal/logging"
	"salesetl/internal/storage"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "salesetl/internal/storage/all"
)

var (
	// runFn provides a test seam for the pipeline run.
	runFn = etl.Run

	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return storage.New(ctx, cfg)
	}
)

// main is the entry point for the ETL binary. It loads the pipeline config,
// optionally initializes a metrics backend, and executes one batch run.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	cfgPath        string
	envFile        string
	metricsBackend string
	pushGatewayURL string
	datadogAddr    string
	validate       bool
	verbose        bool
	query          bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("etl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.cfgPath, "config", "configs/config.yaml", "pipeline config YAML path")
	fs.StringVar(&o.envFile, "env", "", "env file loaded before SALESETL_* overrides (default .env if present)")
	fs.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: none, prometheus, datadog (overrides config)")
	fs.StringVar(&o.pushGatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides config)")
	fs.StringVar(&o.datadogAddr, "datadog-addr", "", "DogStatsD address (overrides config)")
	fs.BoolVar(&o.validate, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&o.verbose, "v", false, "enable debug logs")
	fs.BoolVar(&o.query, "query", false, "print the top 5 products by revenue after the run")
	return o, fs.Parse(args)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	var envFiles []string
	if o.envFile != "" {
		envFiles = append(envFiles, o.envFile)
	}
	p, err := config.Load(o.cfgPath, envFiles...)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	applyFlagOverrides(p, o)

	issues := config.ValidatePipeline(*p)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(stderr, "configuration is invalid: %s\n", o.cfgPath)
		return 1
	}
	if o.validate {
		fmt.Fprintf(stderr, "configuration is valid: %s\n", o.cfgPath)
		return 0
	}

	log := logging.Must(p.Logging.Level, p.Logging.Format)
	defer func() { _ = log.Sync() }()

	flush := setupMetrics(*p, log)
	defer flush()

	sum, err := runFn(ctx, *p, log)
	if err != nil {
		log.Error("run failed", zap.Error(err))
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sum); err != nil {
		log.Error("write summary", zap.Error(err))
		return 1
	}

	if o.query {
		if err := printTopProducts(ctx, *p, stdout); err != nil {
			log.Error("top products query", zap.Error(err))
			return 1
		}
	}
	return 0
}

func applyFlagOverrides(p *config.Pipeline, o options) {
	if o.metricsBackend != "" {
		p.Metrics.Backend = o.metricsBackend
	}
	if o.pushGatewayURL != "" {
		p.Metrics.PushgatewayURL = o.pushGatewayURL
	}
	if o.datadogAddr != "" {
		p.Metrics.DatadogAddr = o.datadogAddr
	}
	if o.verbose {
		p.Logging.Level = "debug"
	}
}

func printTopProducts(ctx context.Context, p config.Pipeline, w io.Writer) error {
	repo, err := newRepositoryFn(ctx, storage.Config{Kind: p.Warehouse.Kind, DSN: p.WarehouseDSN()})
	if err != nil {
		return err
	}
	defer repo.Close()

	set, err := repo.Query(ctx, etl.TopProductsSQL(p.Warehouse.FactTable, 5))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\nTop 5 products by revenue:")
	return export.WriteTable(w, set)
}
