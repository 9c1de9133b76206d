// Package config defines the configuration model for the sales ETL job.
//
// A run is configured by a single YAML file (configs/config.yaml by default)
// whose shape mirrors the Pipeline struct below. Values are resolved in this
// order, later sources winning:
//
//  1. the YAML file
//  2. a .env file, if present (it only seeds variables not already set)
//  3. SALESETL_* environment variables, e.g. SALESETL_WAREHOUSE_KIND or
//     SALESETL_QUALITY_RULES_MIN_PRICE
//  4. built-in defaults for anything still unset
//
// Loading never decides whether a configuration is usable; ValidatePipeline
// does that and reports every problem at once.
//
// Example (trimmed):
//
//	job: sales_etl
//	paths:
//	  raw_data: data/raw
//	  processed_data: data/processed
//	  warehouse: data/warehouse/sales.db
//	files:
//	  sales: sales_data.csv
//	  customers: customer_data.csv
//	warehouse:
//	  kind: sqlite
//	  fact_table: fact_sales
//	quality_rules:
//	  min_price: 0.01
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "SALESETL"

// Defaults applied by Load when a value is left unset.
const (
	DefaultJob         = "sales_etl"
	DefaultKind        = "sqlite"
	DefaultFactTable   = "fact_sales"
	DefaultBatchSize   = 1000
	DefaultComma       = ","
	DefaultCSVSnapshot = "enriched_sales.csv"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultMetrics     = "none"
)

// Pipeline is the top-level configuration object.
type Pipeline struct {
	// Job names the run for logs and metrics labels.
	Job string `yaml:"job" envconfig:"JOB"`

	Paths        Paths        `yaml:"paths" envconfig:"PATHS"`
	Files        Files        `yaml:"files" envconfig:"FILES"`
	Warehouse    Warehouse    `yaml:"warehouse" envconfig:"WAREHOUSE"`
	QualityRules QualityRules `yaml:"quality_rules" envconfig:"QUALITY_RULES"`
	Parser       Parser       `yaml:"parser" envconfig:"PARSER"`
	Exports      Exports      `yaml:"exports" envconfig:"EXPORTS"`
	Metrics      Metrics      `yaml:"metrics" envconfig:"METRICS"`
	Logging      Logging      `yaml:"logging" envconfig:"LOGGING"`
	Runtime      Runtime      `yaml:"runtime" envconfig:"RUNTIME"`
	Web          Web          `yaml:"web" envconfig:"WEB"`
}

// Paths locates the input directory, the output directory and the default
// file-backed warehouse.
type Paths struct {
	RawData       string `yaml:"raw_data" envconfig:"RAW_DATA" validate:"required"`
	ProcessedData string `yaml:"processed_data" envconfig:"PROCESSED_DATA" validate:"required"`
	Warehouse     string `yaml:"warehouse" envconfig:"WAREHOUSE"`
}

// Files names the input CSVs inside Paths.RawData.
type Files struct {
	Sales     string `yaml:"sales" envconfig:"SALES" validate:"required"`
	Customers string `yaml:"customers" envconfig:"CUSTOMERS" validate:"required"`
}

// Warehouse selects and configures the storage backend.
type Warehouse struct {
	// Kind is one of sqlite, postgres, mssql, mysql.
	Kind string `yaml:"kind" envconfig:"KIND" validate:"required,oneof=sqlite postgres mssql mysql"`
	// DSN is the backend connection string. For sqlite it defaults to
	// Paths.Warehouse.
	DSN       string `yaml:"dsn" envconfig:"DSN"`
	FactTable string `yaml:"fact_table" envconfig:"FACT_TABLE" validate:"required"`
	BatchSize int    `yaml:"batch_size" envconfig:"BATCH_SIZE" validate:"gte=0"`
}

// QualityRules holds the data quality thresholds. MinPrice is a pointer so
// that an absent key can be told apart from an explicit zero.
type QualityRules struct {
	MinPrice *float64 `yaml:"min_price" envconfig:"MIN_PRICE"`
}

// Parser configures the CSV reader.
type Parser struct {
	Comma     string `yaml:"comma" envconfig:"COMMA"`
	TrimSpace bool   `yaml:"trim_space" envconfig:"TRIM_SPACE"`
}

// Exports lists the file outputs written under Paths.ProcessedData. An empty
// XLSXReport disables the workbook.
type Exports struct {
	CSVSnapshot string `yaml:"csv_snapshot" envconfig:"CSV_SNAPSHOT"`
	XLSXReport  string `yaml:"xlsx_report" envconfig:"XLSX_REPORT"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	Backend        string `yaml:"backend" envconfig:"BACKEND" validate:"oneof=none prometheus datadog"`
	PushgatewayURL string `yaml:"pushgateway_url" envconfig:"PUSHGATEWAY_URL"`
	DatadogAddr    string `yaml:"datadog_addr" envconfig:"DATADOG_ADDR"`
}

// Logging configures the zap logger.
type Logging struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json console"`
}

// Runtime controls concurrency.
type Runtime struct {
	// ParallelClean runs the sales and customer cleaners concurrently.
	ParallelClean bool `yaml:"parallel_clean" envconfig:"PARALLEL_CLEAN"`
}

// Web configures the read-only query server.
type Web struct {
	Addr string `yaml:"addr" envconfig:"ADDR"`
	// MaxRows caps result sets returned over HTTP; 0 means no cap.
	MaxRows int `yaml:"max_rows" envconfig:"MAX_ROWS" validate:"gte=0"`
}

// WarehouseDSN returns the configured DSN, falling back to Paths.Warehouse
// for the sqlite backend.
func (p Pipeline) WarehouseDSN() string {
	if p.Warehouse.DSN == "" && p.Warehouse.Kind == "sqlite" {
		return p.Paths.Warehouse
	}
	return p.Warehouse.DSN
}

// Load reads the YAML file at path, applies environment overrides and fills
// defaults. envFiles are loaded with godotenv before the environment is
// consulted; when none are given ".env" is tried and silently skipped if it
// does not exist.
func Load(path string, envFiles ...string) (*Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	p, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}
	if err := envconfig.Process(EnvPrefix, p); err != nil {
		return nil, fmt.Errorf("config: env overrides: %w", err)
	}

	p.ApplyDefaults()
	return p, nil
}

// Decode parses YAML into a Pipeline without consulting the environment or
// applying defaults.
func Decode(b []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &p, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		err := godotenv.Load(".env")
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("config: load env files: %w", err)
	}
	return nil
}

// ApplyDefaults fills zero values with the package defaults. Quality rules
// are never defaulted.
func (p *Pipeline) ApplyDefaults() {
	if p.Job == "" {
		p.Job = DefaultJob
	}
	if p.Warehouse.Kind == "" {
		p.Warehouse.Kind = DefaultKind
	}
	if p.Warehouse.FactTable == "" {
		p.Warehouse.FactTable = DefaultFactTable
	}
	if p.Warehouse.BatchSize == 0 {
		p.Warehouse.BatchSize = DefaultBatchSize
	}
	if p.Parser.Comma == "" {
		p.Parser.Comma = DefaultComma
	}
	if p.Exports.CSVSnapshot == "" {
		p.Exports.CSVSnapshot = DefaultCSVSnapshot
	}
	if p.Logging.Level == "" {
		p.Logging.Level = DefaultLogLevel
	}
	if p.Logging.Format == "" {
		p.Logging.Format = DefaultLogFormat
	}
	if p.Metrics.Backend == "" {
		p.Metrics.Backend = DefaultMetrics
	}
	if p.Web.Addr == "" {
		p.Web.Addr = ":8080"
	}
}
