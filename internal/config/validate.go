package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a problem worth surfacing that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the YAML document (e.g. "warehouse.kind",
// "quality_rules.min_price"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains at least one SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate p. Struct-tag rules run first, followed by cross-field checks.
//
//	p, err := config.Load("configs/config.yaml")
//	if err != nil { ... }
//	for _, iss := range config.ValidatePipeline(*p) {
//	    fmt.Println(iss)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics for the run",
		})
	}
	issues = append(issues, validateTags(p)...)
	issues = append(issues, validateQualityRules(p.QualityRules)...)
	issues = append(issues, validateWarehouse(p)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateExports(p.Exports)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

var tagValidator = newTagValidator()

func newTagValidator() *validator.Validate {
	v := validator.New()
	// Report YAML key names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateTags runs the validate struct tags and converts each failure into
// an error Issue.
func validateTags(p Pipeline) []Issue {
	err := tagValidator.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Severity: SeverityError, Path: "", Message: err.Error()}}
	}

	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     yamlPath(fe.Namespace()),
			Message:  tagMessage(fe),
		})
	}
	return issues
}

// yamlPath strips the leading struct name from a validator namespace such as
// "Pipeline.warehouse.kind".
func yamlPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func tagMessage(fe validator.FieldError) string {
	field := yamlPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must not be empty", field)
	case "oneof":
		return fmt.Sprintf("%s=%v must be one of: %s", field, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", field, fe.Tag())
	}
}

func validateQualityRules(q QualityRules) []Issue {
	if q.MinPrice == nil {
		return []Issue{{
			Severity: SeverityError,
			Path:     "quality_rules.min_price",
			Message:  "quality_rules.min_price is required; the sales cleaner cannot run without it",
		}}
	}
	if *q.MinPrice <= 0 {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "quality_rules.min_price",
			Message:  fmt.Sprintf("min_price=%v lets zero or negative prices through unrepaired", *q.MinPrice),
		}}
	}
	return nil
}

func validateWarehouse(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.WarehouseDSN()) == "" {
		msg := "warehouse.dsn must not be empty"
		if p.Warehouse.Kind == "sqlite" {
			msg = "sqlite warehouse needs warehouse.dsn or paths.warehouse"
		}
		issues = append(issues, Issue{Severity: SeverityError, Path: "warehouse.dsn", Message: msg})
	}
	if t := p.Warehouse.FactTable; t != "" && strings.HasPrefix(t, "agg_") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.fact_table",
			Message:  fmt.Sprintf("fact_table=%q collides with the agg_ prefix used for aggregation tables", t),
		})
	}
	if p.Warehouse.BatchSize == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "warehouse.batch_size",
			Message:  "batch_size=0; the whole table is sent in a single batch",
		})
	}
	return issues
}

func validateParser(ps Parser) []Issue {
	if ps.Comma == "" {
		return nil
	}
	r, size := utf8.DecodeRuneInString(ps.Comma)
	if size != len(ps.Comma) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return []Issue{{
			Severity: SeverityError,
			Path:     "parser.comma",
			Message:  fmt.Sprintf("comma=%q must be a single delimiter character other than quote or newline", ps.Comma),
		}}
	}
	return nil
}

func validateExports(e Exports) []Issue {
	if e.XLSXReport != "" && !strings.EqualFold(filepath.Ext(e.XLSXReport), ".xlsx") {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "exports.xlsx_report",
			Message:  fmt.Sprintf("xlsx_report=%q does not end in .xlsx; spreadsheet tools may refuse it", e.XLSXReport),
		}}
	}
	return nil
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "prometheus":
		if m.PushgatewayURL == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "prometheus backend requires pushgateway_url",
			}}
		}
	case "datadog":
		if m.DatadogAddr == "" {
			return []Issue{{
				Severity: SeverityWarning,
				Path:     "metrics.datadog_addr",
				Message:  "datadog_addr not set; DD_AGENT_HOST or 127.0.0.1:8125 will be used",
			}}
		}
	}
	return nil
}
