package transformer

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"salesetl/pkg/records"
)

// Pipeline runs the transform components in their fixed order:
// clean sales, clean customers, enrich, aggregate.
type Pipeline struct {
	rules    QualityRules
	reporter Reporter
	parallel bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithReporter sets the Reporter every component reports to.
func WithReporter(r Reporter) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.reporter = r
		}
	}
}

// WithParallelClean runs the sales and customer cleaners concurrently. The
// output is identical either way.
func WithParallelClean(on bool) Option {
	return func(p *Pipeline) { p.parallel = on }
}

// NewPipeline returns a Pipeline enforcing rules.
func NewPipeline(rules QualityRules, opts ...Option) *Pipeline {
	p := &Pipeline{rules: rules, reporter: NopReporter{}}
	for _, o := range opts {
		o(p)
	}
	return p
}

// TransformAll cleans, enriches and aggregates raw. It is a pure function of
// its input: the raw Sets are not modified and repeated calls with the same
// input return identical results. The first StructuralError aborts the run
// and is returned unwrapped.
func (p *Pipeline) TransformAll(raw Raw) (*Result, error) {
	if raw.Sales == nil || raw.Customers == nil {
		return nil, fmt.Errorf("transform: sales and customers are required")
	}

	t := &tally{}
	rep := Reporters(p.reporter, t)

	sales := NewSalesCleaner(p.rules, rep)
	customers := NewCustomerCleaner(rep)

	var cleanSales, cleanCustomers *records.Set
	if p.parallel {
		var g errgroup.Group
		g.Go(func() error {
			var err error
			cleanSales, err = sales.Clean(raw.Sales)
			return err
		})
		g.Go(func() error {
			var err error
			cleanCustomers, err = customers.Clean(raw.Customers)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		var err error
		if cleanSales, err = sales.Clean(raw.Sales); err != nil {
			return nil, err
		}
		if cleanCustomers, err = customers.Clean(raw.Customers); err != nil {
			return nil, err
		}
	}

	enriched, err := NewEnricher(rep).Enrich(cleanSales, cleanCustomers)
	if err != nil {
		return nil, err
	}

	aggs, err := NewAggregator(rep).Aggregate(enriched)
	if err != nil {
		return nil, err
	}

	return &Result{Enriched: enriched, Aggregations: aggs, Report: t.snapshot()}, nil
}
