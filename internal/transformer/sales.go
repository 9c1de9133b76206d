package transformer

import (
	"errors"
	"sort"

	"salesetl/internal/transformer/builtin"
	"salesetl/pkg/records"
)

// SalesCleaner validates and repairs raw sales rows.
type SalesCleaner struct {
	rules    QualityRules
	reporter Reporter
}

// NewSalesCleaner returns a SalesCleaner enforcing rules. A nil reporter
// discards warnings.
func NewSalesCleaner(rules QualityRules, reporter Reporter) *SalesCleaner {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &SalesCleaner{rules: rules, reporter: reporter}
}

// Clean returns a cleaned copy of raw. The steps run in a fixed order:
//
//  1. drop rows missing order_id, date or product
//  2. fill missing customer_id with UNKNOWN
//  3. replace unit_price below MinPrice with the median of the current column
//  4. parse date
//  5. compute total_amount = quantity * unit_price
//
// The median in step 3 is taken over the column before replacement, so the
// invalid prices being repaired are part of it.
func (c *SalesCleaner) Clean(raw *records.Set) (*records.Set, error) {
	if err := requireColumns(raw, DatasetSales,
		ColOrderID, ColDate, ColCustomerID, ColProduct, ColQuantity, ColUnitPrice,
	); err != nil {
		return nil, err
	}

	out, dropped := builtin.Require{Fields: []string{ColOrderID, ColDate, ColProduct}}.Apply(raw)
	warn(c.reporter, WarnMissingCriticalFields, DatasetSales, dropped)

	filled := builtin.FillMissing{Field: ColCustomerID, Value: UnknownCustomerID}.Apply(out)
	warn(c.reporter, WarnMissingCustomerID, DatasetSales, filled)

	fixed, err := c.repairPrices(out)
	if err != nil {
		return nil, err
	}
	warn(c.reporter, WarnInvalidUnitPrice, DatasetSales, fixed)

	if err := parseDates(out, DatasetSales, ColDate); err != nil {
		return nil, err
	}

	if err := computeTotals(out); err != nil {
		return nil, err
	}

	c.reporter.Done("clean_sales", out.Len())
	return out, nil
}

// repairPrices normalizes unit_price to float64 and replaces values below
// MinPrice, and missing values, with the median of the column as it stood
// before any replacement. It returns the number of rows repaired.
func (c *SalesCleaner) repairPrices(s *records.Set) (int, error) {
	prices := make([]float64, 0, s.Len())
	invalid := make([]int, 0)
	for r := 0; r < s.Len(); r++ {
		v := s.Value(r, ColUnitPrice)
		if v == nil {
			invalid = append(invalid, r)
			continue
		}
		p, ok := records.Float(v)
		if !ok {
			return 0, &StructuralError{
				Kind:    KindInvalidNumber,
				Dataset: DatasetSales,
				Column:  ColUnitPrice,
				Row:     r,
				Value:   records.String(v),
			}
		}
		s.Put(r, ColUnitPrice, p)
		prices = append(prices, p)
		if p < c.rules.MinPrice {
			invalid = append(invalid, r)
		}
	}
	if len(invalid) == 0 {
		return 0, nil
	}
	if len(prices) == 0 {
		return 0, &StructuralError{Kind: KindNoPriceBaseline, Dataset: DatasetSales, Column: ColUnitPrice, Row: -1}
	}

	m := median(prices)
	for _, r := range invalid {
		s.Put(r, ColUnitPrice, m)
	}
	return len(invalid), nil
}

// computeTotals adds total_amount. Rows without a quantity get a nil total.
func computeTotals(s *records.Set) error {
	s.AddColumn(ColTotalAmount)
	for r := 0; r < s.Len(); r++ {
		qv := s.Value(r, ColQuantity)
		if qv == nil {
			continue
		}
		q, ok := records.Float(qv)
		if !ok {
			return &StructuralError{
				Kind:    KindInvalidNumber,
				Dataset: DatasetSales,
				Column:  ColQuantity,
				Row:     r,
				Value:   records.String(qv),
			}
		}
		p, _ := records.Float(s.Value(r, ColUnitPrice))
		s.Put(r, ColTotalAmount, q*p)
	}
	return nil
}

// parseDates converts col to time.Time, turning a parse failure into a
// StructuralError.
func parseDates(s *records.Set, dataset, col string) error {
	err := builtin.ParseDates{Field: col}.Apply(s)
	if err == nil {
		return nil
	}
	var pe *builtin.ParseError
	if errors.As(err, &pe) {
		return &StructuralError{
			Kind:    KindUnparseableDate,
			Dataset: dataset,
			Column:  pe.Field,
			Row:     pe.Row,
			Value:   pe.Value,
		}
	}
	return &StructuralError{Kind: KindMissingColumn, Dataset: dataset, Column: col, Row: -1, Err: err}
}

// median returns the median of xs without modifying it. xs must be non-empty.
func median(xs []float64) float64 {
	s := make([]float64, len(xs))
	copy(s, xs)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
