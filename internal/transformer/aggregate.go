package transformer

import (
	"sort"
	"time"

	"salesetl/pkg/records"
)

// Aggregation names. Load persists each one as table agg_<name>.
const (
	AggSalesByRegion       = "sales_by_region"
	AggSalesByProduct      = "sales_by_product"
	AggSalesByCustomerType = "sales_by_customer_type"
	AggDailySales          = "daily_sales"
)

// AggregationNames lists every aggregation Aggregate produces.
var AggregationNames = []string{
	AggSalesByRegion,
	AggSalesByProduct,
	AggSalesByCustomerType,
	AggDailySales,
}

// view describes one grouped summary.
type view struct {
	name         string
	keyColumn    string // output key column
	sourceColumn string // enriched column the key is derived from
	key          func(v any) any
	withQuantity bool
}

var views = []view{
	{name: AggSalesByRegion, keyColumn: ColRegion, sourceColumn: ColRegion, key: identity, withQuantity: true},
	{name: AggSalesByProduct, keyColumn: ColProduct, sourceColumn: ColProduct, key: identity, withQuantity: true},
	{name: AggSalesByCustomerType, keyColumn: ColCustomerType, sourceColumn: ColCustomerType, key: identity, withQuantity: true},
	{name: AggDailySales, keyColumn: ColDateOnly, sourceColumn: ColDate, key: dateOnly, withQuantity: false},
}

// Aggregator computes the summary views over enriched sales.
type Aggregator struct {
	reporter Reporter
}

// NewAggregator returns an Aggregator. A nil reporter discards output.
func NewAggregator(reporter Reporter) *Aggregator {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Aggregator{reporter: reporter}
}

// Aggregate groups enriched sales four ways. Each view sums total_amount
// and counts orders; all but daily_sales also sum quantity. Groups are
// ordered by key ascending with a missing key last, and only observed keys
// produce groups.
func (a *Aggregator) Aggregate(enriched *records.Set) (map[string]*records.Set, error) {
	if err := requireColumns(enriched, DatasetSales,
		ColRegion, ColProduct, ColCustomerType, ColDate, ColQuantity, ColTotalAmount,
	); err != nil {
		return nil, err
	}

	out := make(map[string]*records.Set, len(views))
	groups := 0
	for _, v := range views {
		set, err := groupBy(enriched, v)
		if err != nil {
			return nil, err
		}
		out[v.name] = set
		groups += set.Len()
	}
	a.reporter.Done("aggregate", groups)
	return out, nil
}

type group struct {
	key      any
	total    float64
	qtyInt   int64
	qtyFloat float64
	qtyIsInt bool
	orders   int64
}

func groupBy(s *records.Set, v view) (*records.Set, error) {
	groups := make(map[string]*group)
	nilKey := "\x00nil"

	for r := 0; r < s.Len(); r++ {
		k := v.key(s.Value(r, v.sourceColumn))
		mk := nilKey
		if k != nil {
			mk = "v:" + records.String(k)
		}
		g, ok := groups[mk]
		if !ok {
			g = &group{key: k, qtyIsInt: true}
			groups[mk] = g
		}
		g.orders++
		if t, ok := records.Float(s.Value(r, ColTotalAmount)); ok {
			g.total += t
		}
		switch q := s.Value(r, ColQuantity).(type) {
		case nil:
		case int64:
			g.qtyInt += q
		default:
			f, ok := records.Float(q)
			if !ok {
				return nil, &StructuralError{
					Kind:    KindInvalidNumber,
					Dataset: DatasetSales,
					Column:  ColQuantity,
					Row:     r,
					Value:   records.String(q),
				}
			}
			g.qtyFloat += f
			g.qtyIsInt = false
		}
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool { return lessKey(ordered[i].key, ordered[j].key) })

	cols := []string{v.keyColumn, ColTotalAmount}
	if v.withQuantity {
		cols = append(cols, ColQuantity)
	}
	cols = append(cols, ColOrderCount)

	out := records.New(cols...)
	for _, g := range ordered {
		row := []any{g.key, g.total}
		if v.withQuantity {
			if g.qtyIsInt {
				row = append(row, g.qtyInt)
			} else {
				row = append(row, g.qtyFloat+float64(g.qtyInt))
			}
		}
		row = append(row, g.orders)
		if err := out.Append(row...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func identity(v any) any { return v }

// dateOnly truncates a timestamp to its calendar date.
func dateOnly(v any) any {
	t, ok := v.(time.Time)
	if !ok {
		return v
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// lessKey orders group keys: nil last, times chronologically, numbers
// numerically, everything else by its string form.
func lessKey(a, b any) bool {
	if a == nil || b == nil {
		return a != nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Before(tb)
		}
	}
	if fa, ok := records.Float(a); ok {
		if fb, ok := records.Float(b); ok {
			return fa < fb
		}
	}
	return records.String(a) < records.String(b)
}
