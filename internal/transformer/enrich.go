package transformer

import "salesetl/pkg/records"

// Enricher left-joins cleaned sales to cleaned customers.
type Enricher struct {
	reporter Reporter
}

// NewEnricher returns an Enricher. A nil reporter discards output.
func NewEnricher(reporter Reporter) *Enricher {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Enricher{reporter: reporter}
}

// Enrich joins sales to customers on customer_id and appends the customer's
// name and customer_type. Rows without a match, including the UNKNOWN
// sentinel, get "Unknown Customer" and "Standard"; the defaults are applied
// after the join, so a matched customer with an empty name or type is
// filled the same way.
//
// The result has exactly one row per sales row, in sales order. customers is
// expected to be unique by customer_id; when it is not, the first match wins.
func (e *Enricher) Enrich(sales, customers *records.Set) (*records.Set, error) {
	if err := requireColumns(sales, DatasetSales, ColCustomerID); err != nil {
		return nil, err
	}
	if err := requireColumns(customers, DatasetCustomers, ColCustomerID, ColName, ColCustomerType); err != nil {
		return nil, err
	}

	type attrs struct{ name, ctype any }
	lookup := make(map[string]attrs, customers.Len())
	for r := 0; r < customers.Len(); r++ {
		id := customers.Value(r, ColCustomerID)
		if id == nil {
			continue
		}
		key := records.String(id)
		if _, seen := lookup[key]; seen {
			continue
		}
		lookup[key] = attrs{
			name:  customers.Value(r, ColName),
			ctype: customers.Value(r, ColCustomerType),
		}
	}

	out := sales.Clone()
	out.AddColumn(ColName)
	out.AddColumn(ColCustomerType)
	for r := 0; r < out.Len(); r++ {
		var a attrs
		if id := out.Value(r, ColCustomerID); id != nil {
			a = lookup[records.String(id)]
		}
		if records.IsMissing(a.name) {
			a.name = UnknownCustomerName
		}
		if records.IsMissing(a.ctype) {
			a.ctype = DefaultCustomerType
		}
		out.Put(r, ColName, a.name)
		out.Put(r, ColCustomerType, a.ctype)
	}

	e.reporter.Done("enrich", out.Len())
	return out, nil
}
