package transformer

import (
	"salesetl/internal/transformer/builtin"
	"salesetl/pkg/records"
)

// CustomerCleaner deduplicates and normalizes raw customer rows.
type CustomerCleaner struct {
	reporter Reporter
}

// NewCustomerCleaner returns a CustomerCleaner. A nil reporter discards
// warnings.
func NewCustomerCleaner(reporter Reporter) *CustomerCleaner {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &CustomerCleaner{reporter: reporter}
}

// Clean keeps the first occurrence of every customer_id, in original row
// order, and parses signup_date. The input is not modified.
func (c *CustomerCleaner) Clean(raw *records.Set) (*records.Set, error) {
	if err := requireColumns(raw, DatasetCustomers, ColCustomerID, ColSignupDate); err != nil {
		return nil, err
	}

	out, dupes := builtin.DeDup{Keys: []string{ColCustomerID}, Policy: "keep-first"}.Apply(raw)
	warn(c.reporter, WarnDuplicateCustomerID, DatasetCustomers, dupes)

	if err := parseDates(out, DatasetCustomers, ColSignupDate); err != nil {
		return nil, err
	}

	c.reporter.Done("clean_customers", out.Len())
	return out, nil
}
