// Package transformer implements the Transform stage of the sales ETL job:
// cleaning raw sales and customer records, enriching sales with customer
// attributes, and computing the summary aggregations handed to Load.
//
// Every component treats its input records.Set as immutable and returns a
// new Set it no longer touches. Recoverable data quality problems are
// reported to an injected Reporter and counted; structural problems are
// returned as *StructuralError and abort the run.
package transformer

import "salesetl/pkg/records"

// Column names shared with Extract and Load. They are part of the warehouse
// schema and must not change.
const (
	ColOrderID      = "order_id"
	ColDate         = "date"
	ColCustomerID   = "customer_id"
	ColProduct      = "product"
	ColQuantity     = "quantity"
	ColUnitPrice    = "unit_price"
	ColRegion       = "region"
	ColStatus       = "status"
	ColTotalAmount  = "total_amount"
	ColName         = "name"
	ColEmail        = "email"
	ColPhone        = "phone"
	ColSignupDate   = "signup_date"
	ColCustomerType = "customer_type"
	ColDateOnly     = "date_only"
	ColOrderCount   = "order_count"
)

// Sentinel values substituted for missing data.
const (
	UnknownCustomerID   = "UNKNOWN"
	UnknownCustomerName = "Unknown Customer"
	DefaultCustomerType = "Standard"
)

// Dataset labels used in reports and errors.
const (
	DatasetSales     = "sales"
	DatasetCustomers = "customers"
)

// QualityRules holds the thresholds the cleaners enforce.
type QualityRules struct {
	// MinPrice is the smallest acceptable unit_price. Rows below it are
	// repaired with the median price.
	MinPrice float64
}

// Raw is the Extract output consumed by TransformAll.
type Raw struct {
	Sales     *records.Set
	Customers *records.Set
}

// Result is the Transform output handed to Load.
type Result struct {
	// Enriched is the sales fact data joined with customer attributes.
	Enriched *records.Set

	// Aggregations maps aggregation name to its grouped Set.
	Aggregations map[string]*records.Set

	// Report carries the data quality counts observed during the run.
	Report Report
}
