package transformer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"salesetl/pkg/records"
)

var salesCols = []string{
	ColOrderID, ColDate, ColCustomerID, ColProduct, ColQuantity, ColUnitPrice, ColRegion, ColStatus,
}

var customerCols = []string{
	ColCustomerID, ColName, ColEmail, ColPhone, ColSignupDate, ColCustomerType,
}

func mkSet(t *testing.T, cols []string, rows ...[]any) *records.Set {
	t.Helper()
	s := records.New(cols...)
	for _, r := range rows {
		require.NoError(t, s.Append(r...))
	}
	return s
}

// rawSales mirrors the sample generator: one blank customer_id and one
// negative price. Prices sort to -10, 20, 25, 30, 40 so the median is 25.
func rawSales(t *testing.T) *records.Set {
	t.Helper()
	return mkSet(t, salesCols,
		[]any{"ORD000001", "2024-01-01", "", "Mouse", int64(2), -10.0, "North", "Completed"},
		[]any{"ORD000002", "2024-01-01", "CUST0001", "Laptop", int64(1), 40.0, "South", "Pending"},
		[]any{"ORD000003", "2024-01-02", "CUST0002", "Mouse", int64(3), 20.0, "North", "Completed"},
		[]any{"ORD000004", "2024-01-02", "CUST0003", "Keyboard", int64(1), 30.0, "East", "Cancelled"},
		[]any{"ORD000005", "2024-01-03", "CUST0999", "Monitor", int64(2), 25.0, "West", "Completed"},
	)
}

func rawCustomers(t *testing.T) *records.Set {
	t.Helper()
	return mkSet(t, customerCols,
		[]any{"CUST0001", "Customer 1", "c1@example.com", "+1-555-0000001", "2023-02-01", "Premium"},
		[]any{"CUST0002", "Customer 2", "c2@example.com", "+1-555-0000002", "2023-03-01", "Basic"},
		[]any{"CUST0001", "Customer 1 (dup)", "dup@example.com", "+1-555-0000009", "2023-04-01", "Basic"},
		[]any{"CUST0003", "Customer 3", "c3@example.com", "+1-555-0000003", "2023-05-01", "Standard"},
	)
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// recorder captures everything sent to a Reporter.
type recorder struct {
	mu       sync.Mutex
	warnings []Warning
	stages   map[string]int
}

func (r *recorder) Warn(w Warning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, w)
}

func (r *recorder) Done(stage string, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stages == nil {
		r.stages = map[string]int{}
	}
	r.stages[stage] = rows
}

func (r *recorder) count(kind WarningKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, w := range r.warnings {
		if w.Kind == kind {
			n += w.Count
		}
	}
	return n
}
