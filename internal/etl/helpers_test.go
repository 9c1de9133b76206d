package etl

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"salesetl/internal/config"
	"salesetl/internal/metrics"
)

const salesCSV = `order_id,date,customer_id,product,quantity,unit_price,region,status
ORD000001,2024-01-01,,Mouse,2,-10.0,North,Completed
ORD000002,2024-01-01,CUST0001,Laptop,1,40.0,South,Pending
ORD000003,2024-01-02,CUST0002,Mouse,3,20.0,North,Completed
ORD000004,2024-01-02,CUST0003,Keyboard,1,30.0,East,Cancelled
ORD000005,2024-01-03,CUST0999,Monitor,2,25.0,West,Completed
`

const customersCSV = `customer_id,name,email,phone,signup_date,customer_type
CUST0001,Customer 1,c1@example.com,+1-555-0000001,2023-02-01,Premium
CUST0002,Customer 2,c2@example.com,+1-555-0000002,2023-03-01,Basic
CUST0001,Customer 1 (dup),dup@example.com,+1-555-0000009,2023-04-01,Basic
CUST0003,Customer 3,c3@example.com,+1-555-0000003,2023-05-01,Standard
`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// testPipeline lays out raw inputs under a temp dir and returns a config
// pointing at them with a file-backed sqlite warehouse.
func testPipeline(t *testing.T, sales, customers string) config.Pipeline {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "raw", "sales_data.csv"), sales)
	writeFile(t, filepath.Join(dir, "raw", "customer_data.csv"), customers)

	minPrice := 0.01
	p := config.Pipeline{
		Paths: config.Paths{
			RawData:       filepath.Join(dir, "raw"),
			ProcessedData: filepath.Join(dir, "processed"),
			Warehouse:     filepath.Join(dir, "warehouse", "sales.db"),
		},
		Files:        config.Files{Sales: "sales_data.csv", Customers: "customer_data.csv"},
		QualityRules: config.QualityRules{MinPrice: &minPrice},
	}
	p.ApplyDefaults()
	p.Warehouse.BatchSize = 2
	return p
}

// stringSource serves a fixed body.
type stringSource string

func (s stringSource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(s))), nil
}

// fakeMetrics records counters by name.
type fakeMetrics struct {
	mu       sync.Mutex
	counters []counter
	hists    int
}

type counter struct {
	name   string
	delta  float64
	labels metrics.Labels
}

func (f *fakeMetrics) IncCounter(name string, delta float64, labels metrics.Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, counter{name, delta, labels})
}

func (f *fakeMetrics) ObserveHistogram(string, float64, metrics.Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hists++
}

func (f *fakeMetrics) Flush() error { return nil }

// sum adds the deltas of every counter named name whose labels include want.
func (f *fakeMetrics) sum(name string, want metrics.Labels) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total float64
	for _, c := range f.counters {
		if c.name != name {
			continue
		}
		match := true
		for k, v := range want {
			if c.labels[k] != v {
				match = false
				break
			}
		}
		if match {
			total += c.delta
		}
	}
	return total
}

// useMetrics installs a fresh fake backend for the duration of t.
func useMetrics(t *testing.T) *fakeMetrics {
	t.Helper()
	f := &fakeMetrics{}
	metrics.SetBackend(f)
	t.Cleanup(func() { metrics.SetBackend(&fakeMetrics{}) })
	return f
}
