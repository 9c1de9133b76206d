package bench

import (
	"context"
	"fmt"
	"testing"
	"time"

	"salesetl/internal/storage"
	"salesetl/internal/transformer"
	"salesetl/pkg/records"
)

// BenchmarkEndToEnd exercises the hot path of a run in memory: clean, join
// and aggregate a realistic raw dataset, then batch the enriched rows into
// a fake COPY function.
//
// The goal is to approximate transform and batching throughput without
// involving I/O or actual database drivers.
// Run with:
//
//	go test -run=^$ -bench ^BenchmarkEndToEnd$ -cpuprofile cpu.out -memprofile mem.out -count=1
func BenchmarkEndToEnd(b *testing.B) {
	for _, size := range []int{1_000, 50_000} {
		b.Run(fmt.Sprintf("sales=%d", size), func(b *testing.B) {
			benchRun(b, size, false)
		})
		b.Run(fmt.Sprintf("sales=%d/parallel", size), func(b *testing.B) {
			benchRun(b, size, true)
		})
	}
}

func benchRun(b *testing.B, nSales int, parallel bool) {
	ctx := context.Background()
	sales, customers := rawData(b, nSales, 500)
	p := transformer.NewPipeline(transformer.QualityRules{MinPrice: 0.01}, transformer.WithParallelClean(parallel))

	// Fake copyFn that just reports how many rows it would have inserted.
	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		return int64(len(rows)), nil
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := p.TransformAll(transformer.Raw{Sales: sales, Customers: customers})
		if err != nil {
			b.Fatalf("TransformAll: %v", err)
		}

		in := make(chan []any, 4096)
		go func() {
			defer close(in)
			for _, row := range res.Enriched.Rows() {
				in <- row
			}
		}()
		n, err := storage.LoadBatches(ctx, res.Enriched.Columns(), in, 4096, copyFn)
		if err != nil {
			b.Fatalf("LoadBatches: %v", err)
		}
		if n != int64(res.Enriched.Len()) {
			b.Fatalf("loaded %d rows, want %d", n, res.Enriched.Len())
		}
	}
}

// rawData builds extracted-shape sets: dates as text, every 50th customer id
// blank and every 100th price negative.
func rawData(b *testing.B, nSales, nCustomers int) (*records.Set, *records.Set) {
	b.Helper()
	products := []string{"Laptop", "Mouse", "Keyboard", "Monitor"}
	regions := []string{"North", "South", "East", "West"}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	sales := records.New(
		transformer.ColOrderID, transformer.ColDate, transformer.ColCustomerID, transformer.ColProduct,
		transformer.ColQuantity, transformer.ColUnitPrice, transformer.ColRegion, transformer.ColStatus,
	)
	for i := 1; i <= nSales; i++ {
		var cust any = fmt.Sprintf("CUST%04d", 1+i%nCustomers)
		price := 10 + float64(i%490)
		if i%50 == 0 {
			cust = nil
		}
		if i%100 == 0 {
			price = -10
		}
		if err := sales.Append(
			fmt.Sprintf("ORD%06d", i),
			start.AddDate(0, 0, i%300).Format("2006-01-02"),
			cust,
			products[i%len(products)],
			int64(1+i%10),
			price,
			regions[i%len(regions)],
			"Completed",
		); err != nil {
			b.Fatal(err)
		}
	}

	customers := records.New(
		transformer.ColCustomerID, transformer.ColName, transformer.ColEmail,
		transformer.ColPhone, transformer.ColSignupDate, transformer.ColCustomerType,
	)
	for i := 1; i <= nCustomers; i++ {
		if err := customers.Append(
			fmt.Sprintf("CUST%04d", i),
			fmt.Sprintf("Customer %d", i),
			fmt.Sprintf("customer%d@example.com", i),
			"+1-555-0000000",
			"2023-06-01",
			[]string{"Premium", "Standard", "Basic"}[i%3],
		); err != nil {
			b.Fatal(err)
		}
	}
	return sales, customers
}
