// Command sampledata writes sample sales and customer CSVs that carry the
// data quality problems the pipeline repairs: blank customer ids on every
// 50th order, a -10.0 unit price on every 100th, and optional duplicate
// customers.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"salesetl/internal/datasource/file"
	"salesetl/internal/etl"
	"salesetl/pkg/records"
)

var (
	products  = []string{"Laptop", "Mouse", "Keyboard", "Monitor", "Webcam", "Headphones", "USB Cable", "Charger"}
	regions   = []string{"North", "South", "East", "West"}
	statuses  = []string{"Completed", "Pending", "Cancelled", "Completed", "Completed"}
	custTypes = []string{"Premium", "Standard", "Basic"}
)

// Options sizes the generated datasets.
type Options struct {
	Sales     int
	Customers int
	// Dupes appends this many customer rows reusing existing ids.
	Dupes int
	Seed  uint64
}

func main() {
	var (
		o      Options
		outDir string
	)
	flag.StringVar(&outDir, "out", "data/raw", "output directory")
	flag.IntVar(&o.Sales, "sales", 1000, "number of sales rows")
	flag.IntVar(&o.Customers, "customers", 100, "number of customers")
	flag.IntVar(&o.Dupes, "dupes", 0, "number of duplicate customer rows to append")
	flag.Uint64Var(&o.Seed, "seed", uint64(time.Now().UnixNano()), "random seed")
	flag.Parse()

	ctx := context.Background()
	sales, customers := Generate(o)

	salesOut := file.Join(outDir, "sales_data.csv")
	if err := etl.WriteSnapshot(ctx, salesOut, sales, ','); err != nil {
		fatalf("write sales: %v", err)
	}
	custOut := file.Join(outDir, "customer_data.csv")
	if err := etl.WriteSnapshot(ctx, custOut, customers, ','); err != nil {
		fatalf("write customers: %v", err)
	}

	fmt.Printf("generated %s (%d records)\n", salesOut.Path(), sales.Len())
	fmt.Printf("generated %s (%d records)\n", custOut.Path(), customers.Len())
}

// Generate builds the sales and customer datasets for o.
func Generate(o Options) (sales, customers *records.Set) {
	rng := rand.New(rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sales = records.New("order_id", "date", "customer_id", "product", "quantity", "unit_price", "region", "status")
	for i := 1; i <= o.Sales; i++ {
		var customerID any = customerCode(1 + rng.IntN(max(o.Customers, 1)))
		price := math.Round((10+rng.Float64()*490)*100) / 100
		if i%50 == 0 {
			customerID = nil
		}
		if i%100 == 0 {
			price = -10.0
		}
		_ = sales.Append(
			fmt.Sprintf("ORD%06d", i),
			start.AddDate(0, 0, rng.IntN(301)),
			customerID,
			pick(rng, products),
			int64(1+rng.IntN(10)),
			price,
			pick(rng, regions),
			pick(rng, statuses),
		)
	}

	signupStart := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	customers = records.New("customer_id", "name", "email", "phone", "signup_date", "customer_type")
	for i := 1; i <= o.Customers; i++ {
		_ = customers.Append(
			customerCode(i),
			fmt.Sprintf("Customer %d", i),
			fmt.Sprintf("customer%d@example.com", i),
			fmt.Sprintf("+1-555-%d", 1000000+rng.IntN(9000000)),
			signupStart.AddDate(0, 0, rng.IntN(366)),
			pick(rng, custTypes),
		)
	}
	for d := 0; d < o.Dupes && o.Customers > 0; d++ {
		i := 1 + rng.IntN(o.Customers)
		_ = customers.Append(
			customerCode(i),
			fmt.Sprintf("Customer %d (dup)", i),
			fmt.Sprintf("customer%d.dup@example.com", i),
			fmt.Sprintf("+1-555-%d", 1000000+rng.IntN(9000000)),
			signupStart.AddDate(0, 0, rng.IntN(366)),
			pick(rng, custTypes),
		)
	}
	return sales, customers
}

func customerCode(i int) string { return fmt.Sprintf("CUST%04d", i) }

func pick(rng *rand.Rand, xs []string) string { return xs[rng.IntN(len(xs))] }

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
