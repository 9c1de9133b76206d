package etl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/datasource/file"
	csvparser "salesetl/internal/parser/csv"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(stringSource(salesCSV), stringSource(customersCSV), csvparser.NewParser(csvparser.Options{}), nil)
	raw, err := ex.Extract(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, raw.Sales.Len())
	assert.Equal(t, 4, raw.Customers.Len())
	assert.Nil(t, raw.Sales.Value(0, "customer_id"), "blank cell is missing")
	assert.Equal(t, int64(2), raw.Sales.Value(0, "quantity"))
	assert.Equal(t, -10.0, raw.Sales.Value(0, "unit_price"))
	assert.Equal(t, "2024-01-01", raw.Sales.Value(0, "date"), "dates stay text")
}

func TestExtractor_MissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sales.csv"), salesCSV)

	ex := NewExtractor(
		file.Join(dir, "sales.csv"),
		file.Join(dir, "customers.csv"),
		csvparser.NewParser(csvparser.Options{}),
		nil,
	)
	_, err := ex.Extract(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract customers")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtractor_ParseError(t *testing.T) {
	t.Parallel()

	ragged := "order_id,date\nORD1,2024-01-01,extra\n"
	ex := NewExtractor(stringSource(ragged), stringSource(customersCSV), csvparser.NewParser(csvparser.Options{}), nil)
	_, err := ex.Extract(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract sales")
}

func TestExtractor_Canceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "s.csv"), salesCSV)
	writeFile(t, filepath.Join(dir, "c.csv"), customersCSV)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := NewExtractor(file.Join(dir, "s.csv"), file.Join(dir, "c.csv"), csvparser.NewParser(csvparser.Options{}), nil)
	_, err := ex.Extract(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
