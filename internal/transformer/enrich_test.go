package transformer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnricher_LeftJoinWithDefaults(t *testing.T) {
	t.Parallel()

	sales, err := NewSalesCleaner(QualityRules{MinPrice: 0.01}, nil).Clean(rawSales(t))
	require.NoError(t, err)
	customers, err := NewCustomerCleaner(nil).Clean(rawCustomers(t))
	require.NoError(t, err)

	rec := &recorder{}
	out, err := NewEnricher(rec).Enrich(sales, customers)
	require.NoError(t, err)

	require.Equal(t, sales.Len(), out.Len(), "left join preserves row count")
	assert.Equal(t, append(sales.Columns(), ColName, ColCustomerType), out.Columns())

	// UNKNOWN sentinel
	assert.Equal(t, UnknownCustomerName, out.Value(0, ColName))
	assert.Equal(t, DefaultCustomerType, out.Value(0, ColCustomerType))
	// matched
	assert.Equal(t, "Customer 1", out.Value(1, ColName))
	assert.Equal(t, "Premium", out.Value(1, ColCustomerType))
	assert.Equal(t, "Basic", out.Value(2, ColCustomerType))
	// id with no customer row
	assert.Equal(t, "CUST0999", out.Value(4, ColCustomerID))
	assert.Equal(t, UnknownCustomerName, out.Value(4, ColName))
	assert.Equal(t, DefaultCustomerType, out.Value(4, ColCustomerType))

	// inputs untouched
	assert.False(t, sales.Has(ColName))
	assert.Equal(t, sales.Len(), rec.stages["enrich"])
}

func TestEnricher_FillsEmptyMatchedAttributes(t *testing.T) {
	t.Parallel()

	sales := mkSet(t, []string{ColOrderID, ColCustomerID}, []any{"O1", "C1"})
	customers := mkSet(t, []string{ColCustomerID, ColName, ColCustomerType}, []any{"C1", nil, ""})

	out, err := NewEnricher(nil).Enrich(sales, customers)
	require.NoError(t, err)
	assert.Equal(t, UnknownCustomerName, out.Value(0, ColName))
	assert.Equal(t, DefaultCustomerType, out.Value(0, ColCustomerType))
}

func TestEnricher_NumericAndTextIDsMatch(t *testing.T) {
	t.Parallel()

	sales := mkSet(t, []string{ColOrderID, ColCustomerID}, []any{"O1", "1001"})
	customers := mkSet(t, []string{ColCustomerID, ColName, ColCustomerType}, []any{int64(1001), "Ada", "Premium"})

	out, err := NewEnricher(nil).Enrich(sales, customers)
	require.NoError(t, err)
	assert.Equal(t, "Ada", out.Value(0, ColName))
}

func TestEnricher_MissingCustomerColumns(t *testing.T) {
	t.Parallel()

	sales := mkSet(t, []string{ColOrderID, ColCustomerID})
	customers := mkSet(t, []string{ColCustomerID})

	_, err := NewEnricher(nil).Enrich(sales, customers)
	var se *StructuralError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindMissingColumn, se.Kind)
	assert.Equal(t, ColName, se.Column)
}
