package ddl

import (
	"testing"

	gddl "salesetl/internal/ddl"
)

func TestMapType(t *testing.T) {
	t.Parallel()

	for in, want := range map[gddl.LogicalType]string{
		gddl.TypeInt:       "BIGINT",
		gddl.TypeFloat:     "DOUBLE",
		gddl.TypeBool:      "BOOLEAN",
		gddl.TypeDate:      "DATE",
		gddl.TypeTimestamp: "DATETIME",
		gddl.TypeText:      "TEXT",
	} {
		if got := MapType(in); got != want {
			t.Errorf("MapType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	if got, want := QuoteIdent("od`d"), "`od``d`"; got != want {
		t.Fatalf("QuoteIdent = %q, want %q", got, want)
	}
	if got, want := Dialect.QuoteFQN("sales.fact_sales"), "`sales`.`fact_sales`"; got != want {
		t.Fatalf("QuoteFQN = %q, want %q", got, want)
	}
}
