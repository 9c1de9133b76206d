package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"salesetl/internal/storage"
	"salesetl/pkg/records"
)

/*
Package-level test helpers (TB-aware)
*/

func newRepo(tb testing.TB) *Repository {
	tb.Helper()
	db, err := Open(":memory:")
	if err != nil {
		tb.Fatalf("open sqlite :memory:: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func mustExec(tb testing.TB, r *Repository, sqlStmt string) {
	tb.Helper()
	if err := r.Exec(context.Background(), sqlStmt); err != nil {
		tb.Fatalf("exec %q: %v", sqlStmt, err)
	}
}

func uniqNameFrom(name, suffix string) string {
	// Keep identifiers simple and deterministic per test/bench.
	n := strings.ReplaceAll(name, "/", "_")
	n = strings.ReplaceAll(n, ":", "_")
	return fmt.Sprintf("%s_%s", n, suffix)
}

/*
Unit tests
*/

// TestOpen_CreatesParentDir verifies a file DSN in a missing directory is
// created on open.
func TestOpen_CreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "warehouse", "sales.db")
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: path})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeFn()

	mustExec(t, r, `CREATE TABLE t (id INTEGER)`)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
}

// TestOpen_EmptyDSN rejects an empty DSN.
func TestOpen_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

// TestCopyFromAndQuery round-trips typed values through CopyFrom and Query.
// Dates come back as ISO-8601 text.
func TestCopyFromAndQuery(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	table := uniqNameFrom(t.Name(), "cf")
	mustExec(t, r, fmt.Sprintf(`CREATE TABLE %q (id INTEGER, name TEXT, price REAL, sold TEXT)`, table))

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rows := [][]any{
		{int64(1), "Widget", 9.5, day},
		{int64(2), nil, 2.0, day.Add(36 * time.Hour)},
	}
	n, err := r.CopyFrom(ctx, table, []string{"id", "name", "price", "sold"}, rows)
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 2 {
		t.Fatalf("CopyFrom inserted %d, want 2", n)
	}

	got, err := r.Query(ctx, fmt.Sprintf(`SELECT id, name, price, sold FROM %q ORDER BY id`, table))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("Query rows = %d, want 2", got.Len())
	}
	want := []records.Record{
		{"id": int64(1), "name": "Widget", "price": 9.5, "sold": "2024-03-05"},
		{"id": int64(2), "name": nil, "price": 2.0, "sold": "2024-03-06 12:00:00"},
	}
	for i, w := range want {
		rec := got.Record(i)
		for k, v := range w {
			if rec[k] != v {
				t.Fatalf("row %d %s = %#v, want %#v", i, k, rec[k], v)
			}
		}
	}
}

// TestCopyFrom_RowLengthMismatch rolls back the whole batch.
func TestCopyFrom_RowLengthMismatch(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE m (id INTEGER, name TEXT)`)

	_, err := r.CopyFrom(ctx, "m", []string{"id", "name"}, [][]any{{1, "a"}, {2}})
	if err == nil {
		t.Fatal("expected row length error")
	}
	got, err := r.Query(ctx, `SELECT COUNT(*) AS n FROM m`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if n := got.Value(0, "n"); n != int64(0) {
		t.Fatalf("rows after rollback = %v, want 0", n)
	}
}

// TestCopyFrom_Empty is a no-op; missing columns are an error.
func TestCopyFrom_Empty(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	if n, err := r.CopyFrom(context.Background(), "x", []string{"a"}, nil); err != nil || n != 0 {
		t.Fatalf("CopyFrom(nil rows) = (%d, %v), want (0, nil)", n, err)
	}
	if _, err := r.CopyFrom(context.Background(), "x", nil, [][]any{{1}}); err == nil {
		t.Fatal("expected error for empty columns")
	}
}

// TestTablesAndSchema lists user tables in name order and returns stored DDL.
func TestTablesAndSchema(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE "zeta" (id INTEGER)`)
	mustExec(t, r, `CREATE TABLE "alpha" (id INTEGER, note TEXT)`)

	names, err := r.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if strings.Join(names, ",") != "alpha,zeta" {
		t.Fatalf("Tables = %v, want [alpha zeta]", names)
	}

	ddl, err := r.Schema(ctx, "alpha")
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	if !strings.Contains(strings.ToUpper(ddl), `"NOTE"`) {
		t.Fatalf("Schema = %q, want note column", ddl)
	}
}

// TestReplaceTableAndLoadSet drives the registered bootstrapper and the
// generic loader against a real database. Running it twice must not
// duplicate rows.
func TestReplaceTableAndLoadSet(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()

	set := records.New("region", "total_amount", "order_count")
	_ = set.Append("North", 150.0, int64(3))
	_ = set.Append(nil, 40.0, int64(1))

	for i := 0; i < 2; i++ {
		if err := storage.ReplaceTable(ctx, Kind, &wrappedRepo{Repository: r}, "agg_by_region", set); err != nil {
			t.Fatalf("ReplaceTable: %v", err)
		}
		if _, err := storage.LoadSet(ctx, &wrappedRepo{Repository: r}, "agg_by_region", set, 1); err != nil {
			t.Fatalf("LoadSet: %v", err)
		}
	}

	got, err := r.Query(ctx, `SELECT region, total_amount, order_count FROM agg_by_region ORDER BY total_amount DESC`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("rows = %d, want 2", got.Len())
	}
	if got.Value(0, "region") != "North" || got.Value(0, "order_count") != int64(3) {
		t.Fatalf("first row = %v", got.Record(0))
	}
	if got.Value(1, "region") != nil {
		t.Fatalf("second region = %v, want NULL", got.Value(1, "region"))
	}

	ddl, err := r.Schema(ctx, "agg_by_region")
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	for _, want := range []string{`"total_amount" REAL`, `"order_count" INTEGER`} {
		if !strings.Contains(ddl, want) {
			t.Fatalf("schema missing %q:\n%s", want, ddl)
		}
	}
}

// TestQuery_Error wraps driver errors.
func TestQuery_Error(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	_, err := r.Query(context.Background(), `SELECT * FROM nope`)
	if err == nil || !strings.HasPrefix(err.Error(), "sqlite: query:") {
		t.Fatalf("err = %v, want sqlite: query: ...", err)
	}
}

// TestQuery_RefusesWrites runs data-modifying statements through Query and
// checks the table is untouched and the connection is usable afterwards.
func TestQuery_RefusesWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newRepo(t)
	mustExec(t, r, `CREATE TABLE fact_sales (order_id TEXT, total_amount REAL)`)
	if _, err := r.CopyFrom(ctx, "fact_sales", []string{"order_id", "total_amount"},
		[][]any{{"ORD1", 10.0}, {"ORD2", 20.0}}); err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}

	for _, stmt := range []string{
		`WITH x AS (SELECT 1) DELETE FROM fact_sales`,
		`WITH x AS (SELECT 1) UPDATE fact_sales SET total_amount = 0`,
		`WITH x AS (SELECT 1) INSERT INTO fact_sales VALUES ('ORD3', 1.0)`,
		`DELETE FROM fact_sales`,
		`DROP TABLE fact_sales`,
	} {
		if _, err := r.Query(ctx, stmt); err == nil {
			t.Fatalf("Query(%q) succeeded, want error", stmt)
		}
	}

	got, err := r.Query(ctx, `SELECT COUNT(*) AS n, SUM(total_amount) AS s FROM fact_sales`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if n, s := got.Value(0, "n"), got.Value(0, "s"); n != int64(2) || s != 30.0 {
		t.Fatalf("after writes: n=%v s=%v, want 2 and 30", n, s)
	}

	// query_only is reset once Query returns.
	mustExec(t, r, `INSERT INTO fact_sales VALUES ('ORD3', 5.0)`)
}

// TestNewRepository_ReadOnly verifies a read-only repository refuses Exec.
func TestNewRepository_ReadOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sales.db")
	rw, closeRW, err := NewRepository(ctx, Config{DSN: path})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	mustExec(t, rw, `CREATE TABLE t (id INTEGER)`)
	closeRW()

	ro, closeRO, err := NewRepository(ctx, Config{DSN: path, ReadOnly: true})
	if err != nil {
		t.Fatalf("NewRepository read-only: %v", err)
	}
	defer closeRO()

	if err := ro.Exec(ctx, `INSERT INTO t VALUES (1)`); err == nil {
		t.Fatal("Exec on read-only repository succeeded")
	}
	if _, err := ro.Query(ctx, `SELECT COUNT(*) FROM t`); err != nil {
		t.Fatalf("Query: %v", err)
	}
	// Query must not switch query_only back off.
	if err := ro.Exec(ctx, `INSERT INTO t VALUES (2)`); err == nil {
		t.Fatal("Exec after Query on read-only repository succeeded")
	}
	if _, err := ro.Tables(ctx); err != nil {
		t.Fatalf("Tables: %v", err)
	}
}

func TestReadOnlyDSN(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"data/sales.db", "data/sales.db?_pragma=query_only(1)"},
		{"file:sales.db?cache=shared", "file:sales.db?cache=shared&_pragma=query_only(1)"},
	}
	for _, tc := range cases {
		if got := readOnlyDSN(tc.in); got != tc.want {
			t.Fatalf("readOnlyDSN(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

/*
Benchmarks
*/

// BenchmarkSqlite_CopyFrom measures the transaction + prepared statement path.
func BenchmarkSqlite_CopyFrom(b *testing.B) {
	r := newRepo(b)
	ctx := context.Background()
	table := uniqNameFrom(b.Name(), "bench")
	mustExec(b, r, fmt.Sprintf(`CREATE TABLE %q (id INTEGER, name TEXT)`, table))

	const batch = 256
	rows := make([][]any, batch)
	for i := 0; i < batch; i++ {
		rows[i] = []any{i, "y"}
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := r.CopyFrom(ctx, table, []string{"id", "name"}, rows); err != nil {
			b.Fatal(err)
		}
	}
}

/*
Keep benchmarks stable across platforms by avoiding spillover effects.
*/
func TestMain(m *testing.M) {
	// Modernc SQLite may use many threads; keep the scheduler predictable in CI.
	runtime.GOMAXPROCS(runtime.NumCPU())
	os.Exit(m.Run())
}
