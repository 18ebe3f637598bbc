package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/revagent/internal/format"
)

func TestDuckDBAdapter_ConnectInMemory(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	err := adapter.Connect(ctx, Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to connect to in-memory DuckDB: %v", err)
	}
	defer adapter.Close()
}

func TestDuckDBAdapter_ConnectFileBased(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "royalties.duckdb")

	err := adapter.Connect(ctx, Config{Path: dbPath})
	if err != nil {
		t.Fatalf("failed to connect to file-based DuckDB: %v", err)
	}
	defer adapter.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestDuckDBAdapter_ExecWithArgs(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer adapter.Close()

	if err := adapter.Exec(ctx, `CREATE TABLE dim_writer (writer_id INTEGER, writer_name VARCHAR)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	insert := "INSERT INTO dim_writer VALUES (" + adapter.Placeholder(1) + ", " + adapter.Placeholder(2) + ")"
	if err := adapter.Exec(ctx, insert, int64(101), "Alex Park"); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}
}

func TestDuckDBAdapter_QueryCollect(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer adapter.Close()

	stmts := []string{
		`CREATE TABLE fact_royalties (transaction_id VARCHAR, song_id INTEGER, amount_usd DOUBLE)`,
		`INSERT INTO fact_royalties VALUES ('TX1', 1, 100.25), ('TX2', 1, 50.5), ('TX3', 2, 10.0)`,
	}
	for _, s := range stmts {
		if err := adapter.Exec(ctx, s); err != nil {
			t.Fatalf("failed to exec %q: %v", s, err)
		}
	}

	rows, err := adapter.Query(ctx, `
		SELECT song_id, ROUND(SUM(amount_usd), 2) AS total, COUNT(*) AS n
		FROM fact_royalties
		GROUP BY song_id
		ORDER BY song_id
	`)
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}

	rs, err := Collect(rows)
	if err != nil {
		t.Fatalf("failed to collect: %v", err)
	}

	if rs.Len() != 2 {
		t.Fatalf("got %d rows, want 2", rs.Len())
	}
	if got := rs.Rows[0][0]; got != int64(1) {
		t.Errorf("song_id: got %#v, want int64(1)", got)
	}
	if got := rs.Rows[0][1]; got != 150.75 {
		t.Errorf("total: got %#v, want 150.75", got)
	}
	if got := rs.Rows[0][2]; got != int64(2) {
		t.Errorf("count: got %#v, want int64(2)", got)
	}
}

func TestDuckDBAdapter_DecimalsAreFloats(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer adapter.Close()

	exec := NewExecutor(adapter, nil)

	t.Run("single value", func(t *testing.T) {
		rs, err := exec.Run(ctx, `SELECT CAST(4644.75 AS DECIMAL(10,2)) AS total_revenue`, time.Second)
		if err != nil {
			t.Fatalf("failed to run: %v", err)
		}
		if got := rs.Rows[0][0]; got != 4644.75 {
			t.Errorf("total_revenue: got %#v, want 4644.75", got)
		}
		if got := format.Deterministic("q", rs); got != "total_revenue: $4,644.75" {
			t.Errorf("Deterministic() = %q", got)
		}
	})

	t.Run("rows", func(t *testing.T) {
		rs, err := exec.Run(ctx, `SELECT 'a' AS w, CAST(1663.25 AS DECIMAL(6,2)) AS revenue`, time.Second)
		if err != nil {
			t.Fatalf("failed to run: %v", err)
		}
		if got := format.Deterministic("q", rs); got != "w: a | revenue: $1,663.25" {
			t.Errorf("Deterministic() = %q", got)
		}
	})

	t.Run("null", func(t *testing.T) {
		rs, err := exec.Run(ctx, `SELECT CAST(NULL AS DECIMAL(10,2)) AS total_revenue`, time.Second)
		if err != nil {
			t.Fatalf("failed to run: %v", err)
		}
		if got := rs.Rows[0][0]; got != nil {
			t.Errorf("total_revenue: got %#v, want nil", got)
		}
	})
}

func TestDuckDBAdapter_SetQueryTimeout(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	if err := adapter.SetQueryTimeout(ctx, time.Second); err == nil {
		t.Error("expected error when setting timeout without connection, got nil")
	}

	if err := adapter.Connect(ctx, Config{}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer adapter.Close()

	if err := adapter.SetQueryTimeout(ctx, time.Second); err != nil {
		t.Errorf("SetQueryTimeout: %v", err)
	}
}

func TestDuckDBAdapter_ExecWithoutConnect(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	err := adapter.Exec(ctx, "SELECT 1")
	if err == nil {
		t.Error("expected error when executing without connection, got nil")
	}
}

func TestDuckDBAdapter_QueryWithoutConnect(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	_, err := adapter.Query(ctx, "SELECT 1")
	if err == nil {
		t.Error("expected error when querying without connection, got nil")
	}
}

func TestDuckDBAdapter_Close(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	if err := adapter.Close(); err != nil {
		t.Errorf("close without connect should not error: %v", err)
	}

	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	if err := adapter.Close(); err != nil {
		t.Errorf("failed to close: %v", err)
	}
}
