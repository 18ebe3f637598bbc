package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/revagent/internal/testutil"
)

func TestEnforceLimit(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		maxRows int
		want    string
	}{
		{"adds limit", "SELECT * FROM dim_writer", 100, "SELECT * FROM dim_writer LIMIT 100"},
		{"keeps existing limit", "SELECT * FROM dim_writer LIMIT 10", 100, "SELECT * FROM dim_writer LIMIT 10"},
		{"keeps lowercase limit", "SELECT * FROM dim_writer limit 5", 100, "SELECT * FROM dim_writer limit 5"},
		{"keeps larger limit", "SELECT * FROM t LIMIT 5000", 100, "SELECT * FROM t LIMIT 5000"},
		{"strips trailing semicolon", "SELECT * FROM dim_writer;", 50, "SELECT * FROM dim_writer LIMIT 50"},
		{"strips semicolon and whitespace", "SELECT * FROM t ;  \n", 50, "SELECT * FROM t LIMIT 50"},
		{"limit inside identifier is not a limit", "SELECT credit_limit FROM t", 20, "SELECT credit_limit FROM t LIMIT 20"},
		{"trailing line comment", "SELECT * FROM t -- all rows", 100, "SELECT * FROM t LIMIT 100"},
		{"semicolon before line comment", "SELECT * FROM t; -- done", 100, "SELECT * FROM t LIMIT 100"},
		{"limit only in line comment", "SELECT * FROM t -- LIMIT 5", 100, "SELECT * FROM t LIMIT 100"},
		{"limit only in block comment", "SELECT * FROM t /* LIMIT 5 */", 100, "SELECT * FROM t LIMIT 100"},
		{"comment before limit", "SELECT * FROM t -- top\nLIMIT 5", 100, "SELECT * FROM t -- top\nLIMIT 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EnforceLimit(tt.sql, tt.maxRows))
		})
	}
}

func TestEnforceLimit_NoDoubleSemicolon(t *testing.T) {
	out := EnforceLimit("SELECT * FROM t;", 50)
	assert.Contains(t, out, "LIMIT 50")
	assert.NotContains(t, out, ";;")
	assert.NotContains(t, out, ";")
}

func TestEnforceLimit_Idempotent(t *testing.T) {
	for _, sql := range []string{
		"SELECT * FROM t",
		"SELECT * FROM t;",
		"SELECT * FROM t LIMIT 3",
		"SELECT * FROM t -- trailing",
	} {
		once := EnforceLimit(sql, 1000)
		assert.Equal(t, once, EnforceLimit(once, 1000), sql)
	}
}

func TestGuard_EnforceLimit(t *testing.T) {
	g := NewGuard(0, 25, testutil.NewTestLogger(t))
	assert.Equal(t, "SELECT 1 LIMIT 25", g.EnforceLimit("SELECT 1"))
}
