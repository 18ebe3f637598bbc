package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultSet_MarshalJSONKeepsColumnOrder(t *testing.T) {
	rs := ResultSet{Columns: []string{"writer_name", "total", "note"}}
	require.NoError(t, rs.AppendRow("Alex Park", 4644.75, nil))
	require.NoError(t, rs.AppendRow([]byte("Jane Miller"), int32(1799), "x"))

	out, err := json.Marshal(rs)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"writer_name":"Alex Park","total":4644.75,"note":null},{"writer_name":"Jane Miller","total":1799,"note":"x"}]`,
		string(out))
}

func TestResultSet_Empty(t *testing.T) {
	var nilSet *ResultSet
	assert.True(t, nilSet.Empty())
	assert.Equal(t, 0, nilSet.Len())

	rs := &ResultSet{Columns: []string{"a"}}
	assert.True(t, rs.Empty())
	require.NoError(t, rs.AppendRow(1))
	assert.False(t, rs.Empty())
}

func TestResultSet_AppendRowWidthMismatch(t *testing.T) {
	rs := &ResultSet{Columns: []string{"a", "b"}}
	err := rs.AppendRow(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2")
}

func TestResultSet_Value(t *testing.T) {
	rs := &ResultSet{Columns: []string{"id", "name"}}
	require.NoError(t, rs.AppendRow(int64(1), "Starlight"))

	v, ok := rs.Value(0, "name")
	require.True(t, ok)
	assert.Equal(t, "Starlight", v)

	_, ok = rs.Value(0, "missing")
	assert.False(t, ok)
	_, ok = rs.Value(3, "id")
	assert.False(t, ok)
}

type testDecimal struct{ unscaled, scale float64 }

func (d *testDecimal) Float64() float64 { return d.unscaled / d.scale }

func TestNormalize(t *testing.T) {
	ts := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"bytes", []byte("abc"), "abc"},
		{"int", 5, int64(5)},
		{"int32", int32(7), int64(7)},
		{"float32", float32(1.5), float64(1.5)},
		{"float64", 2.25, 2.25},
		{"time", ts, "2024-01-15T00:00:00Z"},
		{"nil", nil, nil},
		{"string", "s", "s"},
		{"decimal", &testDecimal{unscaled: 464475, scale: 100}, 4644.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
