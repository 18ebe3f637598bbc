// Package core holds the types shared between the query engines, the
// formatter and the agent.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"time"
)

// ResultSet is the tabular output of a query. Every row has one value per
// column, in column order. Values are scalars: int64, float64, string, bool
// or nil.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Empty reports whether the result has no rows.
func (r *ResultSet) Empty() bool {
	return r.Len() == 0
}

// Value returns the value at the given row and column name.
func (r *ResultSet) Value(row int, column string) (any, bool) {
	if r == nil || row < 0 || row >= len(r.Rows) {
		return nil, false
	}
	for i, c := range r.Columns {
		if c == column && i < len(r.Rows[row]) {
			return r.Rows[row][i], true
		}
	}
	return nil, false
}

// AppendRow adds a row after normalizing its values.
func (r *ResultSet) AppendRow(values ...any) error {
	if len(values) != len(r.Columns) {
		return fmt.Errorf("row has %d values, expected %d", len(values), len(r.Columns))
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = Normalize(v)
	}
	r.Rows = append(r.Rows, row)
	return nil
}

// MarshalJSON encodes the rows as an array of objects whose keys keep the
// column order.
func (r ResultSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range r.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range r.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(col)
			if err != nil {
				return nil, err
			}
			var v any
			if j < len(row) {
				v = row[j]
			}
			val, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Normalize converts driver values into the scalar set used by ResultSet.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x) //nolint:gosec // row counts and ids fit
	case float32:
		return float64(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case *big.Int:
		// DuckDB returns HUGEINT for SUM over integers.
		if x == nil {
			return nil
		}
		if x.IsInt64() {
			return x.Int64()
		}
		return x.String()
	case interface{ Float64() float64 }:
		// Driver decimal types.
		return x.Float64()
	default:
		return v
	}
}
