// Package format renders query results as plain text without calling a
// language model. Its output is the fallback answer and the reference the
// model-written answer is checked against in tests.
package format

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/leapstack-labs/revagent/pkg/core"
)

// NoResults is returned for an empty result set.
const NoResults = "No results found."

var printer = message.NewPrinter(language.English)

// Currency renders a number as "$1,234.56".
func Currency(v float64) string {
	return "$" + printer.Sprintf("%.2f", v)
}

// Deterministic renders a result set as text.
//
// A single value is printed as "column: value", with any number (integers
// included) shown as currency. Everything else is printed one line per row
// as "column: value" pairs joined by " | ", where only floating point values
// are shown as currency.
func Deterministic(_ string, rs *core.ResultSet) string {
	if rs.Empty() {
		return NoResults
	}

	if rs.Len() == 1 && len(rs.Columns) == 1 {
		col := rs.Columns[0]
		v := rs.Rows[0][0]
		if f, ok := asNumber(v); ok {
			return col + ": " + Currency(f)
		}
		return col + ": " + Value(v)
	}

	lines := make([]string, 0, rs.Len())
	for _, row := range rs.Rows {
		parts := make([]string, len(rs.Columns))
		for i, col := range rs.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			if f, ok := v.(float64); ok {
				parts[i] = col + ": " + Currency(f)
				continue
			}
			parts[i] = col + ": " + Value(v)
		}
		lines = append(lines, strings.Join(parts, " | "))
	}
	return strings.Join(lines, "\n")
}

// Value renders a scalar without currency formatting.
func Value(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case float64:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	default:
		return 0, false
	}
}
