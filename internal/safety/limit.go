package safety

import (
	"fmt"
	"regexp"
	"strings"
)

var limitRe = regexp.MustCompile(`(?i)\bLIMIT\b`)

// HasLimit reports whether the query already contains a LIMIT keyword
// outside of comments.
func HasLimit(sql string) bool {
	return limitRe.MatchString(StripComments(sql))
}

// EnforceLimit appends "LIMIT maxRows" unless the query already has a LIMIT.
// A limit chosen by the model is kept as is, even when larger than maxRows.
// Queries carrying comments are rewritten without them, so a trailing line
// comment cannot swallow the appended clause.
func EnforceLimit(sql string, maxRows int) string {
	if HasLimit(sql) {
		return sql
	}

	stripped := StripComments(sql)
	stripped = strings.TrimRightFunc(stripped, isSpace)
	stripped = strings.TrimSuffix(stripped, ";")
	stripped = strings.TrimRightFunc(stripped, isSpace)

	return fmt.Sprintf("%s LIMIT %d", stripped, maxRows)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}
