package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation reasons.
const (
	ReasonOK            = "OK"
	ReasonSelectOnly    = "Blocked: Only SELECT queries are allowed."
	ReasonMultipleStmts = "Blocked: Multiple SQL statements are not allowed."
)

// BlockedKeywords are rejected anywhere in a query as whole words.
// Order matters: the first match is the one reported.
var BlockedKeywords = []string{
	"DROP", "DELETE", "INSERT", "UPDATE",
	"ALTER", "CREATE", "TRUNCATE", "EXEC", "EXECUTE",
}

var (
	lineCommentRe  = regexp.MustCompile(`(?m)--.*$`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	selectRe       = regexp.MustCompile(`(?i)^SELECT\b`)
	multiStmtRe    = regexp.MustCompile(`;\s*\S`)
	blockedRes     = compileBlocked(BlockedKeywords)
)

func compileBlocked(words []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return res
}

// StripComments removes "--" line comments and "/* */" block comments.
func StripComments(sql string) string {
	out := lineCommentRe.ReplaceAllString(sql, "")
	return blockCommentRe.ReplaceAllString(out, "")
}

// Validate classifies a query as safe or unsafe. Checks run in order and
// stop at the first violation: comments are stripped, the query must start
// with SELECT, no blocked keyword may appear as a whole word, and nothing
// may follow a statement terminator.
func Validate(sql string) Verdict {
	cleaned := strings.TrimSpace(StripComments(sql))

	if !selectRe.MatchString(cleaned) {
		return Verdict{Reason: ReasonSelectOnly}
	}

	for i, re := range blockedRes {
		if re.MatchString(cleaned) {
			kw := BlockedKeywords[i]
			return Verdict{
				Reason:  fmt.Sprintf("Blocked: SQL contains '%s' which is not allowed.", kw),
				Keyword: kw,
			}
		}
	}

	if multiStmtRe.MatchString(cleaned) {
		return Verdict{Reason: ReasonMultipleStmts}
	}

	return Verdict{Safe: true, Reason: ReasonOK}
}
