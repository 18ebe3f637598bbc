// Package safety guards the path between model output and the database.
//
// It holds three independent checks that run on every question:
//   - Sanitize cleans the user's question before it reaches the model.
//   - Validate decides whether generated SQL may be executed at all.
//   - EnforceLimit caps the number of rows a query can return.
//
// The package-level functions are pure. Guard wraps them with the configured
// limits and logs every rejection or rewrite.
package safety

import (
	"log/slog"
)

// Default limits.
const (
	DefaultMaxQuestionLength = 500
	DefaultMaxRows           = 1000
)

// Verdict is the outcome of validating a candidate query.
// Reason is always set; it is "OK" when the query is safe.
type Verdict struct {
	Safe    bool
	Reason  string
	Keyword string // offending keyword, if the blocklist fired
}

// Guard applies the safety checks with fixed limits and logs the outcome.
type Guard struct {
	maxQuestionLength int
	maxRows           int
	logger            *slog.Logger
}

// NewGuard creates a Guard. Non-positive limits fall back to the defaults.
func NewGuard(maxQuestionLength, maxRows int, logger *slog.Logger) *Guard {
	if maxQuestionLength <= 0 {
		maxQuestionLength = DefaultMaxQuestionLength
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Guard{
		maxQuestionLength: maxQuestionLength,
		maxRows:           maxRows,
		logger:            logger,
	}
}

// MaxRows returns the row cap applied by EnforceLimit.
func (g *Guard) MaxRows() int {
	return g.maxRows
}

// Sanitize cleans a question and logs when it had to be truncated.
func (g *Guard) Sanitize(text string) string {
	cleaned, original := sanitize(text, g.maxQuestionLength)
	if original > g.maxQuestionLength {
		g.logger.Info("input truncated",
			"from", original,
			"to", g.maxQuestionLength,
		)
	}
	return cleaned
}

// Validate checks a candidate query and logs rejections.
func (g *Guard) Validate(sql string) Verdict {
	v := Validate(sql)
	if !v.Safe {
		attrs := []any{"reason", v.Reason, "sql", preview(sql)}
		if v.Keyword != "" {
			attrs = append(attrs, "keyword", v.Keyword)
		}
		g.logger.Warn("sql blocked", attrs...)
	}
	return v
}

// EnforceLimit caps the query at the guard's row limit.
func (g *Guard) EnforceLimit(sql string) string {
	out := EnforceLimit(sql, g.maxRows)
	if out != sql {
		g.logger.Debug("auto-appended limit", "max_rows", g.maxRows)
	}
	return out
}

// preview shortens SQL for log lines.
func preview(s string) string {
	r := []rune(s)
	if len(r) > 80 {
		return string(r[:80])
	}
	return s
}
