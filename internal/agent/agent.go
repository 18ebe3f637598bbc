// Package agent answers natural-language questions about the royalties
// dataset by generating SQL with a language model, checking it, running it,
// and phrasing the result.
//
// Every outcome is a string. Failures come back as answers tagged with one of
// the Err* prefixes so callers can print whatever Ask returns.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/leapstack-labs/revagent/internal/format"
	"github.com/leapstack-labs/revagent/internal/llm"
	"github.com/leapstack-labs/revagent/internal/safety"
	"github.com/leapstack-labs/revagent/pkg/core"
)

// Answer prefixes for failed questions.
const (
	ErrPrefix          = "ERROR: "
	ErrPrefixSafety    = "SAFETY ERROR: "
	ErrPrefixExecution = "SQL EXECUTION ERROR: "
	ErrPrefixAPI       = "API ERROR: "
)

// EmptyQuestionAnswer is returned when nothing is left after sanitizing.
const EmptyQuestionAnswer = ErrPrefix + "Empty question provided."

// Stage names a step of answering a question.
type Stage string

// Stages, in order.
const (
	StageSanitizing     Stage = "sanitizing"
	StageGenerating     Stage = "generating"
	StageValidating     Stage = "validating"
	StageLimitEnforcing Stage = "limit_enforcing"
	StageExecuting      Stage = "executing"
	StageFormatting     Stage = "formatting"
	StageDone           Stage = "done"
)

// Querier runs a read-only query against the loaded dataset.
// The agent never closes it.
type Querier interface {
	Run(ctx context.Context, sql string, timeout time.Duration) (*core.ResultSet, error)
}

// Result describes how a question was answered.
type Result struct {
	RequestID string `yaml:"request_id" json:"request_id"`
	Question  string `yaml:"question" json:"question"`
	SQL       string `yaml:"sql,omitempty" json:"sql,omitempty"`
	Answer    string `yaml:"answer" json:"answer"`
	// Deterministic is the answer built from the rows alone, when rows came back.
	Deterministic string `yaml:"deterministic,omitempty" json:"deterministic,omitempty"`
	// Fallback is set when Answer is the deterministic answer because the
	// model could not phrase one.
	Fallback bool `yaml:"fallback" json:"fallback"`
	Attempts int  `yaml:"attempts" json:"attempts"`
	Rows     int  `yaml:"rows" json:"rows"`
	// Stage is where answering stopped. StageDone unless it failed early.
	Stage Stage `yaml:"stage" json:"stage"`
}

// Agent answers questions. It is safe for concurrent use as long as each
// caller passes its own Querier.
type Agent struct {
	cfg      Config
	client   llm.Client
	guard    *safety.Guard
	logger   *slog.Logger
	newTimer func() backoff.Timer
}

// Option configures an Agent.
type Option func(*Agent)

// WithTimer makes the agent wait on t between generation attempts.
// The timer is shared by all calls, so it is meant for tests.
func WithTimer(t backoff.Timer) Option {
	return func(a *Agent) {
		a.newTimer = func() backoff.Timer { return t }
	}
}

// New creates an Agent. A nil client is reported as a missing credential
// when a question is asked.
func New(cfg Config, client llm.Client, logger *slog.Logger, opts ...Option) *Agent {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg = cfg.withDefaults()
	a := &Agent{
		cfg:      cfg,
		client:   client,
		guard:    safety.NewGuard(cfg.MaxQuestionLength, cfg.MaxResultRows, logger),
		logger:   logger,
		newTimer: func() backoff.Timer { return nil },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the configuration the agent runs with.
func (a *Agent) Config() Config {
	return a.cfg
}

// Ask answers question using q and returns the answer text.
func (a *Agent) Ask(ctx context.Context, question string, q Querier) string {
	return a.AskDetailed(ctx, question, q).Answer
}

// AskDetailed answers question and reports how the answer was reached.
func (a *Agent) AskDetailed(ctx context.Context, question string, q Querier) *Result {
	res := &Result{RequestID: uuid.NewString(), Stage: StageSanitizing}
	logger := a.logger.With("request_id", res.RequestID)

	res.Question = a.guard.Sanitize(question)
	if res.Question == "" {
		logger.Warn("empty question")
		return res.fail(EmptyQuestionAnswer)
	}
	logger = logger.With("question", prefix(res.Question))

	if a.cfg.APIKey == "" || a.client == nil {
		logger.Error("missing credential", "name", a.cfg.APIKeyName)
		return res.fail(fmt.Sprintf("%s%s not set. Copy .env.example to .env and add your key.",
			ErrPrefix, a.cfg.APIKeyName))
	}

	res.Stage = StageGenerating
	logger.Info("question received")
	sql, attempts, err := a.generateSQL(ctx, res.Question, logger)
	res.Attempts = attempts
	if err != nil {
		logger.Error("sql generation failed", "attempts", attempts, "error", err)
		return res.fail(fmt.Sprintf("%sCould not generate SQL after %d attempts: %v",
			ErrPrefixAPI, attempts, err))
	}
	res.SQL = sql
	logger.Info("generated sql", "sql", sql, "attempts", attempts)

	res.Stage = StageValidating
	if v := a.guard.Validate(sql); !v.Safe {
		return res.fail(ErrPrefixSafety + v.Reason)
	}

	res.Stage = StageLimitEnforcing
	res.SQL = a.guard.EnforceLimit(sql)

	res.Stage = StageExecuting
	rs, err := q.Run(ctx, res.SQL, a.cfg.QueryTimeout)
	if err != nil {
		logger.Error("sql execution failed", "sql", res.SQL, "error", err)
		return res.fail(ErrPrefixExecution + err.Error())
	}
	res.Rows = rs.Len()
	if rs.Empty() {
		logger.Info("query returned no rows")
		res.Stage = StageDone
		res.Answer = format.NoResults
		return res
	}

	res.Stage = StageFormatting
	res.Deterministic = format.Deterministic(res.Question, rs)
	logger.Info("query result", "rows", res.Rows, "deterministic", res.Deterministic)

	answer, err := a.phrase(ctx, res.Question, rs)
	if err != nil {
		logger.Warn("answer formatting failed, using deterministic answer", "error", err)
		res.Answer = res.Deterministic
		res.Fallback = true
	} else {
		logger.Info("formatted answer", "answer", answer)
		res.Answer = answer
	}

	res.Stage = StageDone
	return res
}

// generateSQL asks the model for a query, retrying every failure with
// exponential backoff. It returns the fence-stripped SQL and the number of
// attempts made.
func (a *Agent) generateSQL(ctx context.Context, question string, logger *slog.Logger) (string, int, error) {
	req := llm.Request{
		Model: a.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: SQLSystemPrompt(a.cfg.Dialect, a.cfg.Schema)},
			{Role: llm.RoleUser, Content: question},
		},
		Temperature: a.cfg.Temperature,
	}
	maxAttempts := a.cfg.MaxRetries + 1

	var (
		raw      string
		attempts int
		lastErr  error
	)
	op := func() error {
		attempts++
		out, err := a.client.Complete(ctx, req)
		if err != nil {
			lastErr = err
			return err
		}
		raw = out
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("completion failed, retrying",
			"attempt", attempts,
			"max_attempts", maxAttempts,
			"backoff", wait,
			"transient", llm.IsTransient(err),
			"error", err,
		)
	}

	policy := retryPolicy(ctx, a.cfg.InitialBackoff, a.cfg.MaxRetries)
	if err := backoff.RetryNotifyWithTimer(op, policy, notify, a.newTimer()); err != nil {
		if lastErr == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			lastErr = err
		}
		return "", attempts, lastErr
	}

	logger.Debug("completion response", "attempt", attempts, "raw", raw)
	return StripCodeFences(raw), attempts, nil
}

// phrase makes one attempt at a natural-language answer.
func (a *Agent) phrase(ctx context.Context, question string, rs *core.ResultSet) (string, error) {
	prompt, err := AnswerPrompt(question, rs)
	if err != nil {
		return "", err
	}
	out, err := a.client.Complete(ctx, llm.Request{
		Model: a.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: analystSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", llm.ErrEmptyResponse
	}
	return out, nil
}

func (r *Result) fail(answer string) *Result {
	r.Answer = answer
	return r
}

// prefix shortens a question for log lines.
func prefix(s string) string {
	r := []rune(s)
	if len(r) > 80 {
		return string(r[:80]) + "..."
	}
	return s
}
