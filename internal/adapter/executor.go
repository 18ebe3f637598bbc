package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/revagent/pkg/core"
)

// Executor runs read queries through an Adapter and collects the results.
// It does not own the adapter and never closes it.
type Executor struct {
	adapter Adapter
	logger  *slog.Logger
}

// NewExecutor creates an Executor. If logger is nil, a discard logger is used.
func NewExecutor(a Adapter, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{adapter: a, logger: logger}
}

// Adapter returns the underlying adapter.
func (e *Executor) Adapter() Adapter {
	return e.adapter
}

// Run executes sqlStr with the engine timeout set to timeout and a context
// deadline of the same length. A non-positive timeout means no limit.
func (e *Executor) Run(ctx context.Context, sqlStr string, timeout time.Duration) (*core.ResultSet, error) {
	if timeout > 0 {
		if err := e.adapter.SetQueryTimeout(ctx, timeout); err != nil {
			return nil, fmt.Errorf("failed to set query timeout: %w", err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := e.adapter.Query(ctx, sqlStr)
	if err != nil {
		return nil, timeoutError(ctx, timeout, err)
	}
	rs, err := Collect(rows)
	if err != nil {
		return nil, timeoutError(ctx, timeout, err)
	}

	e.logger.Debug("query executed",
		slog.String("dialect", e.adapter.DialectName()),
		slog.Int("rows", rs.Len()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return rs, nil
}

func timeoutError(ctx context.Context, timeout time.Duration, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("query exceeded timeout of %s: %w", timeout, err)
	}
	return err
}
