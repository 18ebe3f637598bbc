package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/revagent/internal/adapter"
	"github.com/leapstack-labs/revagent/internal/agent"
	"github.com/leapstack-labs/revagent/internal/cli/config"
	"github.com/leapstack-labs/revagent/internal/dataset"
	"github.com/leapstack-labs/revagent/internal/llm"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Adapter  adapter.Adapter
	Executor *adapter.Executor
	Agent    *agent.Agent
	Stats    *dataset.Stats
}

// newClient builds the completion client. Tests replace it.
var newClient = func(cfg *config.Config, logger *slog.Logger) (llm.Client, error) {
	if cfg.APIKey == "" {
		// The agent answers every question with the missing key error.
		return nil, nil
	}
	c, err := llm.NewOpenAI(llm.OpenAIConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	}, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewCommandContext connects to the target, loads the royalties dataset and
// builds the agent. Returns the context and a cleanup function that must be
// called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	ctx := cmd.Context()
	cfg, err := getConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	logger := config.GetLogger(ctx)

	if err := cfg.ValidateData(); err != nil {
		return nil, nil, err
	}
	if err := cfg.Target.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid target configuration: %w", err)
	}

	a, err := openTarget(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}

	stats, err := dataset.Load(ctx, a, cfg.DataDir, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Adapter:  a,
		Executor: adapter.NewExecutor(a, logger),
		Agent:    agent.New(cfg.AgentConfig(), client, logger),
		Stats:    stats,
	}, cleanup, nil
}

func openTarget(ctx context.Context, cfg *config.Config, logger *slog.Logger) (adapter.Adapter, error) {
	acfg := cfg.Target.AdapterConfig()
	a, err := adapter.NewAdapter(acfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, acfg); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", acfg.Type, err)
	}
	return a, nil
}

// getConfig returns the configuration loaded by the root command, or loads
// it from the working directory when the command runs on its own.
func getConfig(ctx context.Context) (*config.Config, error) {
	if cfg := config.FromContext(ctx); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", nil)
}
