package config

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/revagent/internal/adapter"
	"github.com/leapstack-labs/revagent/internal/agent"
	sharedcfg "github.com/leapstack-labs/revagent/internal/config"
	"github.com/leapstack-labs/revagent/internal/dataset"
	"github.com/leapstack-labs/revagent/internal/logging"
)

// Dialect returns the SQL dialect name of the configured target.
func (c *Config) Dialect() string {
	if c.Target == nil {
		return adapter.DialectOf(sharedcfg.DefaultTarget)
	}
	return adapter.DialectOf(c.Target.Type)
}

// Problems returns every startup problem with the configuration.
// An empty result means the agent can run.
func (c *Config) Problems() []error {
	var problems []error

	if c.APIKey == "" {
		problems = append(problems, fmt.Errorf("%s not set. Copy .env.example to .env and add your key", sharedcfg.APIKeyEnv))
	}

	if c.DataDir == "" {
		problems = append(problems, errors.New("data_dir is required"))
	} else {
		problems = append(problems, dataset.CheckFiles(c.DataDir)...)
	}

	if c.Target == nil {
		problems = append(problems, errors.New("target type is required"))
	} else if err := c.Target.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("invalid target configuration: %w", err))
	}

	if c.MaxRetries < 0 {
		problems = append(problems, fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries))
	}
	if c.InitialBackoff < 0 {
		problems = append(problems, fmt.Errorf("initial_backoff must not be negative, got %s", c.InitialBackoff))
	}
	if c.QueryTimeout <= 0 {
		problems = append(problems, fmt.Errorf("query_timeout must be positive, got %s", c.QueryTimeout))
	}
	if c.MaxResultRows <= 0 {
		problems = append(problems, fmt.Errorf("max_result_rows must be positive, got %d", c.MaxResultRows))
	}
	if c.MaxQuestionLength <= 0 {
		problems = append(problems, fmt.Errorf("max_question_length must be positive, got %d", c.MaxQuestionLength))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		problems = append(problems, fmt.Errorf("temperature must be between 0 and 2, got %g", c.Temperature))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err)
	}

	return problems
}

// Validate checks if the configuration is valid. All problems are reported
// together.
func (c *Config) Validate() error {
	return errors.Join(c.Problems()...)
}

// ValidateData checks that the CSV files the dataset is built from exist.
func (c *Config) ValidateData() error {
	if err := errors.Join(dataset.CheckFiles(c.DataDir)...); err != nil {
		return fmt.Errorf("%w\nHint: Use --data-dir to point at the directory holding the CSV files", err)
	}
	return nil
}

// AgentConfig builds the agent configuration.
func (c *Config) AgentConfig() agent.Config {
	cfg := agent.DefaultConfig()
	cfg.Model = c.Model
	cfg.Temperature = float32(c.Temperature)
	cfg.MaxRetries = c.MaxRetries
	cfg.InitialBackoff = c.InitialBackoff
	cfg.QueryTimeout = c.QueryTimeout
	cfg.MaxResultRows = c.MaxResultRows
	cfg.MaxQuestionLength = c.MaxQuestionLength
	cfg.APIKey = c.APIKey
	cfg.APIKeyName = sharedcfg.APIKeyEnv
	cfg.Dialect = c.Dialect()
	cfg.Schema = dataset.SchemaDescription
	return cfg
}
