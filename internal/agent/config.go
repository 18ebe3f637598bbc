package agent

import (
	"time"

	"github.com/leapstack-labs/revagent/internal/config"
	"github.com/leapstack-labs/revagent/internal/dataset"
)

// Config is everything the agent needs to answer a question. It is built once
// by the caller and never changes afterwards.
type Config struct {
	Model       string
	Temperature float32

	// MaxRetries is the number of retries after the first generation attempt.
	MaxRetries     int
	InitialBackoff time.Duration

	QueryTimeout      time.Duration
	MaxResultRows     int
	MaxQuestionLength int

	// APIKey is the completion credential. APIKeyName is how the credential
	// is named in the error returned when it is missing.
	APIKey     string
	APIKeyName string

	// Dialect and Schema are embedded in the SQL generation prompt.
	Dialect string
	Schema  string
}

// DefaultConfig returns a Config populated with the shared defaults.
// The API key is left empty.
func DefaultConfig() Config {
	return Config{
		Model:             config.DefaultModel,
		Temperature:       config.DefaultTemperature,
		MaxRetries:        config.DefaultMaxRetries,
		InitialBackoff:    config.DefaultInitialBackoff,
		QueryTimeout:      config.DefaultQueryTimeout,
		MaxResultRows:     config.DefaultMaxResultRows,
		MaxQuestionLength: config.DefaultMaxQuestionLength,
		APIKeyName:        config.APIKeyEnv,
		Dialect:           "SQLite",
		Schema:            dataset.SchemaDescription,
	}
}

// withDefaults fills zero values from DefaultConfig. MaxRetries and
// InitialBackoff are left as given since zero is meaningful for both.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialBackoff < 0 {
		c.InitialBackoff = 0
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = d.QueryTimeout
	}
	if c.MaxResultRows <= 0 {
		c.MaxResultRows = d.MaxResultRows
	}
	if c.MaxQuestionLength <= 0 {
		c.MaxQuestionLength = d.MaxQuestionLength
	}
	if c.APIKeyName == "" {
		c.APIKeyName = d.APIKeyName
	}
	if c.Dialect == "" {
		c.Dialect = d.Dialect
	}
	if c.Schema == "" {
		c.Schema = d.Schema
	}
	return c
}
