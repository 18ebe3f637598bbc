package config

import "time"

// Default configuration values.
const (
	DefaultModel             = "gpt-4o-mini"
	DefaultTemperature       = 0
	DefaultMaxRetries        = 3
	DefaultInitialBackoff    = time.Second
	DefaultQueryTimeout      = 30 * time.Second
	DefaultMaxResultRows     = 1000
	DefaultMaxQuestionLength = 500

	DefaultDataDir   = "data"
	DefaultOutputDir = "output"
	DefaultLogDir    = "logs"
	DefaultLogLevel  = "info"
	DefaultTarget    = "sqlite"
	DefaultDatabase  = ":memory:"
	DefaultPgPort    = 5432
)

// APIKeyEnv is the environment variable holding the completion API key.
const APIKeyEnv = "OPENAI_API_KEY"

// BaseURLEnv optionally points the client at an OpenAI-compatible endpoint.
const BaseURLEnv = "OPENAI_BASE_URL"

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	if t.Type == "" {
		t.Type = DefaultTarget
	}

	switch t.Type {
	case "sqlite", "duckdb":
		if t.Database == "" {
			t.Database = DefaultDatabase
		}
	case "postgres":
		if t.Port == 0 {
			t.Port = DefaultPgPort
		}
		if t.Host == "" {
			t.Host = "localhost"
		}
	}
}
