// Package config loads the revagent CLI configuration.
//
// Values are layered with koanf, lowest precedence first: built-in defaults,
// a .env file next to the config file, revagent.yaml, REVAGENT_* environment
// variables, OPENAI_* environment variables and finally flags that were set
// on the command line.
package config

import (
	"time"

	sharedcfg "github.com/leapstack-labs/revagent/internal/config"
)

// TargetConfig is an alias for the shared target configuration.
// This allows CLI code to use config.TargetConfig without importing internal/config.
type TargetConfig = sharedcfg.TargetConfig

// Config holds all CLI configuration options.
type Config struct {
	Model             string        `koanf:"model"`
	Temperature       float64       `koanf:"temperature"`
	MaxRetries        int           `koanf:"max_retries"`
	InitialBackoff    time.Duration `koanf:"initial_backoff"`
	QueryTimeout      time.Duration `koanf:"query_timeout"`
	MaxResultRows     int           `koanf:"max_result_rows"`
	MaxQuestionLength int           `koanf:"max_question_length"`

	DataDir   string `koanf:"data_dir"`
	OutputDir string `koanf:"output_dir"`
	LogDir    string `koanf:"log_dir"`
	LogLevel  string `koanf:"log_level"`
	Verbose   bool   `koanf:"verbose"`

	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`

	Target *TargetConfig `koanf:"target"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultModel     = sharedcfg.DefaultModel
	DefaultDataDir   = sharedcfg.DefaultDataDir
	DefaultOutputDir = sharedcfg.DefaultOutputDir
	DefaultLogDir    = sharedcfg.DefaultLogDir
	DefaultLogLevel  = sharedcfg.DefaultLogLevel
	DotEnvFile       = ".env"
	EnvPrefix        = "REVAGENT_"
)
