package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	sharedcfg "github.com/leapstack-labs/revagent/internal/config"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	dotEnvUsed     string
)

// flagKeys maps flag names onto config keys where the two differ.
// The --config flag is not a config key.
var flagKeys = map[string]string{
	"config":   "",
	"target":   "target.type",
	"database": "target.database",
}

// providerEnv maps provider environment variables onto config keys.
var providerEnv = map[string]string{
	sharedcfg.APIKeyEnv:  "api_key",
	sharedcfg.BaseURLEnv: "base_url",
}

// findConfigFile finds the config file to use.
// Priority: explicit path > revagent.yaml > revagent.yml in dir.
func findConfigFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	return sharedcfg.ConfigFileIn(dir)
}

// inferProjectRoot determines the project root.
// Priority:
//  1. Directory of an explicit --config file
//  2. Nearest ancestor of CWD holding revagent.yaml
//  3. Current working directory
func inferProjectRoot(cfgFile string) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
		return filepath.Dir(cfgFile)
	}

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		return "."
	}
	if root := sharedcfg.FindProjectRoot(cwd); root != "" {
		return root
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	dotEnvUsed = ""
}

// defaults returns the lowest configuration layer.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"model":               sharedcfg.DefaultModel,
		"temperature":         sharedcfg.DefaultTemperature,
		"max_retries":         sharedcfg.DefaultMaxRetries,
		"initial_backoff":     sharedcfg.DefaultInitialBackoff.String(),
		"query_timeout":       sharedcfg.DefaultQueryTimeout.String(),
		"max_result_rows":     sharedcfg.DefaultMaxResultRows,
		"max_question_length": sharedcfg.DefaultMaxQuestionLength,
		"data_dir":            sharedcfg.DefaultDataDir,
		"output_dir":          sharedcfg.DefaultOutputDir,
		"log_dir":             sharedcfg.DefaultLogDir,
		"log_level":           sharedcfg.DefaultLogLevel,
		"verbose":             false,
		"target.type":         sharedcfg.DefaultTarget,
	}
}

// LoadConfig loads configuration from defaults, .env, the config file,
// environment variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > .env > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")
	configFileUsed = ""
	dotEnvUsed = ""

	projectRoot := inferProjectRoot(cfgFile)

	// Paths given as flags are relative to CWD, not to the project root.
	flagPaths := map[string]string{}
	if flags != nil {
		for _, name := range []string{"data-dir", "log-dir", "output-dir", "database"} {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			v := f.Value.String()
			if v == "" || v == sharedcfg.DefaultDatabase {
				flagPaths[name] = v
				continue
			}
			if abs, err := filepath.Abs(v); err == nil {
				v = abs
			}
			flagPaths[name] = v
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load .env from the project root (only provider keys are used)
	if path := filepath.Join(projectRoot, DotEnvFile); fileExists(path) {
		if err := loadDotEnv(path); err != nil {
			return nil, err
		}
		dotEnvUsed = path
	}

	// 3. Find and load config file
	configFileUsed = findConfigFile(cfgFile, projectRoot)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 4. Load environment variables (REVAGENT_ prefix)
	// Transform: REVAGENT_MAX_RETRIES -> max_retries, REVAGENT_TARGET__TYPE -> target.type
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Load provider credentials from the environment
	// Empty variables do not override the .env file.
	if err := k.Load(env.ProviderWithValue("OPENAI_", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return providerEnv[key], value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 6. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, mapped := flagKeys[f.Name]
			if !mapped {
				// Transform kebab-case to snake_case for config keys
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			if key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 7. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot

	if cfg.Target == nil {
		cfg.Target = &TargetConfig{}
	}
	sharedcfg.ApplyTargetDefaults(cfg.Target)
	expandTargetEnvVars(cfg.Target)

	// 8. Resolve relative paths against the project root
	cfg.DataDir = pick(flagPaths["data-dir"], resolvePathRelativeTo(cfg.DataDir, projectRoot))
	cfg.LogDir = pick(flagPaths["log-dir"], resolvePathRelativeTo(cfg.LogDir, projectRoot))
	cfg.OutputDir = pick(flagPaths["output-dir"], resolvePathRelativeTo(cfg.OutputDir, projectRoot))
	if db := flagPaths["database"]; db != "" {
		cfg.Target.Database = db
	} else if cfg.Target.Type != "postgres" && cfg.Target.Database != sharedcfg.DefaultDatabase {
		cfg.Target.Database = resolvePathRelativeTo(cfg.Target.Database, projectRoot)
	}

	return &cfg, nil
}

// loadDotEnv reads provider credentials from a .env file into k.
func loadDotEnv(path string) error {
	dk := koanf.New(".")
	if err := dk.Load(file.Provider(path), dotenv.Parser()); err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	values := map[string]interface{}{}
	for name, key := range providerEnv {
		if v := dk.String(name); v != "" {
			values[key] = v
		}
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func pick(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetDotEnvUsed returns the path to the .env file that was read, if any.
func GetDotEnvUsed() string {
	return dotEnvUsed
}

// WithContext returns ctx carrying cfg and logger.
func WithContext(ctx context.Context, cfg *Config, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey{}, cfg)
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves the config stored by WithContext, or nil.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return nil
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandTargetEnvVars expands environment variables in sensitive target fields.
func expandTargetEnvVars(t *TargetConfig) {
	if t == nil {
		return
	}
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
}
