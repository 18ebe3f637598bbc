// Package config provides shared configuration types and defaults for revagent.
// It is decoupled from CLI concerns so the agent and its tests can use the
// same defaults without going through flag parsing.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/revagent/internal/adapter"
)

// TargetConfig holds the database the dataset is loaded into.
type TargetConfig struct {
	Type string `koanf:"type"` // sqlite, duckdb, postgres

	// File-based databases (SQLite, DuckDB): a path or ":memory:".
	// Network databases: the database name.
	Database string `koanf:"database"`

	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// Validate checks if the target configuration is valid.
// It uses the adapter registry to determine which adapter types are available.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}

	if strings.EqualFold(t.Type, "postgres") && t.Database == "" {
		return fmt.Errorf("target database is required for postgres")
	}

	return nil
}

// AdapterConfig converts the target into an adapter.Config.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	opts := make(map[string]string, len(t.Options))
	for k, v := range t.Options {
		opts[k] = v
	}
	return adapter.Config{
		Type:     strings.ToLower(t.Type),
		Path:     t.Database,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Options:  opts,
	}
}
