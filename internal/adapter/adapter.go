// Package adapter provides the database adapters the royalties dataset is
// loaded into and queried through.
package adapter

import (
	"context"
	"database/sql"
	"time"
)

// Config holds the configuration for connecting to a database.
type Config struct {
	// Type specifies the database type (e.g., "sqlite", "duckdb", "postgres")
	Type string

	// Path is the file path for file-based databases (e.g., SQLite, DuckDB)
	// Use ":memory:" for in-memory databases
	Path string

	// Host is the hostname for network-based databases
	Host string

	// Port is the port number for network-based databases
	Port int

	// Database is the database name
	Database string

	// Username for authentication
	Username string

	// Password for authentication
	Password string

	// Schema is the schema to load into. Postgres creates a throwaway
	// schema when it is empty.
	Schema string

	// Options contains additional driver-specific options
	Options map[string]string
}

// Rows wraps sql.Rows to provide a consistent interface across adapters.
type Rows struct {
	*sql.Rows
}

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows (e.g., INSERT, CREATE).
	// Placeholders in sql are written with Placeholder.
	Exec(ctx context.Context, sql string, args ...any) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// SetQueryTimeout sets the engine-side busy/lock timeout for later queries.
	SetQueryTimeout(ctx context.Context, d time.Duration) error

	// Placeholder returns the bind parameter marker for the n-th argument (1-based).
	Placeholder(n int) string

	// DialectName returns the SQL dialect name for this adapter (e.g., "sqlite", "postgres").
	DialectName() string
}
