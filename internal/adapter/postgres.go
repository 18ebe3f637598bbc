package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

func init() {
	Register(Driver{
		Name:    "postgres",
		Dialect: "PostgreSQL",
		New:     func(logger *slog.Logger) Adapter { return NewPostgresAdapter(logger) },
	})
}

// PostgresAdapter implements the Adapter interface for PostgreSQL.
//
// The dataset is loaded into its own schema so a run never touches existing
// tables. Without Config.Schema a schema named revagent_<id> is created on
// Connect and dropped on Close.
type PostgresAdapter struct {
	BaseSQLAdapter
	schema    string
	ephemeral bool
}

// NewPostgresAdapter creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func NewPostgresAdapter(logger *slog.Logger) *PostgresAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PostgresAdapter{BaseSQLAdapter: BaseSQLAdapter{Logger: logger}}
}

// DialectName returns the SQL dialect for this adapter.
func (a *PostgresAdapter) DialectName() string {
	return "postgres"
}

// Schema returns the schema the adapter works in.
func (a *PostgresAdapter) Schema() string {
	return a.schema
}

// Connect establishes a connection to PostgreSQL and prepares the schema.
func (a *PostgresAdapter) Connect(ctx context.Context, cfg Config) error {
	schema := cfg.Schema
	ephemeral := false
	if schema == "" {
		schema = "revagent_" + uuid.NewString()[:8]
		ephemeral = true
	}
	schema = sanitizeIdentifier(schema)

	dsn := buildPostgresDSN(cfg)

	a.Logger.Debug("connecting to postgres",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database),
		slog.String("schema", schema),
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	// Session settings (search_path, timeouts) must hold for every query.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	stmts := []string{
		"CREATE SCHEMA IF NOT EXISTS " + schema,
		"SET search_path TO " + schema,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to prepare schema %s: %w", schema, err)
		}
	}

	a.DB = db
	a.Cfg = cfg
	a.schema = schema
	a.ephemeral = ephemeral
	return nil
}

// Close drops the throwaway schema, if one was created, and closes the connection.
func (a *PostgresAdapter) Close() error {
	if a.DB != nil && a.ephemeral {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := a.DB.ExecContext(ctx, "DROP SCHEMA IF EXISTS "+a.schema+" CASCADE"); err != nil {
			a.Logger.Warn("failed to drop schema", slog.String("schema", a.schema), slog.String("error", err.Error()))
		}
	}
	return a.BaseSQLAdapter.Close()
}

// SetQueryTimeout sets statement_timeout and lock_timeout for the session.
func (a *PostgresAdapter) SetQueryTimeout(ctx context.Context, d time.Duration) error {
	ms := d.Milliseconds()
	if err := a.Exec(ctx, fmt.Sprintf("SET statement_timeout = %d", ms)); err != nil {
		return err
	}
	return a.Exec(ctx, fmt.Sprintf("SET lock_timeout = %d", ms))
}

// Placeholder returns "$n".
func (a *PostgresAdapter) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg Config) string {
	// Build key=value format: host=localhost port=5432 user=postgres ...
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}

// sanitizeIdentifier makes a name usable as an unquoted identifier,
// quoting it when it is a reserved word.
func sanitizeIdentifier(name string) string {
	safe := strings.ReplaceAll(name, " ", "_")
	safe = strings.ReplaceAll(safe, "-", "_")
	if strings.ContainsAny(safe, "()[]{}") || isReservedWord(safe) {
		return fmt.Sprintf(`"%s"`, safe)
	}
	return safe
}

// isReservedWord checks if a name is a PostgreSQL reserved word.
func isReservedWord(name string) bool {
	reserved := map[string]bool{
		"user": true, "order": true, "group": true, "table": true,
		"select": true, "from": true, "where": true, "index": true,
	}
	return reserved[strings.ToLower(name)]
}

// Ensure PostgresAdapter implements Adapter interface
var _ Adapter = (*PostgresAdapter)(nil)
