package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"telar/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Manager owns the database connection pool and exposes the query primitives
// the repositories build on.
type Manager struct {
	db     *sql.DB
	logger *zap.Logger
	config *config.DatabaseConfig
}

// NewManager opens the connection pool and verifies connectivity with
// exponential backoff before handing the manager out.
func NewManager(cfg *config.DatabaseConfig, logger *zap.Logger) (*Manager, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	ping := func() error { return db.PingContext(ctx) }
	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	if err := backoff.Retry(ping, policy); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection pool initialized",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
	)

	return &Manager{db: db, logger: logger, config: cfg}, nil
}

// DB returns the underlying *sql.DB for advanced operations
func (m *Manager) DB() *sql.DB {
	return m.db
}

// Migrate runs all pending SQL migrations from the configured path
func (m *Manager) Migrate(migrationsPath string) error {
	driver, err := postgres.WithInstance(m.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsPath,
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := migrator.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	m.logger.Info("Database migrations applied",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)

	return nil
}

// ExecContext executes a statement, logging slow executions
func (m *Manager) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := m.db.ExecContext(ctx, query, args...)
	m.observeQuery(query, time.Since(start), err)
	return result, err
}

// QueryContext executes a query that returns rows, logging slow executions
func (m *Manager) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := m.db.QueryContext(ctx, query, args...)
	m.observeQuery(query, time.Since(start), err)
	return rows, err
}

// QueryRowContext executes a query that returns at most one row
func (m *Manager) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := m.db.QueryRowContext(ctx, query, args...)
	m.observeQuery(query, time.Since(start), nil)
	return row
}

// BeginTx starts a transaction
func (m *Manager) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return m.db.BeginTx(ctx, opts)
}

// Health pings the database within the given context
func (m *Manager) Health(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// Stats returns pool statistics
func (m *Manager) Stats() sql.DBStats {
	return m.db.Stats()
}

// Close shuts down the connection pool
func (m *Manager) Close() error {
	m.logger.Info("Closing database connection pool")
	return m.db.Close()
}

func (m *Manager) observeQuery(query string, duration time.Duration, err error) {
	if err != nil && err != sql.ErrNoRows {
		m.logger.Error("Query execution failed",
			zap.String("query", truncateQuery(query)),
			zap.Error(err),
		)
		return
	}

	if duration > m.config.SlowQueryThreshold {
		m.logger.Warn("Slow query detected",
			zap.String("query", truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	} else if m.config.EnableQueryLogging {
		m.logger.Debug("Query executed",
			zap.String("query", truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}
}

// truncateQuery truncates long queries for logging
func truncateQuery(query string) string {
	const maxLength = 200
	if len(query) <= maxLength {
		return query
	}
	return query[:maxLength] + "..."
}
