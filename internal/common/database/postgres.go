// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"premium-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// NewPostgresFromDB wraps an existing handle, e.g. a sqlmock connection.
func NewPostgresFromDB(db *sql.DB) *PostgresClient {
	return &PostgresClient{DB: db}
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// schemaStatements create the tables read by the predict-premium worker and
// written by the postgres audit sink.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS applicants (
		id                   TEXT PRIMARY KEY,
		age                  INTEGER NOT NULL,
		number_of_dependants INTEGER NOT NULL DEFAULT 0,
		income_lakhs         DOUBLE PRECISION NOT NULL DEFAULT 0,
		genetical_risk       INTEGER NOT NULL DEFAULT 0,
		insurance_plan       TEXT NOT NULL,
		employment_status    TEXT NOT NULL,
		gender               TEXT NOT NULL,
		marital_status       TEXT NOT NULL,
		bmi_category         TEXT NOT NULL,
		smoking_status       TEXT NOT NULL,
		region               TEXT NOT NULL,
		medical_history      TEXT NOT NULL,
		email                TEXT,
		phone                TEXT,
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS premium_predictions (
		id             UUID PRIMARY KEY,
		band           TEXT NOT NULL,
		policy_version TEXT NOT NULL,
		applicant      JSONB NOT NULL,
		features       JSONB NOT NULL,
		model_input    JSONB NOT NULL,
		premium        DOUBLE PRECISION NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS premium_predictions_created_at_idx ON premium_predictions (created_at)`,
}

// Migrate creates the service tables if they do not exist.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}

// Query executes a query that returns rows
func (c *PostgresClient) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.DB.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that returns at most one row
func (c *PostgresClient) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.DB.QueryRowContext(ctx, query, args...)
}

// Exec executes a query that doesn't return rows
func (c *PostgresClient) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.DB.ExecContext(ctx, query, args...)
}
