// Package store persists optimization runs to PostgreSQL: the run header,
// nonzero flows and plant decisions. It exists for fleets of scenario runs
// that get compared after the fact; a one-off run can skip it entirely.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore handles run persistence using PostgreSQL
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a new PostgreSQL-backed run store
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pooling configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGStore{pool: pool}

	// Create tables if they don't exist
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

func (s *PGStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		objective_usd_per_day DOUBLE PRECISION,
		network_nodes INTEGER NOT NULL,
		network_edges INTEGER NOT NULL,
		problem_columns INTEGER NOT NULL,
		problem_rows INTEGER NOT NULL,
		build_ms BIGINT NOT NULL,
		solve_ms BIGINT NOT NULL,
		settings JSONB
	);

	CREATE TABLE IF NOT EXISTS run_flows (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		from_node TEXT NOT NULL,
		to_node TEXT NOT NULL,
		tons_per_day DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, from_node, to_node)
	);

	CREATE TABLE IF NOT EXISTS run_plants (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		node_id TEXT NOT NULL,
		hub TEXT NOT NULL,
		technology TEXT NOT NULL,
		built BOOLEAN NOT NULL,
		capacity_tons_per_day DOUBLE PRECISION NOT NULL,
		output_tons_per_day DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, node_id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_run_plants_hub ON run_plants(hub);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Ping checks database connectivity
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}
