package postgres

import (
	"context"
	"fmt"
)

// Migration represents a single schema migration.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations holds all schema migrations in order.
var migrations = []Migration{
	{
		Version:     1,
		Description: "create schema_migrations table",
		SQL: `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version     INTEGER PRIMARY KEY,
				description TEXT NOT NULL,
				applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
	},
	{
		Version:     2,
		Description: "create assessments table",
		SQL: `
			CREATE TABLE IF NOT EXISTS assessments (
				id         UUID PRIMARY KEY,
				metrics    JSONB NOT NULL,
				label      VARCHAR(32) NOT NULL,
				tips       JSONB NOT NULL DEFAULT '[]'::jsonb,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
	},
	{
		Version:     3,
		Description: "create assessments created_at index",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_assessments_created_at
				ON assessments (created_at DESC)`,
	},
	{
		Version:     4,
		Description: "create assessments label index",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_assessments_label
				ON assessments (label)`,
	},
}

// Migrator applies schema migrations.
type Migrator struct {
	conn *Connection
}

// NewMigrator creates a migrator bound to a connection.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn}
}

// Migrate applies all pending migrations in order.
func (m *Migrator) Migrate(ctx context.Context) error {
	// Bootstrap: the migrations table must exist before we can check versions.
	if _, err := m.conn.Exec(ctx, migrations[0].SQL); err != nil {
		return fmt.Errorf("%w: bootstrap: %v", ErrMigrationFailed, err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		if applied[mig.Version] {
			continue
		}

		if _, err := m.conn.Exec(ctx, mig.SQL); err != nil {
			return fmt.Errorf("%w: version %d (%s): %v", ErrMigrationFailed, mig.Version, mig.Description, err)
		}

		_, err := m.conn.Exec(ctx,
			`INSERT INTO schema_migrations (version, description) VALUES ($1, $2)
			 ON CONFLICT (version) DO NOTHING`,
			mig.Version, mig.Description)
		if err != nil {
			return fmt.Errorf("%w: recording version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}

	return nil
}

// Status returns the set of applied migration versions.
func (m *Migrator) Status(ctx context.Context) ([]int, error) {
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	versions := make([]int, 0, len(applied))
	for v := range applied {
		versions = append(versions, v)
	}
	return versions, nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := m.conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("%w: reading applied versions: %v", ErrMigrationFailed, err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%w: scanning version: %v", ErrMigrationFailed, err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}
