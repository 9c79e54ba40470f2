package migration

import (
	"context"
	"fmt"

	"taguchi/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Statements returns the DDL executed by Run, in order
func (r *MigrationRunner) Statements() []string {
	return []string{
		createArraysTable,
		createAnalysesTable,
		"CREATE INDEX IF NOT EXISTS idx_arrays_created_at ON oa_arrays(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_arrays_shape ON oa_arrays(runs, factors)",
		"CREATE INDEX IF NOT EXISTS idx_analyses_array_id ON doe_analyses(array_id, analyzed_at DESC)",
	}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range r.Statements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.DatabaseError(fmt.Sprintf("migration %s failed", r.version), err)
		}
	}
	return nil
}

const createArraysTable = `
	CREATE TABLE IF NOT EXISTS oa_arrays (
		id UUID PRIMARY KEY,
		name TEXT,
		algorithm VARCHAR(64) NOT NULL,
		runs INTEGER NOT NULL,
		factors INTEGER NOT NULL,
		strength INTEGER NOT NULL,
		levels JSONB NOT NULL,
		data JSONB NOT NULL,
		notes TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`

const createAnalysesTable = `
	CREATE TABLE IF NOT EXISTS doe_analyses (
		id UUID PRIMARY KEY,
		array_id UUID NOT NULL REFERENCES oa_arrays(id) ON DELETE CASCADE,
		grand_mean DOUBLE PRECISION NOT NULL,
		result JSONB NOT NULL,
		analyzed_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`
