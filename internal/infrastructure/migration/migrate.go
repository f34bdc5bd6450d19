// Package migration applies the SQL migration pairs under migrations/
// through golang-migrate, wired to the service configuration. The row
// level security policies live in those files, so every environment
// reaches its schema through this one path, running as the owning role
// the policies do not bind.
package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mfg/backend/internal/infrastructure/config"
)

// Runner drives schema migrations against the configured database
type Runner struct {
	migrate *migrate.Migrate
	log     *zap.Logger
}

// NewRunner connects to the database described by cfg and prepares the
// file-sourced migrations found at path.
func NewRunner(cfg *config.DatabaseConfig, path string, log *zap.Logger) (*Runner, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, cfg.DBName, driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration source %s: %w", path, err)
	}

	return &Runner{migrate: m, log: log}, nil
}

// Up applies every pending migration
func (r *Runner) Up() error {
	err := r.migrate.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		r.log.Info("Schema is up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := r.Version()
	if err != nil {
		return err
	}
	r.log.Info("Schema migrated",
		zap.Uint("schema_version", version),
		zap.Bool("dirty", dirty))
	return nil
}

// Rollback reverts the most recent migration. Reverting further means
// running it once per step, which keeps accidental full rollbacks out
// of reach.
func (r *Runner) Rollback() error {
	err := r.migrate.Steps(-1)
	if errors.Is(err, migrate.ErrNoChange) {
		r.log.Info("Nothing to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("roll back migration: %w", err)
	}

	version, dirty, err := r.Version()
	if err != nil {
		return err
	}
	r.log.Info("Schema rolled back one version",
		zap.Uint("schema_version", version),
		zap.Bool("dirty", dirty))
	return nil
}

// Version reports the current schema version. A database with no
// applied migrations reports version zero.
func (r *Runner) Version() (uint, bool, error) {
	version, dirty, err := r.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// Force overwrites the recorded schema version without running any SQL.
// Only for repairing a dirty version record after a failed migration.
func (r *Runner) Force(version int) error {
	r.log.Warn("Forcing schema version", zap.Int("schema_version", version))
	if err := r.migrate.Force(version); err != nil {
		return fmt.Errorf("force schema version %d: %w", version, err)
	}
	return nil
}

// Close releases the migration source and the database connection
func (r *Runner) Close() error {
	sourceErr, dbErr := r.migrate.Close()
	if sourceErr != nil {
		return fmt.Errorf("close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close database: %w", dbErr)
	}
	return nil
}
