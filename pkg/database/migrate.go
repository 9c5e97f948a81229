package database

import (
	"errors"
	"fmt"

	"feather-finance/migrations"
	"feather-finance/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrator applies the embedded schema migrations for one database.
type Migrator struct {
	m *migrate.Migrate
}

type migrateLogger struct {
	log *logger.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l migrateLogger) Verbose() bool {
	return false
}

// NewMigrator builds a migrator over the dialect directory matching cfg.Driver.
func NewMigrator(cfg Config, log *logger.Logger) (*Migrator, error) {
	src, err := iofs.New(migrations.FS, cfg.driver())
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrationURL())
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	if log != nil {
		m.Log = migrateLogger{log: log}
	}

	return &Migrator{m: m}, nil
}

// Up applies every pending migration. Nothing to apply is not an error.
func (r *Migrator) Up() error {
	if err := r.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Down reverts the last applied migration.
func (r *Migrator) Down() error {
	if err := r.m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Reset reverts every applied migration.
func (r *Migrator) Reset() error {
	if err := r.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Force sets the recorded version without running anything, clearing the
// dirty flag after a failed migration has been fixed by hand.
func (r *Migrator) Force(version int) error {
	return r.m.Force(version)
}

// Version returns the current version; 0 means no migration has been applied.
func (r *Migrator) Version() (uint, bool, error) {
	version, dirty, err := r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close releases the source and database handles.
func (r *Migrator) Close() error {
	srcErr, dbErr := r.m.Close()
	return errors.Join(srcErr, dbErr)
}
