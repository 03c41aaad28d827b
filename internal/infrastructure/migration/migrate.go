package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator applies versioned SQL migrations from a directory against
// a postgres database
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New wraps an open database connection in a Migrator reading from
// migrationsPath
func New(db *sql.DB, migrationsPath string, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{m: m, log: log}, nil
}

// Up applies all pending migrations
func (mg *Migrator) Up() error {
	mg.log.Info("Applying pending migrations")

	if done, err := noChange(mg.m.Up()); err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	} else if done {
		mg.log.Info("Schema already up to date")
		return nil
	}

	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	mg.log.Info("Migrations applied",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Down rolls back every applied migration
func (mg *Migrator) Down() error {
	mg.log.Info("Rolling back all migrations")

	if done, err := noChange(mg.m.Down()); err != nil {
		return fmt.Errorf("migration down failed: %w", err)
	} else if done {
		mg.log.Info("Nothing to roll back")
		return nil
	}

	mg.log.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations, negative n rolls back
func (mg *Migrator) Steps(n int) error {
	mg.log.Info("Stepping migrations", zap.Int("steps", n))

	if done, err := noChange(mg.m.Steps(n)); err != nil {
		return fmt.Errorf("migration steps failed: %w", err)
	} else if done {
		mg.log.Info("Schema already up to date")
		return nil
	}

	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	mg.log.Info("Migration steps applied",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Version reports the current schema version. A database with no applied
// migrations reports version 0
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, nil
}

// Force overwrites the recorded schema version without running any SQL.
// Only for recovering a dirty migration state
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Forcing schema version", zap.Int("version", version))

	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every object in the database, data included
func (mg *Migrator) Drop() error {
	mg.log.Warn("Dropping all database objects")

	if err := mg.m.Drop(); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}
	mg.log.Info("Database dropped")
	return nil
}

// Close releases the source and database handles
func (mg *Migrator) Close() error {
	sourceErr, dbErr := mg.m.Close()
	if sourceErr != nil {
		return fmt.Errorf("failed to close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close migration database handle: %w", dbErr)
	}
	return nil
}

// noChange collapses migrate.ErrNoChange into a boolean so callers can log
// an up-to-date schema instead of treating it as a failure
func noChange(err error) (bool, error) {
	if errors.Is(err, migrate.ErrNoChange) {
		return true, nil
	}
	return false, err
}
