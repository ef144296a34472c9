package sqldb

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/riskibarqy/elo-championship/db"
)

// NewMigrator builds a migrator over the embedded migrations for driver. It
// owns its own connection; closing the migrator closes it.
func NewMigrator(opts Options) (*migrate.Migrate, error) {
	dsn, err := DSN(opts)
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(db.Migrations, "migrations/"+opts.Driver)
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	sqlDB, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Driver, err)
	}

	var driver database.Driver
	switch opts.Driver {
	case DriverPostgres:
		driver, err = postgres.WithInstance(sqlDB, &postgres.Config{})
	case DriverSQLite:
		driver, err = sqlite.WithInstance(sqlDB, &sqlite.Config{})
	}
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("init %s migration driver: %w", opts.Driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, opts.Driver, driver)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// MigrateUp applies every pending migration.
func MigrateUp(opts Options) error {
	m, err := NewMigrator(opts)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
