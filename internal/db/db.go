package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

//go:embed migrations
var migrationFS embed.FS

// Open connects to the configured database. SQLite is limited to a single
// connection, which also serialises concurrent schedule generation.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		db, err := sqlx.Connect(DriverSQLite, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)

		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}

		slog.Info("Database connected.", "driver", driver)
		return db, nil

	case DriverPostgres:
		db, err := sqlx.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxIdleTime(15 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping postgres: %w", err)
		}

		slog.Info("Database connected.", "driver", driver)
		return db, nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// RunMigrations applies the embedded migration set matching the connection's driver.
func RunMigrations(database *sqlx.DB) error {
	driverName := database.DriverName()

	src, err := iofs.New(migrationFS, "migrations/"+driverName)
	if err != nil {
		return fmt.Errorf("failed to load migrations for %s: %w", driverName, err)
	}

	var m *migrate.Migrate
	switch driverName {
	case DriverSQLite:
		driver, err := migratesqlite.WithInstance(database.DB, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("failed to create migrate driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, DriverSQLite, driver)
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
	case DriverPostgres:
		driver, err := migratepostgres.WithInstance(database.DB, &migratepostgres.Config{})
		if err != nil {
			return fmt.Errorf("failed to create migrate driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, DriverPostgres, driver)
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", driverName)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		slog.Info("Migrations applied.", "version", version, "dirty", dirty)
	}
	return nil
}
