package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings the schema at dbPath up to date and returns the
// resulting schema version.
func RunMigrations(dbPath string) (uint, error) {
	// Migrations use their own connection; the golang-migrate driver closes it.
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open migration database: %w", err)
	}

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		migrateDB.Close()
		return 0, fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	slog.Info("SQLite schema ready", "db_path", dbPath, "version", version)
	return version, nil
}
