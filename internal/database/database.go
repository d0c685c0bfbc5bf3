package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/splitledger/splitledger/internal/config"
)

// Open opens the snapshot database for the configured driver: a sqlite file
// (the default, suited to a single-host deployment) or postgres via pgx.
func Open(cfg config.Database) (*sql.DB, error) {
	switch cfg.Driver {
	case "", "sqlite":
		db, err := sql.Open("sqlite", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
		}
		return db, nil

	case "postgres":
		escapedPassword := strings.ReplaceAll(cfg.Pass, "'", "\\'")
		dsn := fmt.Sprintf("host=%s port=%d user=%s password='%s' dbname=%s sslmode=disable options='-c search_path=%s'",
			cfg.Host, cfg.Port, cfg.User, escapedPassword, cfg.Name, cfg.Schema)
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping postgres database: %w", err)
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// Migrate runs database migrations using golang-migrate against the open DB.
func Migrate(cfg config.Database, db *sql.DB) error {
	migrationsPath, err := findMigrationsPath()
	if err != nil {
		return fmt.Errorf("failed to locate migrations directory: %w", err)
	}
	sourceURL := "file://" + migrationsPath

	var m *migrate.Migrate
	switch cfg.Driver {
	case "", "sqlite":
		driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("failed to create sqlite migrate driver: %w", err)
		}
		m, err = migrate.NewWithDatabaseInstance(sourceURL, "sqlite", driver)
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
	case "postgres":
		driver, err := migratepg.WithInstance(db, &migratepg.Config{SchemaName: cfg.Schema})
		if err != nil {
			return fmt.Errorf("failed to create postgres migrate driver: %w", err)
		}
		m, err = migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
	default:
		return fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// findMigrationsPath walks up from the working directory until it finds a
// migrations directory, so the binary can run from the repo root or a
// subdirectory during development.
func findMigrationsPath() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find migrations directory")
		}
		dir = parent
	}
}
