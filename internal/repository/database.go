package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

type Database struct {
	db *sql.DB
}

type DatabaseConfig struct {
	DSN            string
	MigrationsPath string
}

func NewDatabase(ctx context.Context, cfg DatabaseConfig) (*Database, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	absPath, err := filepath.Abs(cfg.MigrationsPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to get absolute path for migrations: %w", err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		db.Close()
		return nil, fmt.Errorf("migrations directory does not exist: %s", absPath)
	}

	database := &Database{db: db}
	if err := database.Migrate(absPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return database, nil
}

func (d *Database) Migrate(migrationsPath string) error {
	driver, err := postgres.WithInstance(d.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}

	migrationsURL := "file://" + filepath.ToSlash(migrationsPath)
	m, err := migrate.NewWithDatabaseInstance(
		migrationsURL,
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return d.db.BeginTx(ctx, nil)
}
