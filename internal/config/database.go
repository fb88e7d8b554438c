package config

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/pressly/goose/v3"
	"github.com/rongwang/studyswap/internal/migrations"
)

// gooseUp is a seam for tests
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// SetupDatabase opens the SQL database selected by the storage driver and
// applies the schema migrations
func SetupDatabase(ctx context.Context, cfg *Config) (*sqlx.DB, error) {
	driverName, dsn, dialect, err := sqlTarget(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	if driverName == "sqlite3" {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	if err := migrate(ctx, db.DB, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func sqlTarget(cfg *Config) (driverName, dsn, dialect string, err error) {
	switch cfg.Storage.Driver {
	case DriverPostgres:
		return "postgres", cfg.Database.GetDSN(), "postgres", nil
	case DriverSQLite:
		return "sqlite3", cfg.Storage.SQLitePath, "sqlite3", nil
	default:
		return "", "", "", fmt.Errorf("storage driver %q is not SQL backed", cfg.Storage.Driver)
	}
}

func migrate(ctx context.Context, db *sql.DB, dialect string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return gooseUp(ctx, db, ".")
}
