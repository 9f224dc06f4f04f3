package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const pingTimeout = 5 * time.Second

// Init opens the database. SQLite files get their directory created and a
// busy timeout so concurrent writers wait instead of failing with SQLITE_BUSY.
func Init(driver, connection string) (*sqlx.DB, error) {
	if driver == "sqlite" {
		if !isMemory(connection) {
			dir := filepath.Dir(sqlitePath(connection))
			err := os.MkdirAll(dir, 0755)
			if err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		connection = withBusyTimeout(connection)
	}

	db, err := sqlx.Open(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	configurePool(db, driver, connection)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connected", "driver", driver)
	return db, nil
}

func configurePool(db *sqlx.DB, driver, connection string) {
	switch {
	case driver == "sqlite" && isMemory(connection):
		// Every connection to an unshared memory database is a new, empty database
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case driver == "sqlite":
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
}

func isMemory(connection string) bool {
	return strings.HasPrefix(connection, ":memory:") || strings.Contains(connection, "mode=memory")
}

// sqlitePath strips the file: scheme and query from a SQLite DSN
func sqlitePath(connection string) string {
	path, _, _ := strings.Cut(strings.TrimPrefix(connection, "file:"), "?")
	return path
}

func withBusyTimeout(connection string) string {
	if strings.Contains(connection, "busy_timeout") {
		return connection
	}
	sep := "?"
	if strings.Contains(connection, "?") {
		sep = "&"
	}
	return connection + sep + "_pragma=busy_timeout(5000)"
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
