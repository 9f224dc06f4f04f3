package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/templui/catalog/internal/db"
)

var dbSeq int64

// DB opens a fresh in-memory SQLite database with all migrations applied.
// The database is closed when the test ends.
func DB(t *testing.T) *sqlx.DB {
	t.Helper()

	seq := atomic.AddInt64(&dbSeq, 1)
	dsn := fmt.Sprintf("file:catalog_test_%d?mode=memory&cache=shared", seq)

	database, err := db.Init("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	database.SetMaxOpenConns(1)
	database.SetMaxIdleConns(1)
	t.Cleanup(func() {
		_ = db.Close(database)
	})

	err = db.RunMigrations(context.Background(), database.DB, "sqlite")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return database
}
