// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"luxeleads/internal/db"
)

// TestDatabaseURL returns TEST_DATABASE_URL, skipping the test when it is unset.
func TestDatabaseURL(t *testing.T) string {
	t.Helper()
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	return connString
}

// TestDB connects to the test database, runs migrations and truncates the lead
// tables. The pool is closed and the tables emptied again on cleanup.
func TestDB(t *testing.T) *db.DB {
	t.Helper()

	connString := TestDatabaseURL(t)
	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupTestData(ctx, database.Pool)
	t.Cleanup(func() {
		cleanupTestData(ctx, database.Pool)
		database.Close()
	})

	return database
}

func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	// Delete in order to respect foreign keys
	pool.Exec(ctx, "DELETE FROM lead_statuses")
	pool.Exec(ctx, "DELETE FROM leads")
	pool.Exec(ctx, "DELETE FROM lead_scores")
}
