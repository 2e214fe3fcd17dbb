// Package pgtest prepares a clean ledger schema for integration tests.
package pgtest

import (
	"context"
	"os"
	"testing"

	"github.com/ayo6706/org-balance-ledger/internal/db"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Setup connects to DATABASE_URL, applies migrations and truncates the ledger
// tables. The test is skipped when no database is configured.
func Setup(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, connString, 20)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, "TRUNCATE TABLE balance_logs, payments, organizations RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("Failed to truncate ledger tables: %v", err)
	}
	return pool
}
