package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkordes/servicelog/migrations"
	"github.com/pkordes/servicelog/testutil"
)

// TestMain applies all pending migrations to the test database once for the
// whole package, so individual tests never need to think about schema state.
// Without TEST_DATABASE_URL the integration tests skip themselves and only the
// query planner tests run.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		os.Exit(m.Run())
	}

	db := testutil.MustOpenSQLDB(dsn)
	if _, err := migrations.Up(context.Background(), db); err != nil {
		log.Fatalf("TestMain: %v", err)
	}
	db.Close()

	os.Exit(m.Run())
}
