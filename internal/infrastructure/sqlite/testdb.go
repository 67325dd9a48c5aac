package sqlite

import (
	"database/sql"
	"testing"
)

// OpenTestDB opens a migrated in-memory database that is closed when
// the test ends.
func OpenTestDB(tb testing.TB) *sql.DB {
	tb.Helper()
	db, err := Open(":memory:")
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	tb.Cleanup(func() { db.Close() })
	return db
}
