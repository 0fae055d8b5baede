// Package storagetest opens migrated in-memory databases for store tests.
package storagetest

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"gymdesk/internal/adapters/storage"
)

// Open returns a migrated in-memory SQLite database behind a TimedDB.
// The pool is pinned to one connection so every statement sees the same database.
func Open(t *testing.T) *storage.TimedDB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, storage.DialectSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return storage.NewTimedDB(db, storage.DialectSQLite, nil)
}

// Exec runs a fixture statement and fails the test on error.
func Exec(t *testing.T, db storage.SQLDB, query string, args ...any) {
	t.Helper()
	if _, err := db.ExecContext(context.Background(), query, args...); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
}

// SeedMember inserts a minimal active member row.
func SeedMember(t *testing.T, db storage.SQLDB, id, name string) {
	t.Helper()
	Exec(t, db, `INSERT INTO member (id, name, status, created_at) VALUES (?, ?, 'active', '2025-01-01T00:00:00.000000000Z')`, id, name)
}

// SeedStaff inserts a minimal active staff row.
func SeedStaff(t *testing.T, db storage.SQLDB, id, name, joiningDate string) {
	t.Helper()
	Exec(t, db, `INSERT INTO staff (id, name, role, status, joining_date, created_at) VALUES (?, ?, 'trainer', 'active', ?, '2025-01-01T00:00:00.000000000Z')`, id, name, joiningDate)
}
