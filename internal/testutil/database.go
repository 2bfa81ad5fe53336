// Package testutil provides test utilities for the fraud-desk project.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/fraud-desk/internal/storage"
)

// TestDB is an initialized, seeded case database living in a temp directory.
type TestDB struct {
	Storage *storage.SQLiteStorage
	Path    string
	t       *testing.T
}

// SetupTestDB creates and initializes a file-backed test database.
// It is closed automatically when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	c, err := db.Storage.FindPendingCaseByUsername(ctx, "John Smith")
func SetupTestDB(t *testing.T, opts ...storage.Option) *TestDB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "fraud_cases.db")
	store, err := storage.NewSQLiteStorage(dbPath, opts...)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Initialize(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to initialize test database: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		Path:    dbPath,
		t:       t,
	}
}

// MustFindPending returns the pending case for username or fails the test.
func (db *TestDB) MustFindPending(username string) int64 {
	db.t.Helper()

	c, err := db.Storage.FindPendingCaseByUsername(context.Background(), username)
	if err != nil {
		db.t.Fatalf("failed to find pending case for %q: %v", username, err)
	}
	if c == nil {
		db.t.Fatalf("no pending case for %q", username)
	}
	return c.ID
}
