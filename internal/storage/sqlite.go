package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/fraud-desk/internal/common"
	"github.com/Veraticus/fraud-desk/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const memoryPath = ":memory:"

var _ service.CaseStore = (*SQLiteStorage)(nil)

// SQLiteStorage implements the CaseStore interface using SQLite.
type SQLiteStorage struct {
	now          func() time.Time
	db           *sql.DB
	dbPath       string
	strictStatus bool
}

// Option configures a SQLiteStorage.
type Option func(*SQLiteStorage)

// WithStrictStatus makes UpdateCaseStatus reject statuses outside model.KnownStatuses.
func WithStrictStatus(strict bool) Option {
	return func(s *SQLiteStorage) {
		s.strictStatus = strict
	}
}

// WithClock overrides the time source used for updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStorage) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSQLiteStorage creates a new SQLite storage instance.
// The schema is not touched until Initialize is called.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	// Validate input
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != memoryPath {
		abs, err := filepath.Abs(dbPath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to resolve database path: %w", common.ErrStorageUnavailable, err)
		}
		dbPath = abs

		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("%w: failed to create database directory: %w", common.ErrStorageUnavailable, err)
		}
	}

	s := &SQLiteStorage{
		dbPath: dbPath,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	s.db = db

	return s, nil
}

func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", common.ErrStorageUnavailable, err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite doesn't benefit from multiple connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Test connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %w", common.ErrStorageUnavailable, err)
	}

	return db, nil
}

// Path returns the absolute database path, or ":memory:".
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// NewSnapshotManager creates a snapshot manager for this storage instance.
func (s *SQLiteStorage) NewSnapshotManager() (*SnapshotManager, error) {
	return NewSnapshotManager(s)
}

// queryable is satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
