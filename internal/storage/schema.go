package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/fraud-desk/internal/common"
)

// SchemaVersion is the schema version this binary writes.
// A database reporting a newer version is refused.
const SchemaVersion = 1

const casesTable = "fraud_cases"

// createCasesTable is the only schema statement; it either creates the
// whole table or nothing.
const createCasesTable = `
	CREATE TABLE IF NOT EXISTS fraud_cases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		userName TEXT NOT NULL,
		securityIdentifier TEXT NOT NULL,
		cardEnding TEXT NOT NULL,
		status TEXT DEFAULT 'pending_review',
		transactionName TEXT NOT NULL,
		transactionAmount REAL NOT NULL,
		transactionTime TEXT NOT NULL,
		transactionCategory TEXT NOT NULL,
		transactionSource TEXT NOT NULL,
		transactionLocation TEXT NOT NULL,
		securityQuestion TEXT NOT NULL,
		securityAnswer TEXT NOT NULL,
		outcomeNote TEXT,
		createdAt DATETIME DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME DEFAULT CURRENT_TIMESTAMP
	)`

// Initialize creates the fraud_cases table when missing and seeds it with
// the sample cases when it is empty. It is safe to call on every startup.
func (s *SQLiteStorage) Initialize(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	return s.seedIfEmpty(ctx)
}

func (s *SQLiteStorage) ensureSchema(ctx context.Context) error {
	currentVersion, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if currentVersion > SchemaVersion {
		return fmt.Errorf("%w: database schema version %d is newer than supported version %d",
			common.ErrSchema, currentVersion, SchemaVersion)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", common.ErrStorageUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, createCasesTable); err != nil {
		return fmt.Errorf("%w: failed to create %s table: %w", common.ErrSchema, casesTable, err)
	}

	if currentVersion < SchemaVersion {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
			return fmt.Errorf("%w: failed to update schema version: %w", common.ErrSchema, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit schema: %w", common.ErrSchema, err)
	}

	if currentVersion < SchemaVersion {
		slog.Debug("Created fraud case schema", "version", SchemaVersion)
	}

	return nil
}

func (s *SQLiteStorage) schemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("%w: failed to get schema version: %w", common.ErrStorageUnavailable, err)
	}
	return version, nil
}
