package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/fraud-desk/internal/common"
	"github.com/Veraticus/fraud-desk/internal/model"
)

// reopenDatabase opens the restored file; tests replace it.
var reopenDatabase = openDatabase

// Snapshot errors.
var (
	ErrSnapshotNotFound    = errors.New("snapshot not found")
	ErrSnapshotCorrupted   = errors.New("snapshot integrity check failed")
	ErrSnapshotExists      = errors.New("snapshot already exists")
	ErrSnapshotUnsupported = errors.New("snapshots require a file-backed database")
)

// SnapshotManager captures and restores copies of the case database.
type SnapshotManager struct {
	storage      *SQLiteStorage
	snapshotsDir string
}

// Snapshot describes a stored snapshot. It is persisted as <id>.meta.json.
type Snapshot struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	FileSize      int64     `json:"file_size"`
	CaseCount     int       `json:"case_count"`
	PendingCount  int       `json:"pending_count"`
	SchemaVersion int       `json:"schema_version"`
}

// NewSnapshotManager creates a snapshot manager storing snapshots next to
// the database in a "snapshots" directory.
func NewSnapshotManager(s *SQLiteStorage) (*SnapshotManager, error) {
	if s.dbPath == memoryPath {
		return nil, ErrSnapshotUnsupported
	}

	snapshotsDir := filepath.Join(filepath.Dir(s.dbPath), "snapshots")
	if err := os.MkdirAll(snapshotsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
	}

	return &SnapshotManager{
		storage:      s,
		snapshotsDir: snapshotsDir,
	}, nil
}

// Dir returns the directory snapshots are written to.
func (sm *SnapshotManager) Dir() string {
	return sm.snapshotsDir
}

// Create writes a new snapshot. An empty tag gets a timestamped name.
func (sm *SnapshotManager) Create(ctx context.Context, tag, description string) (*Snapshot, error) {
	if tag == "" {
		tag = fmt.Sprintf("snapshot-%s", time.Now().Format("2006-01-02-150405"))
	}
	if err := validateSnapshotTag(tag); err != nil {
		return nil, err
	}

	snapshotPath := sm.dataPath(tag)
	if _, err := os.Stat(snapshotPath); err == nil {
		return nil, ErrSnapshotExists
	}

	schemaVersion, err := sm.storage.schemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	caseCount, err := sm.storage.CountCases(ctx)
	if err != nil {
		return nil, err
	}
	pendingCount, err := sm.storage.CountCasesByStatus(ctx, model.StatusPendingReview)
	if err != nil {
		return nil, err
	}

	if err := sm.backupDatabase(ctx, snapshotPath); err != nil {
		return nil, fmt.Errorf("failed to backup database: %w", err)
	}

	info, err := os.Stat(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	snapshot := Snapshot{
		ID:            tag,
		CreatedAt:     time.Now(),
		Description:   description,
		FileSize:      info.Size(),
		CaseCount:     caseCount,
		PendingCount:  pendingCount,
		SchemaVersion: schemaVersion,
	}

	if err := saveMetadata(sm.metadataPath(tag), snapshot); err != nil {
		if rmErr := os.Remove(snapshotPath); rmErr != nil {
			common.LogError(rmErr, "failed to remove snapshot file after metadata save failure", common.Fields{"id": tag})
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	slog.Info("Created snapshot", "id", tag, "cases", caseCount)
	return &snapshot, nil
}

// List returns all snapshots, newest first. Unreadable metadata is skipped.
func (sm *SnapshotManager) List(_ context.Context) ([]Snapshot, error) {
	entries, err := os.ReadDir(sm.snapshotsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots directory: %w", err)
	}

	snapshots := make([]Snapshot, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}

		snapshot, err := loadMetadata(filepath.Join(sm.snapshotsDir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable snapshot metadata", "file", entry.Name(), "error", err)
			continue
		}
		snapshots = append(snapshots, *snapshot)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})

	return snapshots, nil
}

// Get returns the metadata of a single snapshot.
func (sm *SnapshotManager) Get(_ context.Context, tag string) (*Snapshot, error) {
	if err := validateSnapshotTag(tag); err != nil {
		return nil, err
	}

	snapshot, err := loadMetadata(sm.metadataPath(tag))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot metadata: %w", err)
	}
	return snapshot, nil
}

// Exists reports whether a snapshot database file is present for tag.
// Metadata is not required.
func (sm *SnapshotManager) Exists(tag string) (bool, error) {
	if err := validateSnapshotTag(tag); err != nil {
		return false, err
	}

	if _, err := os.Stat(sm.dataPath(tag)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to access snapshot: %w", err)
	}
	return true, nil
}

// Restore replaces the live database with the snapshot and reopens the
// storage on the restored file. If the reopen fails the storage is left
// closed and unusable; every later operation returns an error.
func (sm *SnapshotManager) Restore(ctx context.Context, tag string) error {
	if err := validateSnapshotTag(tag); err != nil {
		return err
	}

	snapshotPath := sm.dataPath(tag)
	if _, err := os.Stat(snapshotPath); err != nil {
		if os.IsNotExist(err) {
			return ErrSnapshotNotFound
		}
		return fmt.Errorf("failed to access snapshot: %w", err)
	}

	if err := verifyIntegrity(ctx, snapshotPath); err != nil {
		slog.Debug("snapshot integrity check failed", "id", tag, "error", err)
		return ErrSnapshotCorrupted
	}

	s := sm.storage
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	// WAL sidecars belong to the old file.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(s.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove database sidecar", "file", s.dbPath+suffix, "error", err)
		}
	}

	copyErr := copyFile(snapshotPath, s.dbPath)
	if copyErr != nil {
		copyErr = fmt.Errorf("failed to restore snapshot: %w", copyErr)
	}

	db, err := reopenDatabase(s.dbPath)
	if err != nil {
		return errors.Join(copyErr, fmt.Errorf("failed to reopen database: %w", err))
	}
	s.db = db

	if copyErr != nil {
		return copyErr
	}

	slog.Info("Restored snapshot", "id", tag)
	return nil
}

// Delete removes a snapshot and its metadata.
func (sm *SnapshotManager) Delete(_ context.Context, tag string) error {
	if err := validateSnapshotTag(tag); err != nil {
		return err
	}

	snapshotPath := sm.dataPath(tag)
	if _, err := os.Stat(snapshotPath); err != nil {
		if os.IsNotExist(err) {
			return ErrSnapshotNotFound
		}
		return fmt.Errorf("failed to access snapshot: %w", err)
	}

	if err := os.Remove(snapshotPath); err != nil {
		return fmt.Errorf("failed to remove snapshot file: %w", err)
	}

	metadataPath := sm.metadataPath(tag)
	if err := os.Remove(metadataPath); err != nil {
		slog.Debug("failed to remove metadata file", "error", err, "path", metadataPath)
	}

	return nil
}

func (sm *SnapshotManager) dataPath(tag string) string {
	return filepath.Join(sm.snapshotsDir, tag+".db")
}

func (sm *SnapshotManager) metadataPath(tag string) string {
	return filepath.Join(sm.snapshotsDir, tag+".meta.json")
}

func (sm *SnapshotManager) backupDatabase(ctx context.Context, destPath string) error {
	db := sm.storage.db

	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	// VACUUM INTO cannot take a bound parameter.
	if strings.ContainsAny(destPath, `'";`) {
		return fmt.Errorf("invalid destination path: contains forbidden characters")
	}
	if !filepath.IsAbs(destPath) || strings.Contains(destPath, "..") {
		return fmt.Errorf("invalid destination path")
	}

	// #nosec G201 - destPath is validated above to prevent SQL injection
	query := fmt.Sprintf("VACUUM INTO '%s'", destPath)
	if _, err := db.ExecContext(ctx, query); err != nil {
		slog.Debug("VACUUM INTO failed, falling back to file copy", "error", err)
		return copyFile(sm.storage.dbPath, destPath)
	}

	return nil
}

func copyFile(src, dst string) error {
	tmpDst := dst + ".tmp"

	// #nosec G304 - src is a database or snapshot path under our control
	source, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			slog.Error("failed to close source file", "error", closeErr)
		}
	}()

	// #nosec G304 - tmpDst is derived from a validated path
	destination, err := os.Create(filepath.Clean(tmpDst))
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmpDst)
		return err
	}

	if err := destination.Close(); err != nil {
		_ = os.Remove(tmpDst)
		return err
	}

	// Atomic rename
	return os.Rename(tmpDst, dst)
}

func saveMetadata(path string, snapshot Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

func loadMetadata(path string) (*Snapshot, error) {
	// #nosec G304 - path is built from a validated tag
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func verifyIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}

	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	return nil
}
