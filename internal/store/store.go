// Package store persists thread snapshots per novel. The engine itself
// is snapshot-in/snapshot-out and owns no storage; this package is the
// persistence collaborator the CLI wires in between chapters.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/logging"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/thread"
)

// ErrNotFound is returned when a novel has no stored snapshot.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore is the persistence boundary the pipeline's callers use.
type SnapshotStore interface {
	LoadSnapshot(novelID string) (thread.Snapshot, error)
	SaveSnapshot(snap thread.Snapshot) error
	ListNovels() ([]string, error)
	Close() error
}

// Store is the SQLite-backed SnapshotStore.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewStore creates or opens the thread database under the workspace.
func NewStore(workspace string) (*Store, error) {
	dbPath := filepath.Join(workspace, ".jade", "threads.db")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// initSchema creates the database schema.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		novel_id   TEXT PRIMARY KEY,
		version    INTEGER NOT NULL,
		chapter    INTEGER NOT NULL,
		payload    TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshot_history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		novel_id   TEXT NOT NULL,
		version    INTEGER NOT NULL,
		chapter    INTEGER NOT NULL,
		payload    TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_novel ON snapshot_history(novel_id, version);
	`

	_, err := s.db.Exec(schema)
	return err
}

// LoadSnapshot returns the current snapshot for a novel, or ErrNotFound.
func (s *Store) LoadSnapshot(novelID string) (thread.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRow(
		`SELECT payload FROM snapshots WHERE novel_id = ?`, novelID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return thread.Snapshot{}, fmt.Errorf("novel %q: %w", novelID, ErrNotFound)
	}
	if err != nil {
		return thread.Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap thread.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return thread.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// SaveSnapshot upserts the current snapshot for a novel and appends it
// to the history table, so closed and abandoned threads stay auditable
// forever.
func (s *Store) SaveSnapshot(snap thread.Snapshot) error {
	if snap.NovelID == "" {
		return fmt.Errorf("snapshot has no novel id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO snapshots (novel_id, version, chapter, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(novel_id) DO UPDATE SET
			version = excluded.version,
			chapter = excluded.chapter,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		snap.NovelID, snap.Version, snap.Chapter, string(payload), now)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO snapshot_history (novel_id, version, chapter, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		snap.NovelID, snap.Version, snap.Chapter, string(payload), now)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	logging.Get(logging.CategoryStore).Info("saved snapshot: novel %s version %d chapter %d (%d threads)",
		snap.NovelID, snap.Version, snap.Chapter, len(snap.Threads))

	return nil
}

// ListNovels returns the novel ids with a stored snapshot.
func (s *Store) ListNovels() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT novel_id FROM snapshots ORDER BY novel_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list novels: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan novel id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
