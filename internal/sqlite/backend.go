// Package sqlite implements a storage medium backed by a single SQLite
// table. Each key is a row holding the collection's JSON array.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("sqlite store is closed")

// Store implements types.Medium over modernc.org/sqlite. The database
// persists across Open calls.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string

	// now is overridden in tests.
	now func() time.Time
}

var _ types.Medium = (*Store)(nil)

// Open creates dataDir if it does not exist, opens dataDir/shelf.db and
// applies the schema.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	// A single connection keeps every statement on the same SQLite handle.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}

	return &Store{db: db, path: dbPath, now: time.Now}, nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Get returns the value stored under key, or types.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrClosed
	}

	var value string
	err := s.db.QueryRowContext(ctx, selectValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return []byte(value), nil
}

// Put upserts the row for key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return ErrClosed
	}

	updatedAt := s.now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, upsertEntry, key, string(value), updatedAt); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Keys lists every key in the entries table, sorted.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, selectKeys)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	return keys, nil
}

// UpdatedAt returns when key was last written.
func (s *Store) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return time.Time{}, ErrClosed
	}

	var ts string
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM entries WHERE key = ?`, key).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, types.ErrKeyNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading %s: %w", key, err)
	}
	return time.Parse(time.RFC3339, ts)
}

// Close releases the database handle. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
