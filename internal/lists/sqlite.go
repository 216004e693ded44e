package lists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"fantamorto/internal/services"
)

// SQLiteStore keeps lists in a local SQLite database, one row per key.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrConfigurationMissing, "lists", "open sqlite", "database path required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "lists", "open sqlite", "create database directory", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "lists", "open sqlite", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrPersistence, "lists", "open sqlite", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path, now: time.Now}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrPersistence, "lists", "open sqlite", "initialize schema", err)
	}
	return store, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// ReadList returns the list stored under key, or an empty list when the key
// has never been written.
func (s *SQLiteStore) ReadList(ctx context.Context, key string) ([]string, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	var payload string
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, "SELECT payload_json FROM lists WHERE key = ?", key).Scan(&payload)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "lists", "read", key, err)
	}
	names, err := Decode([]byte(payload))
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "lists", "read", key, err)
	}
	return names, nil
}

// WriteList replaces the list stored under key.
func (s *SQLiteStore) WriteList(ctx context.Context, key string, names []string) error {
	if err := validKey(key); err != nil {
		return err
	}
	payload, err := Encode(names)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "lists", "write", key, err)
	}
	err = retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`INSERT INTO lists (key, payload_json, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET payload_json = excluded.payload_json, updated_at = excluded.updated_at`,
			key, string(payload), s.now().UTC().Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return services.Wrap(services.ErrPersistence, "lists", "write", key, err)
	}
	return nil
}

// UpdatedAt reports when key was last written. ok is false for unknown keys.
func (s *SQLiteStore) UpdatedAt(ctx context.Context, key string) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT updated_at FROM lists WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, services.Wrap(services.ErrPersistence, "lists", "updated_at", key, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, services.Wrap(services.ErrPersistence, "lists", "updated_at", key, err)
	}
	return ts, true, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
