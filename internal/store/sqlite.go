package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/growwise/growwise-client/internal/domain"
	"github.com/growwise/growwise-client/internal/shared"
	_ "modernc.org/sqlite"
)

const (
	writeRetries   = 3
	writeBaseDelay = 50 * time.Millisecond
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single writer; the snapshot is overwritten as a whole.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS client_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM client_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) put(ctx context.Context, values map[string]string) error {
	return shared.RetryOnConflict(ctx, "put", writeRetries, writeBaseDelay, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		now := time.Now().Unix()
		for key, value := range values {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET
					value = excluded.value,
					updated_at = excluded.updated_at`,
				key, value, now)
			if err != nil {
				return fmt.Errorf("write %s: %w", key, err)
			}
		}
		return tx.Commit()
	})
}

func (s *SQLiteStore) remove(ctx context.Context, keys ...string) error {
	return shared.RetryOnConflict(ctx, "remove", writeRetries, writeBaseDelay, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, key := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM client_state WHERE key = ?`, key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}
		return tx.Commit()
	})
}

// LoadState returns the stored snapshot, or nil when nothing is stored.
func (s *SQLiteStore) LoadState(ctx context.Context) (*domain.AppState, error) {
	raw, ok, err := s.get(ctx, StateKey)
	if err != nil || !ok {
		return nil, err
	}
	return decodeState(raw)
}

// SaveState overwrites the stored snapshot.
func (s *SQLiteStore) SaveState(ctx context.Context, st domain.AppState) error {
	raw, err := encodeState(st)
	if err != nil {
		return err
	}
	if err := s.put(ctx, map[string]string{StateKey: raw}); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// ClearState removes the stored snapshot.
func (s *SQLiteStore) ClearState(ctx context.Context) error {
	if err := s.remove(ctx, StateKey); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	return nil
}

// SaveCredentials stores the access token and email together.
func (s *SQLiteStore) SaveCredentials(ctx context.Context, accessToken, email string) error {
	if err := s.put(ctx, map[string]string{AccessTokenKey: accessToken, UserEmailKey: email}); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// AccessToken returns the stored access token, or "".
func (s *SQLiteStore) AccessToken(ctx context.Context) (string, error) {
	v, _, err := s.get(ctx, AccessTokenKey)
	return v, err
}

// UserEmail returns the stored email, or "".
func (s *SQLiteStore) UserEmail(ctx context.Context) (string, error) {
	v, _, err := s.get(ctx, UserEmailKey)
	return v, err
}

// ClearCredentials removes the token and email.
func (s *SQLiteStore) ClearCredentials(ctx context.Context) error {
	if err := s.remove(ctx, AccessTokenKey, UserEmailKey); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

var _ Repository = (*SQLiteStore)(nil)
