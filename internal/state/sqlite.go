package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/goadmin/pkg/core"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a store; call Open before use.
// A nil logger discards output.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// NewWithDB wraps an existing connection, skipping Open.
func NewWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// Open opens (creating if needed) the database at path.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps :memory: databases shared across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.logger.Debug("opened state database", "path", path)
	s.db = db
	s.path = path

	if err := s.InitSchema(context.Background()); err != nil {
		_ = s.Close()
		s.db = nil
		return err
	}
	return nil
}

// Path returns the database path given to Open.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSession inserts or replaces the session for sess.BaseURL.
func (s *SQLiteStore) SaveSession(ctx context.Context, sess *Session) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if sess == nil || sess.BaseURL == "" {
		return errors.New("session base url is required")
	}

	var userJSON sql.NullString
	if sess.User != nil {
		raw, err := json.Marshal(sess.User)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		userJSON = sql.NullString{String: string(raw), Valid: true}
	}

	var expires sql.NullTime
	if sess.ExpiresAt != nil {
		expires = sql.NullTime{Time: sess.ExpiresAt.UTC(), Valid: true}
	}

	now := time.Now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	s.logger.Debug("saving session", slog.String("base_url", sess.BaseURL))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (base_url, token, user_json, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(base_url) DO UPDATE SET
			token = excluded.token,
			user_json = excluded.user_json,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		sess.BaseURL, sess.Token, userJSON, expires, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns the session stored for baseURL, or ErrNotFound.
func (s *SQLiteStore) GetSession(ctx context.Context, baseURL string) (*Session, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT base_url, token, user_json, expires_at, created_at, updated_at
		FROM sessions WHERE base_url = ?`, baseURL)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, baseURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// DeleteSession removes the session for baseURL. Deleting a missing
// session is not an error.
func (s *SQLiteStore) DeleteSession(ctx context.Context, baseURL string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	s.logger.Debug("deleting session", slog.String("base_url", baseURL))
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE base_url = ?`, baseURL); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListSessions returns all stored sessions, most recently used first.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]*Session, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT base_url, token, user_json, expires_at, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC, base_url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var (
		sess     Session
		userJSON sql.NullString
		expires  sql.NullTime
	)
	if err := row.Scan(&sess.BaseURL, &sess.Token, &userJSON, &expires, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
		return nil, err
	}
	if userJSON.Valid && userJSON.String != "" {
		sess.User = &core.UserInfo{}
		if err := json.Unmarshal([]byte(userJSON.String), sess.User); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
	}
	if expires.Valid {
		t := expires.Time
		sess.ExpiresAt = &t
	}
	return &sess, nil
}
