// Package state persists CLI login sessions in a local SQLite database so
// consecutive goadmin invocations share one bearer token per backend.
//
// The schema is managed with goose migrations embedded in the binary and
// applied by Open.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/leapstack-labs/goadmin/pkg/core"
)

// ErrNotFound is returned when no session is stored for a backend.
var ErrNotFound = errors.New("session not found")

// Session is a persisted login, keyed by the backend base URL.
type Session struct {
	BaseURL   string
	Token     string
	User      *core.UserInfo
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the persistence contract used by the CLI.
type Store interface {
	SaveSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, baseURL string) (*Session, error)
	DeleteSession(ctx context.Context, baseURL string) error
	ListSessions(ctx context.Context) ([]*Session, error)
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
