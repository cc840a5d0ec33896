// Package session holds the authenticated state of one console user: the
// bearer token, the user it belongs to, and the routes generated for them.
//
// A Session starts empty. Login initialises it and Logout tears it down,
// discarding the cached routes. All methods are safe for concurrent use.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/leapstack-labs/goadmin/internal/permission"
	"github.com/leapstack-labs/goadmin/pkg/core"
)

// ErrNoSession is returned when an operation needs a logged-in user.
var ErrNoSession = errors.New("not logged in")

// Session is the explicit replacement for ambient token and route globals.
type Session struct {
	mu     sync.RWMutex
	token  string
	user   *core.UserInfo
	claims *Claims
	routes *permission.Store
}

// New creates an empty session whose route cache loads menus from menus.
// A nil menus source is allowed for sessions that never generate routes.
func New(menus permission.MenuSource) *Session {
	return &Session{routes: permission.NewStore(menus)}
}

// Login installs token (and optionally the user it belongs to).
// Claims are decoded best-effort; an opaque token is still accepted.
func (s *Session) Login(token string, user *core.UserInfo) {
	claims, _ := ParseClaims(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	s.claims = claims
	s.routes.Reset()
}

// SetUser records the user info fetched after login.
func (s *Session) SetUser(user *core.UserInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// Logout discards the token, the user and the cached routes.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.claims = nil
	s.routes.Reset()
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Active reports whether a token is installed.
func (s *Session) Active() bool {
	return s.Token() != ""
}

// User returns the logged-in user, or nil.
func (s *Session) User() *core.UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// UserID returns the id of the logged-in user. It falls back to the
// identity claim of the token when user info has not been fetched yet.
func (s *Session) UserID() (uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return 0, ErrNoSession
	}
	if s.user != nil && s.user.ID != 0 {
		return s.user.ID, nil
	}
	if s.claims != nil && s.claims.UserID != 0 {
		return s.claims.UserID, nil
	}
	return 0, errors.New("user id unknown: fetch user info first")
}

// Claims returns the decoded token claims, or nil for opaque tokens.
func (s *Session) Claims() *Claims {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims
}

// Expired reports whether the token's exp claim lies before now.
// Tokens without an exp claim never expire client-side.
func (s *Session) Expired(now time.Time) bool {
	c := s.Claims()
	return c != nil && !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Routes returns the session's route cache.
func (s *Session) Routes() *permission.Store {
	return s.routes
}
