package api

import (
	"context"
	"net/http"

	"github.com/leapstack-labs/goadmin/pkg/core"
)

// Base wraps the unauthenticated /base endpoints.
type Base struct {
	c Doer
}

// Login exchanges credentials for a bearer token.
func (s *Base) Login(ctx context.Context, body core.LoginRequest) (*LoginResult, error) {
	return decode[LoginResult](ctx, s.c, send(http.MethodPost, path("/base/login"), body))
}

// Logout invalidates the current token server-side.
func (s *Base) Logout(ctx context.Context) (*core.Envelope, error) {
	return mutate(ctx, s.c, send(http.MethodPost, path("/base/logout"), nil))
}

// RefreshToken issues a fresh token for the current session.
func (s *Base) RefreshToken(ctx context.Context) (*LoginResult, error) {
	return decode[LoginResult](ctx, s.c, send(http.MethodPost, path("/base/refreshToken"), nil))
}
