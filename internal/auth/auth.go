// Package auth attaches the bearer token to outgoing calls and classifies
// failed responses: session expiry, unauthenticated, forbidden, or generic.
//
// The user-facing side effects (prompting, notifying, navigating and
// reloading) are injected through Hooks so each surface supplies its own.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leapstack-labs/goadmin/pkg/request"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrSessionExpired is returned after the session-expiry prompt, whichever
// choice the user made.
var ErrSessionExpired = errors.New("session expired")

// UnauthorizedPath is where forbidden calls navigate to.
const UnauthorizedPath = "/401"

// NoticeDuration is how long error notices stay visible.
const NoticeDuration = 5000 * time.Millisecond

// RedirectError reports that a call was answered by navigating away.
type RedirectError struct {
	Path string
	Err  error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirected to %s: %v", e.Path, e.Err)
}

func (e *RedirectError) Unwrap() error {
	return e.Err
}

// TokenSource provides the current bearer token; "" means none.
type TokenSource interface {
	Token() string
}

// BearerToken returns a request interceptor that sets
// "Authorization: Bearer <token>" when src holds a token.
func BearerToken(src TokenSource) request.RequestInterceptor {
	return func(_ context.Context, req *request.Request) error {
		if src == nil {
			return nil
		}
		if token := src.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}

// Hooks are the side effects a Responder may trigger. Nil hooks are skipped.
type Hooks struct {
	// Session is logged out on confirmed expiry when Logout is nil.
	Session interface{ Logout() }
	Prompt  Prompter
	Notify  func(ctx context.Context, n Notice)
	// Navigate moves the client to path.
	Navigate func(ctx context.Context, path string)
	// Reload restarts the client after logout.
	Reload func(ctx context.Context)
	// Logout tears down the session, usually calling the logout endpoint.
	Logout func(ctx context.Context) error
	Logger *slog.Logger
}

// IsSessionExpiry reports whether a 401 message signals an expired token.
func IsSessionExpiry(message string) bool {
	lower := cases.Lower(language.Und).String(message)
	return strings.Contains(lower, "jwt") && strings.Contains(lower, "failed")
}

// Responder returns the response interceptor that classifies failures.
// Successful responses pass through untouched.
func Responder(h Hooks) request.ResponseInterceptor {
	logger := h.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return request.ResponseInterceptor{
		OnRejected: func(ctx context.Context, err error) (*request.Response, error) {
			status := request.StatusOf(err)
			message := request.MessageOf(err)

			switch {
			case status == http.StatusUnauthorized && IsSessionExpiry(message):
				return nil, h.expired(ctx, logger, err)

			case status == http.StatusForbidden:
				logger.Debug("forbidden, redirecting", "path", UnauthorizedPath)
				if h.Navigate != nil {
					h.Navigate(ctx, UnauthorizedPath)
				}
				return nil, &RedirectError{Path: UnauthorizedPath, Err: err}

			default:
				h.notify(ctx, Notice{
					Type:      NoticeError,
					Message:   message,
					Duration:  NoticeDuration,
					ShowClose: true,
				})
				return nil, err
			}
		},
	}
}

func (h Hooks) expired(ctx context.Context, logger *slog.Logger, cause error) error {
	choice := ChoiceCancel
	if h.Prompt != nil {
		c, err := h.Prompt.Prompt(ctx, SessionExpiredPrompt)
		if err != nil {
			logger.Warn("session expiry prompt failed", "error", err)
		} else {
			choice = c
		}
	}

	if choice == ChoiceConfirm {
		switch {
		case h.Logout != nil:
			if err := h.Logout(ctx); err != nil {
				logger.Warn("logout after session expiry failed", "error", err)
			}
		case h.Session != nil:
			h.Session.Logout()
		}
		if h.Reload != nil {
			h.Reload(ctx)
		}
	}

	return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}

func (h Hooks) notify(ctx context.Context, n Notice) {
	if h.Notify != nil {
		h.Notify(ctx, n)
	}
}
