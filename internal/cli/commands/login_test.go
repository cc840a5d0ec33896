package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/goadmin/internal/session"
	"github.com/leapstack-labs/goadmin/internal/testutil"
)

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}

func TestLogin_JSON(t *testing.T) {
	h := newHarness(t, "json")

	res := h.run("", "login", "-u", testutil.AdminUsername, "-p", testutil.AdminPassword)
	require.NoError(t, res.err, res.errOut)

	id := decode[identity](t, res.out)
	assert.Equal(t, h.backend.URL, id.BaseURL)
	require.NotNil(t, id.User)
	assert.Equal(t, "admin", id.User.Username)
	assert.Equal(t, []string{"admin"}, id.Roles)
	assert.NotNil(t, id.ExpiresAt)
	assert.False(t, id.Expired)

	calls := h.backend.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "/api/base/login", calls[0].Path)
	assert.Equal(t, "/api/user/info", calls[1].Path)
}

func TestLogin_Markdown(t *testing.T) {
	h := newHarness(t, "markdown")

	res := h.run("", "login", "-u", testutil.AdminUsername, "-p", testutil.AdminPassword)
	require.NoError(t, res.err, res.errOut)

	assert.Contains(t, res.out, "✓ Logged in as admin")
	assert.Contains(t, res.out, "Administrator")
	assert.Contains(t, res.out, h.backend.URL)
}

func TestLogin_PromptsForCredentials(t *testing.T) {
	h := newHarness(t, "json")

	res := h.run("admin\n123456\n", "login")
	require.NoError(t, res.err, res.errOut)

	assert.Contains(t, res.errOut, "Username: ")
	assert.Contains(t, res.errOut, "Password: ")
	assert.Equal(t, "admin", decode[identity](t, res.out).User.Username)
}

func TestLogin_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"wrong password", []string{"-u", "admin", "-p", "nope"}, "invalid credentials"},
		{"unknown user", []string{"-u", "root", "-p", "123456"}, "invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "markdown")

			res := h.run("", append([]string{"login"}, tt.args...)...)
			require.Error(t, res.err)
			assert.Contains(t, res.err.Error(), "login failed")
			assert.Contains(t, res.err.Error(), tt.wantErr)
			assert.Contains(t, res.errOut, tt.wantErr)

			res = h.run("", "whoami", "--offline")
			assert.ErrorIs(t, res.err, session.ErrNoSession)
		})
	}
}

func TestWhoami(t *testing.T) {
	h := newHarness(t, "json")
	h.login()

	res := h.run("", "whoami")
	require.NoError(t, res.err, res.errOut)
	assert.Equal(t, "admin", decode[identity](t, res.out).User.Username)
	assert.Equal(t, "/api/user/info", h.backend.LastCall().Path)

	before := len(h.backend.Calls())
	res = h.run("", "whoami", "--offline")
	require.NoError(t, res.err, res.errOut)
	assert.Equal(t, "admin", decode[identity](t, res.out).User.Username)
	assert.Len(t, h.backend.Calls(), before, "offline must not call the backend")
}

func TestWhoami_NotLoggedIn(t *testing.T) {
	h := newHarness(t, "json")

	res := h.run("", "whoami")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, session.ErrNoSession)
	assert.Contains(t, res.err.Error(), "goadmin login")
	assert.Empty(t, h.backend.Calls())
}

func TestLogout(t *testing.T) {
	h := newHarness(t, "json")
	h.login()

	res := h.run("", "logout")
	require.NoError(t, res.err, res.errOut)

	out := decode[map[string]any](t, res.out)
	assert.Equal(t, true, out["loggedOut"])
	assert.Equal(t, h.backend.URL, out["baseUrl"])
	assert.Equal(t, "/api/base/logout", h.backend.LastCall().Path)

	res = h.run("", "whoami", "--offline")
	assert.ErrorIs(t, res.err, session.ErrNoSession)
}

func TestLogout_BackendFailureStillForgets(t *testing.T) {
	h := newHarness(t, "markdown")
	h.login()
	h.backend.Forbid("/api/base/logout")

	res := h.run("", "logout")
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "✓ Logged out")

	res = h.run("", "whoami", "--offline")
	assert.ErrorIs(t, res.err, session.ErrNoSession)
}

func TestRefresh(t *testing.T) {
	h := newHarness(t, "markdown")
	h.login()

	res := h.run("", "refresh")
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "Token refreshed")
	assert.Equal(t, "/api/base/refreshToken", h.backend.LastCall().Path)

	res = h.run("", "users", "list")
	require.NoError(t, res.err, res.errOut)
	assert.Equal(t, "/api/user/list", h.backend.LastCall().Path)
}

func TestRefresh_NotLoggedIn(t *testing.T) {
	h := newHarness(t, "markdown")

	res := h.run("", "refresh")
	assert.ErrorIs(t, res.err, session.ErrNoSession)
}

func TestSessionExpiry(t *testing.T) {
	tests := []struct {
		name      string
		stdin     string
		wantKept  bool
		wantCheck string
	}{
		{"refresh clears the session", "r\n", false, "Session cleared"},
		{"stay keeps the session", "", true, ""},
		{"explicit stay keeps the session", "stay\n", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "markdown")
			h.login()
			h.backend.ExpireTokens()

			res := h.run(tt.stdin, "users", "list")
			require.Error(t, res.err)
			assert.Contains(t, res.err.Error(), "session expired")
			assert.Contains(t, res.errOut, "Session Expired")
			assert.Contains(t, res.errOut, "Refresh/Stay [Stay]: ")
			if tt.wantCheck != "" {
				assert.Contains(t, res.out, tt.wantCheck)
			}

			res = h.run("", "whoami", "--offline")
			if tt.wantKept {
				assert.NoError(t, res.err)
			} else {
				assert.ErrorIs(t, res.err, session.ErrNoSession)
			}
		})
	}
}

func TestForbidden(t *testing.T) {
	h := newHarness(t, "markdown")
	h.login()
	h.backend.Forbid("/api/role/list")

	res := h.run("", "roles", "list")
	require.Error(t, res.err)
	assert.Contains(t, res.errOut, "Access denied (/401)")

	res = h.run("", "whoami", "--offline")
	assert.NoError(t, res.err, "forbidden must not end the session")
}

func TestParseExpires(t *testing.T) {
	assert.Nil(t, parseExpires(""))
	assert.Nil(t, parseExpires("tomorrow"))

	got := parseExpires("2026-10-18 10:30:00")
	require.NotNil(t, got)
	assert.Equal(t, 10, got.Hour())

	got = parseExpires("2026-10-18T10:30:00Z")
	require.NotNil(t, got)
	assert.Equal(t, 2026, got.Year())
}
