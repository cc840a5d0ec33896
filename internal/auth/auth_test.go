package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leapstack-labs/goadmin/internal/testutil"
	"github.com/leapstack-labs/goadmin/pkg/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type fakeSession struct{ loggedOut int }

func (f *fakeSession) Logout() { f.loggedOut++ }

// recorder captures every side effect a Responder triggers.
type recorder struct {
	prompts  []Prompt
	notices  []Notice
	navigate []string
	reloads  int
	logouts  int
	choice   Choice
	session  *fakeSession
}

func (r *recorder) hooks(t *testing.T) Hooks {
	r.session = &fakeSession{}
	return Hooks{
		Session: r.session,
		Prompt: PrompterFunc(func(_ context.Context, p Prompt) (Choice, error) {
			r.prompts = append(r.prompts, p)
			return r.choice, nil
		}),
		Notify:   func(_ context.Context, n Notice) { r.notices = append(r.notices, n) },
		Navigate: func(_ context.Context, path string) { r.navigate = append(r.navigate, path) },
		Reload:   func(context.Context) { r.reloads++ },
		Logger:   testutil.NewTestLogger(t),
	}
}

func backend(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-Authorization", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name string
		src  TokenSource
		want string
	}{
		{"token present", staticToken("abc"), "Bearer abc"},
		{"token absent", staticToken(""), ""},
		{"no source", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := backend(t, http.StatusOK, `{"code":200}`)
			c := request.New(request.Config{BaseURL: srv.URL})
			c.Use(BearerToken(tt.src))

			resp, err := c.Do(context.Background(), &request.Request{URL: "/api/user/info"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Header.Get("X-Seen-Authorization"))
		})
	}
}

func TestIsSessionExpiry(t *testing.T) {
	assert.True(t, IsSessionExpiry("JWT Failed: token expired"))
	assert.True(t, IsSessionExpiry("JWT authentication failed, error code: 401, message: token is expired"))
	assert.False(t, IsSessionExpiry("invalid credentials"))
	assert.False(t, IsSessionExpiry("jwt missing"))
	assert.False(t, IsSessionExpiry("login failed"))
}

func TestResponder_SessionExpiry(t *testing.T) {
	tests := []struct {
		name        string
		choice      Choice
		wantLogout  int
		wantReloads int
	}{
		{"refresh logs out and reloads", ChoiceConfirm, 1, 1},
		{"stay does nothing", ChoiceCancel, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := backend(t, http.StatusUnauthorized, `{"code":401,"message":"JWT Failed: token expired"}`)
			rec := &recorder{choice: tt.choice}
			c := request.New(request.Config{BaseURL: srv.URL})
			c.UseResponse(Responder(rec.hooks(t)))

			_, err := c.Do(context.Background(), &request.Request{URL: "/api/user/list"})
			require.ErrorIs(t, err, ErrSessionExpired)
			assert.Equal(t, http.StatusUnauthorized, request.StatusOf(err))

			require.Len(t, rec.prompts, 1)
			assert.Equal(t, SessionExpiredPrompt, rec.prompts[0])
			assert.Equal(t, "Refresh", rec.prompts[0].Confirm)
			assert.Equal(t, "Stay", rec.prompts[0].Cancel)
			assert.Equal(t, tt.wantLogout, rec.session.loggedOut)
			assert.Equal(t, tt.wantReloads, rec.reloads)
			assert.Empty(t, rec.notices)
			assert.Empty(t, rec.navigate)
		})
	}
}

func TestResponder_ExpiryPrefersLogoutHook(t *testing.T) {
	srv := backend(t, http.StatusUnauthorized, `{"message":"jwt FAILED"}`)
	rec := &recorder{choice: ChoiceConfirm}
	h := rec.hooks(t)
	h.Logout = func(context.Context) error {
		rec.logouts++
		return errors.New("backend unreachable")
	}
	c := request.New(request.Config{BaseURL: srv.URL})
	c.UseResponse(Responder(h))

	_, err := c.Do(context.Background(), &request.Request{URL: "/"})
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, rec.logouts)
	assert.Equal(t, 0, rec.session.loggedOut)
	assert.Equal(t, 1, rec.reloads, "reload happens even if logout fails")
}

func TestResponder_ExpiryWithoutPromptIsCancel(t *testing.T) {
	srv := backend(t, http.StatusUnauthorized, `{"message":"JWT Failed"}`)
	rec := &recorder{}
	h := rec.hooks(t)
	h.Prompt = nil
	c := request.New(request.Config{BaseURL: srv.URL})
	c.UseResponse(Responder(h))

	_, err := c.Do(context.Background(), &request.Request{URL: "/"})
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 0, rec.reloads)
}

func TestResponder_Unauthenticated(t *testing.T) {
	srv := backend(t, http.StatusUnauthorized, `{"code":401,"message":"invalid credentials"}`)
	rec := &recorder{}
	c := request.New(request.Config{BaseURL: srv.URL})
	c.UseResponse(Responder(rec.hooks(t)))

	_, err := c.Do(context.Background(), &request.Request{URL: "/api/base/login", Method: http.MethodPost})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.Empty(t, rec.prompts)

	require.Len(t, rec.notices, 1)
	assert.Equal(t, Notice{
		Type:      NoticeError,
		Message:   "invalid credentials",
		Duration:  NoticeDuration,
		ShowClose: true,
	}, rec.notices[0])
}

func TestResponder_Forbidden(t *testing.T) {
	srv := backend(t, http.StatusForbidden, `{"code":403,"message":"no permission"}`)
	rec := &recorder{}
	c := request.New(request.Config{BaseURL: srv.URL})
	c.UseResponse(Responder(rec.hooks(t)))

	assert.NotPanics(t, func() {
		_, err := c.Do(context.Background(), &request.Request{URL: "/api/role/list"})
		var redirect *RedirectError
		require.ErrorAs(t, err, &redirect)
		assert.Equal(t, "/401", redirect.Path)
		assert.Equal(t, http.StatusForbidden, request.StatusOf(err))
	})
	assert.Equal(t, []string{"/401"}, rec.navigate)
	assert.Empty(t, rec.notices, "forbidden is silent")
}

func TestResponder_GenericFailure(t *testing.T) {
	t.Run("server message", func(t *testing.T) {
		srv := backend(t, http.StatusInternalServerError, `{"code":500,"message":"database down"}`)
		rec := &recorder{}
		c := request.New(request.Config{BaseURL: srv.URL})
		c.UseResponse(Responder(rec.hooks(t)))

		_, err := c.Do(context.Background(), &request.Request{URL: "/"})
		require.Error(t, err)
		require.Len(t, rec.notices, 1)
		assert.Equal(t, "database down", rec.notices[0].Message)
		assert.Equal(t, NoticeDuration, rec.notices[0].Duration)
	})

	t.Run("transport failure falls back to error message", func(t *testing.T) {
		srv := backend(t, http.StatusOK, `{}`)
		url := srv.URL
		srv.Close()

		rec := &recorder{}
		c := request.New(request.Config{BaseURL: url})
		c.UseResponse(Responder(rec.hooks(t)))

		_, err := c.Do(context.Background(), &request.Request{URL: "/"})
		require.Error(t, err)
		assert.Equal(t, 0, request.StatusOf(err))
		require.Len(t, rec.notices, 1)
		assert.NotEmpty(t, rec.notices[0].Message)
		assert.Equal(t, request.MessageOf(err), rec.notices[0].Message)
	})
}

func TestResponder_SuccessPassesThrough(t *testing.T) {
	srv := backend(t, http.StatusOK, `{"code":200,"data":{"a":1},"message":"ok"}`)
	rec := &recorder{}
	c := request.New(request.Config{BaseURL: srv.URL})
	c.UseResponse(Responder(rec.hooks(t)))

	resp, err := c.Do(context.Background(), &request.Request{URL: "/"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(resp.Envelope.Data))
	assert.Empty(t, rec.notices)
	assert.Empty(t, rec.prompts)
}

func TestAlways(t *testing.T) {
	c, err := Always(ChoiceConfirm).Prompt(context.Background(), SessionExpiredPrompt)
	require.NoError(t, err)
	assert.Equal(t, ChoiceConfirm, c)
	assert.Equal(t, "confirm", c.String())
	assert.Equal(t, "cancel", ChoiceCancel.String())
}
