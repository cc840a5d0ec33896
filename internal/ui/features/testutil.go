// Package features provides shared test utilities for UI feature tests.
package features

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/goadmin/internal/permission"
	"github.com/leapstack-labs/goadmin/internal/testutil"
	"github.com/leapstack-labs/goadmin/internal/ui/console"
)

// TestSessionSecret signs fixture cookies.
const TestSessionSecret = "test-session-secret-0123456789abcdef"

// SetupFunc mounts the feature under test.
type SetupFunc func(r chi.Router, f *TestFixture) error

// TestFixture holds all dependencies needed for UI handler tests: a fake
// admin backend, a console registry pointed at it, and a browser-like
// client that keeps cookies and does not follow redirects.
type TestFixture struct {
	Backend  *testutil.Backend
	Registry *console.Registry
	Sessions *sessions.CookieStore
	Server   *httptest.Server
	Client   *http.Client

	t     *testing.T
	views permission.ViewResolver
	setup SetupFunc

	mu      sync.RWMutex
	handler http.Handler
}

// SetupTestFixture starts the backend and a server running setup.
func SetupTestFixture(t *testing.T, views permission.ViewResolver, setup SetupFunc) *TestFixture {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	f := &TestFixture{
		Backend:  testutil.NewBackend(t),
		Sessions: sessions.NewCookieStore([]byte(TestSessionSecret)),
		Client: &http.Client{
			Jar:     jar,
			Timeout: 5 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		t:     t,
		views: views,
		setup: setup,
	}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.RLock()
		h := f.handler
		f.mu.RUnlock()
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Server.Close)

	f.Restart()
	return f
}

// Restart swaps in a fresh registry and router, as if the console server
// had been restarted. Browser cookies survive.
func (f *TestFixture) Restart() {
	f.t.Helper()

	f.Registry = console.NewRegistry(console.Config{
		Backend: console.Backend{BaseURL: f.Backend.URL, Timeout: 2 * time.Second},
		Views:   f.views,
		Logger:  testutil.NewTestLogger(f.t),
	})

	r := chi.NewRouter()
	require.NoError(f.t, f.setup(r, f))

	f.mu.Lock()
	f.handler = r
	f.mu.Unlock()
}

// Get requests path and returns the response with its body read.
func (f *TestFixture) Get(path string) (*http.Response, string) {
	f.t.Helper()
	resp, err := f.Client.Get(f.Server.URL + path)
	require.NoError(f.t, err)
	return resp, readBody(f.t, resp)
}

// PostForm submits form values to path.
func (f *TestFixture) PostForm(path string, form url.Values) (*http.Response, string) {
	f.t.Helper()
	resp, err := f.Client.Post(f.Server.URL+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(f.t, err)
	return resp, readBody(f.t, resp)
}

// Login posts the fake backend's admin credentials.
func (f *TestFixture) Login() {
	f.t.Helper()
	resp, _ := f.PostForm("/login", url.Values{
		"username": {testutil.AdminUsername},
		"password": {testutil.AdminPassword},
	})
	require.Equal(f.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(f.t, "/", resp.Header.Get("Location"))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}
