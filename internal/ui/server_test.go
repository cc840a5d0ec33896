package ui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/goadmin/internal/testutil"
	"github.com/leapstack-labs/goadmin/internal/ui/console"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "test-session-secret-0123456789abcdef"
	}
	cfg.Logger = testutil.NewTestLogger(t)
	return NewServer(cfg)
}

func TestServer_Handler(t *testing.T) {
	backend := testutil.NewBackend(t)
	s := newTestServer(t, Config{Backend: console.Backend{BaseURL: backend.URL, Timeout: time.Second}})

	h, err := s.Handler()
	require.NoError(t, err)

	tests := []struct {
		name        string
		path        string
		wantStatus  int
		wantContent string
	}{
		{"login page", "/login", http.StatusOK, "text/html; charset=utf-8"},
		{"stylesheet", "/static/console.css", http.StatusOK, "text/css; charset=utf-8"},
		{"metrics", "/debug/metrics", http.StatusOK, "application/json"},
		{"protected page", "/", http.StatusSeeOther, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantContent != "" {
				assert.Equal(t, tt.wantContent, rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestServer_MetricsAfterCalls(t *testing.T) {
	backend := testutil.NewBackend(t)
	s := newTestServer(t, Config{Backend: console.Backend{BaseURL: backend.URL, Timeout: time.Second}})

	c := s.Registry().Create()
	_, err := c.API().Menus.Tree(context.Background())
	require.Error(t, err, "not logged in")

	h, err := s.Handler()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/metrics", nil))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got, "request.get")
}

func TestServer_ApplyReload(t *testing.T) {
	first := testutil.NewBackend(t)
	second := testutil.NewBackend(t)

	next := console.Backend{BaseURL: second.URL, Timeout: time.Second}
	var fail atomic.Bool
	s := newTestServer(t, Config{
		Backend: console.Backend{BaseURL: first.URL, Timeout: time.Second},
		Reload: func() (console.Backend, error) {
			if fail.Load() {
				return console.Backend{}, errors.New("bad yaml")
			}
			return next, nil
		},
	})

	events := s.Registry().Notifier().Subscribe("browser")
	defer s.Registry().Notifier().Unsubscribe(events)

	s.applyReload()
	assert.Equal(t, next, s.Registry().Backend())
	ev := <-events
	assert.Contains(t, ev.Notice.Message, second.URL)

	fail.Store(true)
	s.applyReload()
	assert.Equal(t, next, s.Registry().Backend(), "failed reload keeps the backend")
	ev = <-events
	assert.Contains(t, ev.Notice.Message, "bad yaml")
}

func TestServer_WatchConfig(t *testing.T) {
	first := testutil.NewBackend(t)
	second := testutil.NewBackend(t)

	dir := t.TempDir()
	file := filepath.Join(dir, "goadmin.yaml")
	require.NoError(t, os.WriteFile(file, []byte("api:\n  base_url: "+first.URL+"\n"), 0o600))

	var reloads atomic.Int32
	s := newTestServer(t, Config{
		Backend:    console.Backend{BaseURL: first.URL, Timeout: time.Second},
		Watch:      true,
		ConfigFile: file,
		Reload: func() (console.Backend, error) {
			reloads.Add(1)
			return console.Backend{BaseURL: second.URL, Timeout: time.Second}, nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.watchConfig(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte("api:\n  base_url: "+second.URL+"\n"), 0o600))

	assert.Eventually(t, func() bool {
		return s.Registry().Backend().BaseURL == second.URL
	}, 3*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, reloads.Load(), int32(1))

	// Unrelated files in the directory are ignored.
	before := reloads.Load()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, before, reloads.Load())

	cancel()
	require.NoError(t, <-done)
}
