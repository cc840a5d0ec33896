// Package ui serves the goadmin web console.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/goadmin/internal/auth"
	"github.com/leapstack-labs/goadmin/internal/permission"
	"github.com/leapstack-labs/goadmin/internal/ui/console"
	"github.com/leapstack-labs/goadmin/internal/ui/features/admin"
	"github.com/leapstack-labs/goadmin/internal/ui/notifier"
	"github.com/leapstack-labs/goadmin/internal/ui/router"
	"golang.org/x/sync/errgroup"
)

// reloadDebounce coalesces the burst of events editors emit on save.
const reloadDebounce = 100 * time.Millisecond

// ReloadFunc re-reads the configuration and returns the backend to use.
type ReloadFunc func() (console.Backend, error)

// Config holds configuration for the UI server.
type Config struct {
	Backend       console.Backend
	Cipher        *auth.PasswordCipher
	Port          int
	Watch         bool
	ConfigFile    string
	Reload        ReloadFunc
	SessionSecret string
	Views         permission.ViewResolver
	Dev           bool
	Logger        *slog.Logger
}

// Server is the web console server.
type Server struct {
	registry     *console.Registry
	sessionStore *sessions.CookieStore
	cipher       *auth.PasswordCipher
	views        permission.ViewResolver
	port         int
	watch        bool
	dev          bool
	configFile   string
	reload       ReloadFunc
	logger       *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Views == nil {
		cfg.Views = admin.Views()
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		registry: console.NewRegistry(console.Config{
			Backend:  cfg.Backend,
			Views:    cfg.Views,
			Notifier: notifier.New(),
			Logger:   cfg.Logger,
		}),
		sessionStore: sessionStore,
		cipher:       cfg.Cipher,
		views:        cfg.Views,
		port:         cfg.Port,
		watch:        cfg.Watch,
		dev:          cfg.Dev,
		configFile:   cfg.ConfigFile,
		reload:       cfg.Reload,
		logger:       cfg.Logger,
	}
}

// Registry returns the server's console registry.
func (s *Server) Registry() *console.Registry {
	return s.registry
}

// Handler builds the console's HTTP handler.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	deps := admin.Deps{
		Registry: s.registry,
		Sessions: s.sessionStore,
		Cipher:   s.cipher,
		Views:    s.views,
		Logger:   s.logger,
	}
	if err := router.SetupRoutes(r, deps, s.dev); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting web console", "addr", fmt.Sprintf("http://localhost:%d", s.port),
		"backend", s.registry.Backend().BaseURL)

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch && s.configFile != "" && s.reload != nil {
		eg.Go(func() error {
			return s.watchConfig(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down web console...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchConfig re-reads the config file when it changes and points every
// console at the resulting backend.
func (s *Server) watchConfig(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Editors replace files on save, so watch the directory.
	dir := filepath.Dir(s.configFile)
	if err := watcher.Add(dir); err != nil {
		s.logger.Error("failed to watch config directory", "dir", dir, "error", err)
		return nil
	}
	target := filepath.Clean(s.configFile)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, s.applyReload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// applyReload re-reads the configuration and tells every browser about it.
func (s *Server) applyReload() {
	backend, err := s.reload()
	if err != nil {
		s.logger.Error("config reload failed", "file", s.configFile, "error", err)
		s.registry.Notifier().Broadcast(notifier.Event{Notice: auth.Notice{
			Type:      auth.NoticeError,
			Message:   "Config reload failed: " + err.Error(),
			Duration:  auth.NoticeDuration,
			ShowClose: true,
		}})
		return
	}

	previous := s.registry.Backend()
	if backend == previous {
		s.logger.Debug("config reloaded, backend unchanged", "file", s.configFile)
		return
	}

	s.registry.SetBackend(backend)
	s.logger.Info("backend changed", "from", previous.BaseURL, "to", backend.BaseURL)
	s.registry.Notifier().Broadcast(notifier.Event{Notice: auth.Notice{
		Type:     auth.NoticeInfo,
		Message:  "Backend switched to " + backend.BaseURL,
		Duration: auth.NoticeDuration,
	}})
}
