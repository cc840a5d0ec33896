// Package console keeps one admin session per browser for the web console.
//
// Each console owns a session.Session and a request.Client wired with the
// bearer token and the failure-handling interceptors. Notices and the
// session-expiry prompt are published to the console's SSE listeners.
package console

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/goadmin/internal/auth"
	"github.com/leapstack-labs/goadmin/internal/permission"
	"github.com/leapstack-labs/goadmin/internal/session"
	"github.com/leapstack-labs/goadmin/internal/ui/notifier"
	"github.com/leapstack-labs/goadmin/pkg/api"
	"github.com/leapstack-labs/goadmin/pkg/request"
	"github.com/rcrowley/go-metrics"
)

// Backend selects the admin API every console talks to.
type Backend struct {
	BaseURL string
	Timeout time.Duration
}

// Console is one browser's admin session.
type Console struct {
	ID      string
	Session *session.Session

	mu     sync.RWMutex
	client *request.Client
	api    *api.API
}

// API returns the console's resource services.
func (c *Console) API() *api.API {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.api
}

// Client returns the console's HTTP client.
func (c *Console) Client() *request.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// Config configures a Registry.
type Config struct {
	Backend  Backend
	Views    permission.ViewResolver
	Notifier *notifier.Notifier
	Metrics  metrics.Registry
	Logger   *slog.Logger
}

// Registry holds the live consoles, keyed by the id stored in the
// browser's session cookie.
type Registry struct {
	views    permission.ViewResolver
	notify   *notifier.Notifier
	registry metrics.Registry
	logger   *slog.Logger

	mu       sync.RWMutex
	backend  Backend
	consoles map[string]*Console
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notifier.New()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRegistry()
	}
	return &Registry{
		views:    cfg.Views,
		notify:   cfg.Notifier,
		registry: cfg.Metrics,
		logger:   cfg.Logger,
		backend:  cfg.Backend,
		consoles: make(map[string]*Console),
	}
}

// Backend returns the backend consoles currently talk to.
func (r *Registry) Backend() Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.backend
}

// Metrics returns the registry shared by every console client.
func (r *Registry) Metrics() metrics.Registry { return r.registry }

// Notifier returns the notifier consoles publish to.
func (r *Registry) Notifier() *notifier.Notifier { return r.notify }

// Create starts a new, logged-out console.
func (r *Registry) Create() *Console {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.newConsoleLocked(uuid.NewString())
	r.consoles[c.ID] = c
	return c
}

// Get returns the console with id.
func (r *Registry) Get(id string) (*Console, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.consoles[id]
	return c, ok
}

// Restore returns the console with id, recreating it logged in with token
// when the server no longer knows it (for example after a restart).
func (r *Registry) Restore(id, token string) (*Console, bool) {
	if c, ok := r.Get(id); ok {
		return c, true
	}
	if id == "" || token == "" {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.consoles[id]; ok {
		return c, true
	}
	c := r.newConsoleLocked(id)
	c.Session.Login(token, nil)
	r.consoles[id] = c
	r.logger.Debug("console restored from cookie", "console", id)
	return c, true
}

// Remove forgets the console with id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.consoles, id)
}

// Len returns the number of live consoles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.consoles)
}

// SetBackend points every console at b. Sessions are kept; their cached
// routes are discarded since they came from the previous backend.
func (r *Registry) SetBackend(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend = b
	for _, c := range r.consoles {
		client, a := r.newClientLocked(c)
		c.mu.Lock()
		c.client, c.api = client, a
		c.mu.Unlock()
		c.Session.Routes().Reset()
	}
}

func (r *Registry) newConsoleLocked(id string) *Console {
	c := &Console{ID: id}
	c.Session = session.New(menuSource{c})
	c.Session.Routes().WithViews(r.views)
	c.client, c.api = r.newClientLocked(c)
	return c
}

func (r *Registry) newClientLocked(c *Console) (*request.Client, *api.API) {
	logger := r.logger.With("console", c.ID)
	client := request.New(request.Config{
		BaseURL: r.backend.BaseURL,
		Timeout: r.backend.Timeout,
	}, request.WithLogger(logger), request.WithRegistry(r.registry))

	client.Use(auth.BearerToken(c.Session))
	client.UseResponse(auth.Responder(auth.Hooks{
		Session: c.Session,
		Prompt:  r.prompter(c.ID),
		Notify: func(_ context.Context, n auth.Notice) {
			r.notify.Publish(c.ID, notifier.Event{Notice: n})
		},
		Logger: logger,
	}))
	return client, api.New(client)
}

// prompter forwards the question to the browser and answers "stay" right
// away; the browser's confirm button posts to /logout.
func (r *Registry) prompter(id string) auth.Prompter {
	return auth.PrompterFunc(func(_ context.Context, p auth.Prompt) (auth.Choice, error) {
		prompt := p
		r.notify.Publish(id, notifier.Event{
			Notice: auth.Notice{Type: p.Type, Message: p.Message},
			Prompt: &prompt,
		})
		return auth.ChoiceCancel, nil
	})
}

// menuSource resolves the console's current API at call time, so a
// backend switch is honoured by later route generation.
type menuSource struct{ c *Console }

func (m menuSource) UserAccessTree(ctx context.Context, userID uint) (*api.MenuTree, error) {
	return m.c.API().Menus.UserAccessTree(ctx, userID)
}

type ctxKey struct{}

// WithConsole stores c in ctx.
func WithConsole(ctx context.Context, c *Console) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// From returns the console stored in ctx, or nil.
func From(ctx context.Context) *Console {
	c, _ := ctx.Value(ctxKey{}).(*Console)
	return c
}
