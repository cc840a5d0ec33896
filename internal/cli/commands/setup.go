package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/leapstack-labs/goadmin/internal/auth"
	"github.com/leapstack-labs/goadmin/internal/cli/config"
	"github.com/leapstack-labs/goadmin/internal/cli/output"
	"github.com/leapstack-labs/goadmin/internal/session"
	"github.com/leapstack-labs/goadmin/internal/state"
	"github.com/leapstack-labs/goadmin/pkg/api"
	"github.com/leapstack-labs/goadmin/pkg/core"
	"github.com/leapstack-labs/goadmin/pkg/request"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Client   *request.Client
	API      *api.API
	Session  *session.Session
	Store    state.Store
	Cipher   *auth.PasswordCipher

	baseURL string
	console *console
}

// NewCommandContext opens the session store, restores the saved login for
// the configured backend and builds an API client wired with the bearer
// token and failure-handling interceptors.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutBackend(cmd)

	cipher, err := auth.LoadPasswordCipher(cc.Cfg.API.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	cc.Cipher = cipher

	store := state.NewSQLiteStore(cc.Logger)
	if err := store.Open(cc.Cfg.StatePath); err != nil {
		return nil, nil, fmt.Errorf("failed to open session store: %w", err)
	}
	cc.Store = store

	cc.Client = request.New(request.Config{
		BaseURL: cc.baseURL,
		Timeout: cc.Cfg.Timeout(),
	}, request.WithLogger(cc.Logger))
	cc.API = api.New(cc.Client)
	cc.Session = session.New(cc.API.Menus)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	saved, err := store.GetSession(ctx, cc.baseURL)
	switch {
	case err == nil:
		cc.Session.Login(saved.Token, saved.User)
		cc.Logger.Debug("restored session", "base_url", cc.baseURL, "user", userName(saved.User))
	case errors.Is(err, state.ErrNotFound):
	default:
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}

	cc.Client.Use(auth.BearerToken(cc.Session))
	cc.Client.UseResponse(auth.Responder(auth.Hooks{
		Prompt: cc.console.prompter(cc.Renderer),
		Notify: func(_ context.Context, n auth.Notice) {
			cc.Renderer.Notice(string(n.Type), n.Message)
		},
		Navigate: func(_ context.Context, path string) {
			cc.Logger.Debug("navigation requested", "path", path)
			cc.Renderer.Warning(fmt.Sprintf("Access denied (%s)", path))
		},
		Logout: cc.forget,
		Reload: func(context.Context) {
			cc.Renderer.Muted("Session cleared. Run 'goadmin login' to sign in again.")
		},
		Logger: cc.Logger,
	}))

	cleanup := func() {
		logRequestMetrics(cc.Logger, cc.Client)
		_ = store.Close()
	}
	return cc, cleanup, nil
}

// NewCommandContextWithoutBackend creates a CommandContext with config,
// logger and renderer only.
// Useful for commands that don't talk to the admin API.
func NewCommandContextWithoutBackend(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(ctxOf(cmd))
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
		baseURL:  cfg.ResolveBaseURL(),
		console:  newConsole(cmd),
	}
}

// BaseURL returns the backend the context talks to.
func (cc *CommandContext) BaseURL() string { return cc.baseURL }

// RequireSession fails when no login is stored for the backend.
func (cc *CommandContext) RequireSession() error {
	if cc.Session == nil || !cc.Session.Active() {
		return fmt.Errorf("%w: run 'goadmin login' first", session.ErrNoSession)
	}
	return nil
}

// Remember persists the current session for the backend.
func (cc *CommandContext) Remember(ctx context.Context, expires *time.Time) error {
	s := &state.Session{
		BaseURL:   cc.baseURL,
		Token:     cc.Session.Token(),
		User:      cc.Session.User(),
		ExpiresAt: expires,
	}
	if s.ExpiresAt == nil {
		if c := cc.Session.Claims(); c != nil && !c.ExpiresAt.IsZero() {
			exp := c.ExpiresAt
			s.ExpiresAt = &exp
		}
	}
	if err := cc.Store.SaveSession(ctx, s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// forget drops the local session without calling the backend.
func (cc *CommandContext) forget(ctx context.Context) error {
	cc.Session.Logout()
	if err := cc.Store.DeleteSession(ctx, cc.baseURL); err != nil && !errors.Is(err, state.ErrNotFound) {
		return err
	}
	return nil
}

// EncryptPassword encrypts plain with the configured public key, if any.
func (cc *CommandContext) EncryptPassword(plain string) (string, error) {
	return cc.Cipher.Encrypt(plain)
}

// ReadLine reads one line of input, showing prompt on stderr.
func (cc *CommandContext) ReadLine(prompt string) (string, error) {
	return cc.console.readLine(prompt)
}

// ReadPassword reads a secret without echo when stdin is a terminal.
func (cc *CommandContext) ReadPassword(prompt string) (string, error) {
	return cc.console.readPassword(prompt)
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to defaults.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Environment:  config.DefaultEnv,
		StatePath:    config.DefaultStateFile,
		OutputFormat: config.DefaultOutput,
		API: config.APIConfig{
			DevBaseURL: config.DefaultDevBaseURL,
			Timeout:    config.DefaultTimeout,
		},
	}
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateBody checks a request body against its validate tags before it
// is sent, so obvious mistakes fail without a round trip.
func validateBody(body any) error {
	err := validate.Struct(body)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid input: %s", strings.Join(msgs, ", "))
}

func userName(u *core.UserInfo) string {
	if u == nil {
		return ""
	}
	return u.Username
}

func logRequestMetrics(logger *slog.Logger, c *request.Client) {
	if c == nil || !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	c.Registry().Each(func(name string, m any) {
		switch v := m.(type) {
		case metrics.Timer:
			logger.Debug("request timer", "name", name, "count", v.Count(), "mean_ms", v.Mean()/float64(time.Millisecond))
		case metrics.Counter:
			logger.Debug("request counter", "name", name, "count", v.Count())
		}
	})
}
