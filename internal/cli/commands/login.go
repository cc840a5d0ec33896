package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/leapstack-labs/goadmin/internal/cli/output"
	"github.com/leapstack-labs/goadmin/pkg/core"
	"github.com/spf13/cobra"
)

// expiresLayout is how the login endpoint formats token expiry.
const expiresLayout = "2006-01-02 15:04:05"

// LoginOptions holds options for the login command.
type LoginOptions struct {
	Username string
	Password string
}

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	opts := &LoginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the admin backend",
		Long: `Log in with a username and password and store the bearer token.

The token is saved per backend in the local session database, so later
commands reuse it until it expires or you log out. Missing credentials are
prompted for; the password is read without echo on a terminal.`,
		Example: `  # Prompt for credentials
  goadmin login

  # Non-interactive
  goadmin login -u admin -p 123456

  # Against the production backend
  goadmin login --env production`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "Password (prompted when empty)")

	return cmd
}

func runLogin(cmd *cobra.Command, opts *LoginOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := ctxOf(cmd)

	username := opts.Username
	if username == "" {
		if username, err = cc.ReadLine("Username: "); err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}
	password := opts.Password
	if password == "" {
		if password, err = cc.ReadPassword("Password: "); err != nil {
			return err
		}
	}

	body := core.LoginRequest{Username: username, Password: password}
	if err := validateBody(body); err != nil {
		return err
	}
	if body.Password, err = cc.EncryptPassword(password); err != nil {
		return err
	}

	// A stale token must not ride along on the login call.
	cc.Session.Logout()

	res, err := cc.API.Base.Login(ctx, body)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	cc.Session.Login(res.Token, nil)

	info, err := cc.API.Users.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch user info: %w", err)
	}
	cc.Session.SetUser(info.UserInfo)

	expires := parseExpires(res.Expires)
	if err := cc.Remember(ctx, expires); err != nil {
		return err
	}

	cc.Logger.Info("logged in", "user", username, "base_url", cc.BaseURL())
	return renderIdentity(cc, "Logged in as "+username, expires)
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored token",
		Long: `Call the backend logout endpoint and delete the stored session.

The local session is removed even when the backend call fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogout(cmd)
		},
	}
}

func runLogout(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := ctxOf(cmd)

	if err := cc.RequireSession(); err != nil {
		return err
	}

	if _, err := cc.API.Base.Logout(ctx); err != nil {
		cc.Logger.Warn("backend logout failed", "error", err)
	}
	if err := cc.forget(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if cc.Renderer.EffectiveMode() == output.ModeJSON {
		return cc.Renderer.JSON(map[string]any{"loggedOut": true, "baseUrl": cc.BaseURL()})
	}
	cc.Renderer.Success("Logged out")
	return nil
}

// WhoamiOptions holds options for the whoami command.
type WhoamiOptions struct {
	Offline bool
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand() *cobra.Command {
	opts := &WhoamiOptions{}

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user and token status",
		Long: `Fetch the current user from the backend and show it together with the
claims decoded from the bearer token (issued at, expiry, remaining time).

Use --offline to show the stored user without calling the backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWhoami(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Offline, "offline", false, "Don't call the backend")

	return cmd
}

func runWhoami(cmd *cobra.Command, opts *WhoamiOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := ctxOf(cmd)

	if err := cc.RequireSession(); err != nil {
		return err
	}

	if !opts.Offline {
		info, err := cc.API.Users.Info(ctx)
		if err != nil {
			return err
		}
		cc.Session.SetUser(info.UserInfo)
		if err := cc.Remember(ctx, nil); err != nil {
			return err
		}
	}

	return renderIdentity(cc, "", nil)
}

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored token for a fresh one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRefresh(cmd)
		},
	}
}

func runRefresh(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := ctxOf(cmd)

	if err := cc.RequireSession(); err != nil {
		return err
	}

	res, err := cc.API.Base.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	cc.Session.Login(res.Token, cc.Session.User())

	expires := parseExpires(res.Expires)
	if err := cc.Remember(ctx, expires); err != nil {
		return err
	}
	return renderIdentity(cc, "Token refreshed", expires)
}

// parseExpires accepts the login layout and RFC 3339 (refresh answers
// with a JSON timestamp).
func parseExpires(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.ParseInLocation(expiresLayout, s, time.Local); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &t
	}
	return nil
}

// identity is the JSON shape of login, refresh and whoami output.
type identity struct {
	BaseURL   string         `json:"baseUrl"`
	User      *core.UserInfo `json:"user,omitempty"`
	Roles     []string       `json:"roles"`
	IssuedAt  *time.Time     `json:"issuedAt,omitempty"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
	Expired   bool           `json:"expired"`
}

func currentIdentity(cc *CommandContext, expires *time.Time) identity {
	now := time.Now()
	id := identity{
		BaseURL:   cc.BaseURL(),
		User:      cc.Session.User(),
		Roles:     cc.Session.User().RoleKeywords(),
		ExpiresAt: expires,
		Expired:   cc.Session.Expired(now),
	}
	if id.Roles == nil {
		id.Roles = []string{}
	}
	if c := cc.Session.Claims(); c != nil {
		if !c.IssuedAt.IsZero() {
			iat := c.IssuedAt
			id.IssuedAt = &iat
		}
		if id.ExpiresAt == nil && !c.ExpiresAt.IsZero() {
			exp := c.ExpiresAt
			id.ExpiresAt = &exp
		}
	}
	return id
}

func renderIdentity(cc *CommandContext, headline string, expires *time.Time) error {
	r := cc.Renderer
	id := currentIdentity(cc, expires)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(id)
	}

	if headline != "" {
		r.Success(headline)
	}
	if id.User != nil {
		r.Header(2, id.User.Username)
		r.KeyValue("ID", itoa(id.User.ID))
		if id.User.Nickname != "" {
			r.KeyValue("Nickname", id.User.Nickname)
		}
		if id.User.Mobile != "" {
			r.KeyValue("Mobile", id.User.Mobile)
		}
		r.KeyValue("Roles", joinOrDash(id.Roles))
	}
	r.KeyValue("Backend", id.BaseURL)
	if id.IssuedAt != nil {
		r.KeyValue("Issued", id.IssuedAt.Format(time.DateTime))
	}
	if id.ExpiresAt != nil {
		r.KeyValue("Expires", fmt.Sprintf("%s (%s)", id.ExpiresAt.Format(time.DateTime), remaining(*id.ExpiresAt)))
	}
	return nil
}

func remaining(exp time.Time) string {
	d := time.Until(exp).Truncate(time.Second)
	if d <= 0 {
		return "expired"
	}
	return "in " + d.String()
}

// fetchIdentity is used by commands that need the user id but may run
// right after a login that did not store user info.
func fetchIdentity(ctx context.Context, cc *CommandContext) (uint, error) {
	if id, err := cc.Session.UserID(); err == nil {
		return id, nil
	}
	info, err := cc.API.Users.Info(ctx)
	if err != nil {
		return 0, err
	}
	cc.Session.SetUser(info.UserInfo)
	return cc.Session.UserID()
}
