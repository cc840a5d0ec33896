package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/goadmin/internal/auth"
	"github.com/leapstack-labs/goadmin/internal/permission"
	"github.com/leapstack-labs/goadmin/internal/ui/console"
	"github.com/leapstack-labs/goadmin/internal/ui/features/common"
	"github.com/leapstack-labs/goadmin/pkg/core"
	"github.com/leapstack-labs/goadmin/pkg/request"
	"github.com/starfederation/datastar-go/datastar"
)

// Cookie session layout.
const (
	CookieName = "goadmin"
	cookieID   = "cid"
	cookieTok  = "token"
)

// Deps are the collaborators of the admin handlers.
type Deps struct {
	Registry *console.Registry
	Sessions sessions.Store
	Cipher   *auth.PasswordCipher
	// Views resolves views of routes built without a resolver, such as
	// the constant dashboard route. Defaults to Views().
	Views  permission.ViewResolver
	Logger *slog.Logger
}

// Handlers provides HTTP handlers for the admin feature.
type Handlers struct {
	registry *console.Registry
	sessions sessions.Store
	cipher   *auth.PasswordCipher
	views    permission.ViewResolver
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps) *Handlers {
	if deps.Views == nil {
		deps.Views = Views()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		registry: deps.Registry,
		sessions: deps.Sessions,
		cipher:   deps.Cipher,
		views:    deps.Views,
		logger:   deps.Logger,
	}
}

// RequireLogin resolves the browser's console from its cookie and
// redirects to /login when there is no active session.
func (h *Handlers) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := h.fromCookie(r)
		if c == nil || !c.Session.Active() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(console.WithConsole(r.Context(), c)))
	})
}

func (h *Handlers) fromCookie(r *http.Request) *console.Console {
	sess, err := h.sessions.Get(r, CookieName)
	if err != nil {
		return nil
	}
	id, _ := sess.Values[cookieID].(string)
	token, _ := sess.Values[cookieTok].(string)
	c, ok := h.registry.Restore(id, token)
	if !ok {
		return nil
	}
	return c
}

// LoginPage renders the login form.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if c := h.fromCookie(r); c != nil && c.Session.Active() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, LoginPage("", ""))
}

// Login exchanges the submitted credentials for a token and stores it in
// the cookie session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, LoginPage("", err.Error()))
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		h.render(w, r, http.StatusBadRequest, LoginPage(username, "Username and password are required"))
		return
	}

	encrypted, err := h.cipher.Encrypt(password)
	if err != nil {
		h.render(w, r, http.StatusInternalServerError, LoginPage(username, err.Error()))
		return
	}

	c := h.fromCookie(r)
	if c == nil {
		c = h.registry.Create()
	}
	c.Session.Logout()

	ctx := r.Context()
	res, err := c.API().Base.Login(ctx, core.LoginRequest{Username: username, Password: encrypted})
	if err != nil {
		h.logger.Debug("console login failed", "console", c.ID, "error", err)
		h.render(w, r, http.StatusUnauthorized, LoginPage(username, request.MessageOf(err)))
		return
	}
	c.Session.Login(res.Token, nil)

	if info, err := c.API().Users.Info(ctx); err != nil {
		h.logger.Warn("failed to fetch user info after login", "console", c.ID, "error", err)
	} else if info.UserInfo != nil {
		c.Session.SetUser(info.UserInfo)
	}

	sess, _ := h.sessions.Get(r, CookieName)
	sess.Values[cookieID] = c.ID
	sess.Values[cookieTok] = res.Token
	if err := sess.Save(r, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.logger.Info("console logged in", "console", c.ID, "user", username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout ends the backend session, forgets the console and clears the cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if c := h.fromCookie(r); c != nil {
		if c.Session.Active() {
			if _, err := c.API().Base.Logout(r.Context()); err != nil {
				h.logger.Warn("backend logout failed", "console", c.ID, "error", err)
			}
		}
		c.Session.Logout()
		h.registry.Remove(c.ID)
	}

	sess, _ := h.sessions.Get(r, CookieName)
	delete(sess.Values, cookieID)
	delete(sess.Values, cookieTok)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		h.logger.Warn("failed to clear console cookie", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Home follows the root route's redirect, or shows the navigation alone.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	c := console.From(r.Context())
	routes, err := h.routes(r.Context(), c)
	if err != nil {
		h.fail(w, r, c, nil, err)
		return
	}
	if root, ok := permission.Find(routes, "/"); ok && root.Redirect != "" {
		http.Redirect(w, r, common.ViewPath(root.Redirect), http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, Page("Home", h.sidebar(c, routes, "/"), nil))
}

// RoutesJSON returns the console's full route table.
func (h *Handlers) RoutesJSON(w http.ResponseWriter, r *http.Request) {
	c := console.From(r.Context())
	routes, err := h.routes(r.Context(), c)
	if err != nil {
		h.fail(w, r, c, nil, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(routes); err != nil {
		h.logger.Warn("failed to encode routes", "error", err)
	}
}

// View activates the route at the requested path. Redirects and layout
// routes forward to their target; views are resolved on first activation.
func (h *Handlers) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := console.From(ctx)
	path := "/" + chi.URLParam(r, "*")

	routes, err := h.routes(ctx, c)
	if err != nil {
		h.fail(w, r, c, nil, err)
		return
	}

	route, ok := permission.Find(routes, path)
	if !ok {
		h.render(w, r, http.StatusNotFound,
			Page("Not found", h.sidebar(c, routes, path), ErrorPage(http.StatusNotFound, "No page at "+path)))
		return
	}

	if target := forward(path, route); target != "" {
		http.Redirect(w, r, common.ViewPath(target), http.StatusFound)
		return
	}

	view, ok := route.Component.(*permission.View)
	if !ok {
		h.render(w, r, http.StatusNotFound,
			Page("Not found", h.sidebar(c, routes, path), ErrorPage(http.StatusNotFound, "No page at "+path)))
		return
	}

	fn, err := h.load(view)
	if err != nil {
		h.logger.Warn("view failed to load", "module", view.Module(), "error", err)
		h.fail(w, r, c, routes, err)
		return
	}

	content, err := fn(ctx, c)
	if err != nil {
		h.fail(w, r, c, routes, err)
		return
	}

	title := route.Meta.Title
	if title == "" {
		title = route.Name
	}
	h.render(w, r, http.StatusOK, Page(title, h.sidebar(c, routes, path), content))
}

// forward returns where a route sends the browser instead of rendering.
func forward(path string, route *permission.Route) string {
	if route.Redirect != "" {
		return route.Redirect
	}
	if !permission.IsLayout(route.Component) {
		return ""
	}
	for _, child := range route.Children {
		if !child.Hidden {
			return permission.FullPath(path, child.Path)
		}
	}
	return ""
}

func (h *Handlers) load(v *permission.View) (ViewFunc, error) {
	val, err := v.Load()
	var unresolved *permission.UnresolvedViewError
	if errors.As(err, &unresolved) {
		val, err = h.views.Resolve(v.Module())
	}
	if err != nil {
		return nil, err
	}
	fn, ok := val.(ViewFunc)
	if !ok {
		return nil, fmt.Errorf("view %s is %T, not a console view", v.Module(), val)
	}
	return fn, nil
}

// Unauthorized is where forbidden calls land.
func (h *Handlers) Unauthorized(w http.ResponseWriter, r *http.Request) {
	var sidebar common.SidebarData
	if c := h.fromCookie(r); c != nil && c.Session.Active() {
		sidebar = h.sidebar(c, c.Session.Routes().Routes(), auth.UnauthorizedPath)
	}
	h.render(w, r, http.StatusForbidden,
		Page("Unauthorized", sidebar, ErrorPage(http.StatusUnauthorized, "You do not have permission to access this page.")))
}

// Notifications is the long-lived SSE endpoint that pushes notices and
// prompts published for this console.
func (h *Handlers) Notifications(w http.ResponseWriter, r *http.Request) {
	c := console.From(r.Context())
	sse := datastar.NewSSE(w, r)

	notify := h.registry.Notifier()
	events := notify.Subscribe(c.ID)
	defer notify.Unsubscribe(events)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := sse.PatchElementTempl(Notices(ev)); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// routes returns the console's route table, generating it on first use.
func (h *Handlers) routes(ctx context.Context, c *console.Console) ([]*permission.Route, error) {
	store := c.Session.Routes()
	if store.Generated() {
		return store.Routes(), nil
	}

	id, err := c.Session.UserID()
	if err != nil {
		info, infoErr := c.API().Users.Info(ctx)
		if infoErr != nil {
			return nil, infoErr
		}
		if info.UserInfo == nil {
			return nil, err
		}
		c.Session.SetUser(info.UserInfo)
		id = info.UserInfo.ID
	}

	if _, err := store.GenerateRoutes(ctx, id); err != nil {
		return nil, err
	}
	return store.Routes(), nil
}

func (h *Handlers) sidebar(c *console.Console, routes []*permission.Route, current string) common.SidebarData {
	data := common.SidebarData{Nav: common.BuildNav(routes), CurrentPath: current}
	if u := c.Session.User(); u != nil {
		data.User = u.Username
	} else if claims := c.Session.Claims(); claims != nil {
		data.User = claims.Username
	}
	return data
}

// fail maps a failed backend call to a response. Forbidden calls go to
// /401; an expired session is reported and the browser gets the prompt
// over SSE.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, c *console.Console, routes []*permission.Route, err error) {
	var redirect *auth.RedirectError
	switch {
	case errors.As(err, &redirect):
		http.Redirect(w, r, redirect.Path, http.StatusSeeOther)
	case errors.Is(err, auth.ErrSessionExpired):
		h.render(w, r, http.StatusUnauthorized,
			Page("Session expired", h.sidebar(c, routes, ""), ErrorPage(http.StatusUnauthorized, auth.SessionExpiredPrompt.Message)))
	default:
		status := http.StatusBadGateway
		if code := request.StatusOf(err); code == 0 {
			status = http.StatusInternalServerError
		}
		h.render(w, r, status,
			Page("Error", h.sidebar(c, routes, ""), ErrorPage(status, err.Error())))
	}
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "error", err)
	}
}
