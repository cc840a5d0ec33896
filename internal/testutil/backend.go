package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/leapstack-labs/goadmin/pkg/core"
)

// Fake backend credentials.
const (
	AdminUsername = "admin"
	AdminPassword = "123456"
)

// ExpiredMessage is what the backend answers with for an expired token.
const ExpiredMessage = "JWT authentication failed, error code: 401, message: token is expired"

// Call is one request received by the fake backend.
type Call struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// Backend is an in-memory admin backend served over httptest.
type Backend struct {
	URL string

	mu      sync.Mutex
	token   string
	calls   []Call
	expired bool
	forbid  map[string]bool

	Users []*core.User
	Roles []*core.Role
	Menus []*core.MenuNode
	APIs  []*core.API
	Logs  []*core.OperationLog
}

// NewBackend starts a fake backend seeded with one admin user, two roles,
// a small menu tree and a few operation logs.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		forbid: map[string]bool{},
		Users: []*core.User{
			{ID: 1, Username: AdminUsername, Mobile: "18888888888", Nickname: "Administrator", Status: core.StatusNormal, Creator: "system", RoleIDs: []uint{1}},
			{ID: 2, Username: "guest", Mobile: "13333333333", Nickname: "Guest", Status: core.StatusDisabled, Creator: "admin", RoleIDs: []uint{2}},
		},
		Roles: []*core.Role{
			{ID: 1, Name: "Administrator", Keyword: "admin", Status: core.StatusNormal, Sort: 1, Creator: "system"},
			{ID: 2, Name: "Guest", Keyword: "guest", Status: core.StatusNormal, Sort: 3, Creator: "system"},
		},
		Menus: []*core.MenuNode{
			{
				ID: 1, Name: "System", Title: "System", Icon: "component", Path: "/system", Component: "Layout",
				Redirect: "/system/user", Sort: 10, Status: core.StatusNormal, AlwaysShow: core.FlagTrue,
				Hidden: core.FlagFalse, Breadcrumb: core.FlagTrue, NoCache: core.FlagFalse,
				Children: []*core.MenuNode{
					{ID: 2, Name: "User", Title: "Users", Icon: "user", Path: "user", Component: "/system/user/index", Sort: 11, ParentID: 1, Hidden: core.FlagFalse},
					{ID: 3, Name: "Role", Title: "Roles", Icon: "peoples", Path: "role", Component: "/system/role/index", Sort: 12, ParentID: 1, Hidden: core.FlagFalse},
					{ID: 4, Name: "Menu", Title: "Menus", Icon: "tree-table", Path: "menu", Component: "/system/menu/index", Sort: 13, ParentID: 1, Hidden: core.FlagTrue},
				},
			},
			{ID: 5, Name: "OperationLog", Title: "Logs", Icon: "example", Path: "/log", Component: "/log/operation-log/index", Sort: 20, Hidden: core.FlagFalse},
		},
		APIs: []*core.API{
			{ID: 1, Method: http.MethodGet, Path: "/user/list", Category: "user", Desc: "List users"},
			{ID: 2, Method: http.MethodPost, Path: "/user/create", Category: "user", Desc: "Create user"},
		},
		Logs: []*core.OperationLog{
			{ID: 1, Username: AdminUsername, IP: "127.0.0.1", Method: http.MethodPost, Path: "/api/base/login", Desc: "Login", Status: 200,
				StartTime: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC), TimeCost: 12, UserAgent: "goadmin"},
		},
	}

	srv := httptest.NewServer(b.routes())
	t.Cleanup(srv.Close)
	b.URL = srv.URL
	return b
}

// Token returns the token issued by the last successful login.
func (b *Backend) Token() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

// ExpireTokens makes every authenticated endpoint answer with ExpiredMessage.
func (b *Backend) ExpireTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expired = true
}

// Forbid makes path answer 403.
func (b *Backend) Forbid(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forbid[path] = true
}

// Calls returns every request received so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// LastCall returns the most recent request.
func (b *Backend) LastCall() Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.calls) == 0 {
		return Call{}
	}
	return b.calls[len(b.calls)-1]
}

// IssueToken signs a token shaped like the backend's for user id.
func IssueToken(id uint, username string, exp time.Time) string {
	user, _ := json.Marshal(map[string]any{"ID": id, "username": username})
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"identity": id,
		"user":     string(user),
		"exp":      exp.Unix(),
		"orig_iat": time.Now().Unix(),
	})
	s, _ := tok.SignedString([]byte("fake-backend-key"))
	return s
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)

	r.Route("/api", func(r chi.Router) {
		r.Post("/base/login", b.login)

		r.Group(func(r chi.Router) {
			r.Use(b.authenticate)

			r.Post("/base/logout", func(w http.ResponseWriter, _ *http.Request) {
				b.mu.Lock()
				b.token = ""
				b.mu.Unlock()
				success(w, nil, "Log out succeeful")
			})
			r.Post("/base/refreshToken", func(w http.ResponseWriter, _ *http.Request) {
				token := b.issue()
				success(w, map[string]any{"token": token, "expires": time.Now().Add(time.Hour)}, "Refresh token successful")
			})

			r.Post("/user/info", b.userInfo)
			r.Get("/user/list", b.userList)
			r.Put("/user/changePwd", ok("Password changed successfully"))
			r.Post("/user/create", ok("User created successfully"))
			r.Patch("/user/update/{id}", ok("User updated successfully"))
			r.Delete("/user/delete/batch", ok("Users deleted successfully"))

			r.Get("/role/list", b.roleList)
			r.Post("/role/create", ok("Role created successfully"))
			r.Patch("/role/update/{id}", ok("Role updated successfully"))
			r.Get("/role/menus/get/{id}", b.roleMenus)
			r.Patch("/role/menus/update/{id}", ok("Role menus updated successfully"))
			r.Get("/role/apis/get/{id}", b.roleAPIs)
			r.Patch("/role/apis/update/{id}", ok("Role apis updated successfully"))
			r.Delete("/role/delete/batch", ok("Roles deleted successfully"))

			r.Get("/menu/tree", b.menuTree)
			r.Get("/menu/list", b.menuList)
			r.Post("/menu/create", ok("Menu created successfully"))
			r.Patch("/menu/update/{id}", ok("Menu updated successfully"))
			r.Delete("/menu/delete/batch", ok("Menus deleted successfully"))
			r.Get("/menu/access/list/{id}", b.menuList)
			r.Get("/menu/access/tree/{id}", b.menuTree)

			r.Get("/log/operation/list", b.logList)
			r.Delete("/log/operation/delete/batch", ok("Logs deleted successfully"))
		})
	})
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(raw)))

		b.mu.Lock()
		b.calls = append(b.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(raw)})
		forbidden := b.forbid[r.URL.Path]
		b.mu.Unlock()

		if forbidden {
			fail(w, http.StatusForbidden, "No permission to access this resource")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		expired, token := b.expired, b.token
		b.mu.Unlock()

		header := r.Header.Get("Authorization")
		switch {
		case expired:
			fail(w, http.StatusUnauthorized, ExpiredMessage)
		case header == "":
			fail(w, http.StatusUnauthorized, "JWT authentication failed, error code: 401, message: auth header is empty")
		case token == "" || header != "Bearer "+token:
			fail(w, http.StatusUnauthorized, "invalid token")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (b *Backend) issue() string {
	token := IssueToken(1, AdminUsername, time.Now().Add(time.Hour))
	b.mu.Lock()
	b.token = token
	b.mu.Unlock()
	return token
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req core.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username != AdminUsername || req.Password != AdminPassword {
		fail(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token := b.issue()
	success(w, map[string]any{
		"token":   token,
		"expires": time.Now().Add(time.Hour).Format("2006-01-02 15:04:05"),
	}, "Login successful")
}

func (b *Backend) userInfo(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	admin := b.Users[0]
	role := b.Roles[0]
	b.mu.Unlock()

	success(w, map[string]any{"userInfo": core.UserInfo{
		ID:       admin.ID,
		Username: admin.Username,
		Mobile:   admin.Mobile,
		Nickname: admin.Nickname,
		Roles:    []*core.Role{role},
	}}, "Obtain current user information successfully")
}

func (b *Backend) userList(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("username")
	b.mu.Lock()
	var out []*core.User
	for _, u := range b.Users {
		if name == "" || strings.Contains(u.Username, name) {
			out = append(out, u)
		}
	}
	b.mu.Unlock()
	success(w, map[string]any{"users": out, "total": len(out)}, "Obtain user list successfully")
}

func (b *Backend) roleList(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	success(w, map[string]any{"roles": b.Roles, "total": len(b.Roles)}, "Obtaining role list successfully")
}

func (b *Backend) roleMenus(w http.ResponseWriter, r *http.Request) {
	if _, err := strconv.Atoi(chi.URLParam(r, "id")); err != nil {
		fail(w, http.StatusBadRequest, "Role ID is incorrect")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	success(w, map[string]any{"menus": flatten(b.Menus)}, "Obtaining the role's permission menu successfully")
}

func (b *Backend) roleAPIs(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	success(w, map[string]any{"apis": b.APIs}, "Obtaining the role's permission interface successfully")
}

func (b *Backend) menuTree(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	success(w, map[string]any{"menuTree": b.Menus}, "Get menu tree successfully")
}

func (b *Backend) menuList(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	success(w, map[string]any{"menus": flatten(b.Menus)}, "Get menu list successfully")
}

func (b *Backend) logList(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	success(w, map[string]any{"logs": b.Logs, "total": len(b.Logs)}, "Obtaining operation log list successfully")
}

func flatten(nodes []*core.MenuNode) []*core.MenuNode {
	var out []*core.MenuNode
	for _, n := range nodes {
		leaf := *n
		leaf.Children = nil
		out = append(out, &leaf)
		out = append(out, flatten(n.Children)...)
	}
	return out
}

func ok(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		success(w, nil, message)
	}
}

func success(w http.ResponseWriter, data any, message string) {
	write(w, http.StatusOK, data, message)
}

func fail(w http.ResponseWriter, status int, message string) {
	write(w, status, nil, message)
}

func write(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": status, "data": data, "message": message})
}

// String implements fmt.Stringer for readable assertion failures.
func (c Call) String() string {
	return fmt.Sprintf("%s %s?%s %s", c.Method, c.Path, c.Query, c.Body)
}
