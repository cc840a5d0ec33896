package permission

import (
	"context"
	"fmt"
	"sync"

	"github.com/leapstack-labs/goadmin/pkg/api"
)

// MenuSource fetches the menu tree a user may access.
// *api.Menus satisfies it.
type MenuSource interface {
	UserAccessTree(ctx context.Context, userID uint) (*api.MenuTree, error)
}

// ConstantRoutes are available without any menu permission.
func ConstantRoutes() []*Route {
	return []*Route{
		{
			Path:      "/login",
			Component: LoadComponent("/login/index", nil),
			Hidden:    true,
		},
		{
			Path:      "/401",
			Component: LoadComponent("/error-page/401", nil),
			Hidden:    true,
		},
		{
			Path:      "/",
			Component: Layout,
			Redirect:  "/dashboard",
			Children: []*Route{
				{
					Path:      "dashboard",
					Name:      "Dashboard",
					Component: LoadComponent("/dashboard/index", nil),
					Meta:      RouteMeta{Name: "Dashboard", Title: "Dashboard", Icon: "dashboard"},
				},
			},
		},
	}
}

// Store caches the routes generated for the logged-in user.
type Store struct {
	menus MenuSource
	views ViewResolver

	mu        sync.RWMutex
	routes    []*Route
	addRoutes []*Route
}

// NewStore creates an empty store loading menus from menus.
func NewStore(menus MenuSource) *Store {
	return &Store{menus: menus}
}

// WithViews sets the resolver used for routes generated afterwards.
func (s *Store) WithViews(views ViewResolver) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = views
	return s
}

// GenerateRoutes fetches the user's menu tree, converts it, commits the
// result and returns the accessible routes.
func (s *Store) GenerateRoutes(ctx context.Context, userID uint) ([]*Route, error) {
	if s.menus == nil {
		return nil, fmt.Errorf("generate routes: no menu source")
	}
	tree, err := s.menus.UserAccessTree(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("generate routes: %w", err)
	}

	s.mu.RLock()
	views := s.views
	s.mu.RUnlock()

	var accessed []*Route
	if tree != nil {
		accessed = RoutesFromMenuTree(tree.MenuTree, views)
	}
	s.SetRoutes(accessed)
	return accessed, nil
}

// SetRoutes commits accessed routes; Routes becomes the constant routes
// followed by accessed.
func (s *Store) SetRoutes(accessed []*Route) {
	all := append(ConstantRoutes(), accessed...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.addRoutes = accessed
	s.routes = all
}

// Routes returns the full route table, or nil before generation.
func (s *Store) Routes() []*Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routes
}

// AddRoutes returns only the routes generated from the menu tree.
func (s *Store) AddRoutes() []*Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addRoutes
}

// Generated reports whether routes have been committed since the last reset.
func (s *Store) Generated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routes != nil
}

// Reset discards the cached routes.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = nil
	s.addRoutes = nil
}
