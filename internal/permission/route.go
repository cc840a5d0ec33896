package permission

import (
	"strings"

	"github.com/leapstack-labs/goadmin/pkg/core"
)

// RouteMeta is the display metadata of a route.
type RouteMeta struct {
	Name       string `json:"name,omitempty"`
	Title      string `json:"title,omitempty"`
	Icon       string `json:"icon,omitempty"`
	NoCache    bool   `json:"noCache"`
	Breadcrumb bool   `json:"breadcrumb"`
	ActiveMenu string `json:"activeMenu,omitempty"`
}

// Route is one node of the navigation tree.
// Leaf routes have nil Children, which is omitted when encoded.
type Route struct {
	Path       string    `json:"path"`
	Name       string    `json:"name,omitempty"`
	Component  Component `json:"component"`
	Hidden     bool      `json:"hidden"`
	Redirect   string    `json:"redirect,omitempty"`
	AlwaysShow bool      `json:"alwaysShow"`
	Meta       RouteMeta `json:"meta"`
	Children   []*Route  `json:"children,omitempty"`
}

// RoutesFromMenuTree converts menus depth-first, preserving order and shape.
// The input tree is never modified.
func RoutesFromMenuTree(menus []*core.MenuNode, views ViewResolver) []*Route {
	routes := make([]*Route, 0, len(menus))
	for _, menu := range menus {
		if menu == nil {
			continue
		}
		routes = append(routes, routeFromMenu(menu, views))
	}
	return routes
}

func routeFromMenu(menu *core.MenuNode, views ViewResolver) *Route {
	var children []*Route
	if len(menu.Children) > 0 {
		children = RoutesFromMenuTree(menu.Children, views)
	}
	return &Route{
		Path:       menu.Path,
		Name:       menu.Name,
		Component:  LoadComponent(menu.Component, views),
		Hidden:     menu.Hidden.Bool(),
		Redirect:   menu.Redirect,
		AlwaysShow: menu.AlwaysShow.Bool(),
		Meta: RouteMeta{
			Name:       menu.Name,
			Title:      menu.Title,
			Icon:       menu.Icon,
			NoCache:    menu.NoCache.Bool(),
			Breadcrumb: menu.Breadcrumb.Bool(),
			ActiveMenu: menu.ActiveMenu,
		},
		Children: children,
	}
}

// IsLeaf reports whether r has no children.
func (r *Route) IsLeaf() bool {
	return len(r.Children) == 0
}

// FullPath joins a child path onto its parent's like the view router does:
// absolute child paths stand alone.
func FullPath(parent, child string) string {
	if strings.HasPrefix(child, "/") || parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return strings.TrimRight(parent, "/") + "/" + child
}

// FlatRoute is a route paired with its resolved absolute path.
type FlatRoute struct {
	FullPath string
	Route    *Route
	Depth    int
}

// Flatten lists routes in pre-order with their absolute paths.
func Flatten(routes []*Route) []FlatRoute {
	var out []FlatRoute
	var walk func(parent string, rs []*Route, depth int)
	walk = func(parent string, rs []*Route, depth int) {
		for _, r := range rs {
			full := FullPath(parent, r.Path)
			out = append(out, FlatRoute{FullPath: full, Route: r, Depth: depth})
			walk(full, r.Children, depth+1)
		}
	}
	walk("", routes, 0)
	return out
}

// Find returns the route whose absolute path equals path.
func Find(routes []*Route, path string) (*Route, bool) {
	want := normalize(path)
	for _, fr := range Flatten(routes) {
		if normalize(fr.FullPath) == want {
			return fr.Route, true
		}
	}
	return nil, false
}

func normalize(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// Count returns the number of routes in a forest.
func Count(routes []*Route) int {
	n := 0
	for _, r := range routes {
		n += 1 + Count(r.Children)
	}
	return n
}
