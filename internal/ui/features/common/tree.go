package common

import (
	"strings"

	"github.com/leapstack-labs/goadmin/internal/permission"
)

// BuildNav turns a route table into the visible navigation tree.
// Hidden routes are skipped. A layout route with exactly one visible child
// collapses into that child unless it is marked always-show.
func BuildNav(routes []*permission.Route) []NavNode {
	return buildNav("", routes)
}

func buildNav(parent string, routes []*permission.Route) []NavNode {
	nodes := make([]NavNode, 0, len(routes))
	for _, r := range routes {
		if r == nil || r.Hidden {
			continue
		}
		full := permission.FullPath(parent, r.Path)
		children := buildNav(full, r.Children)

		if len(children) == 1 && !r.AlwaysShow && len(r.Children) > 0 {
			nodes = append(nodes, children[0])
			continue
		}

		nodes = append(nodes, NavNode{
			Title:    title(r),
			Path:     full,
			Icon:     r.Meta.Icon,
			Children: children,
		})
	}
	return nodes
}

func title(r *permission.Route) string {
	switch {
	case r.Meta.Title != "":
		return r.Meta.Title
	case r.Name != "":
		return r.Name
	default:
		return strings.Trim(r.Path, "/")
	}
}

// ViewPath is the console URL that activates the route at full.
func ViewPath(full string) string {
	return "/view/" + strings.TrimLeft(full, "/")
}
