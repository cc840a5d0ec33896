package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/goadmin/internal/cli/output"
	"github.com/leapstack-labs/goadmin/internal/permission"
	"github.com/spf13/cobra"
)

// RoutesOptions holds options for the routes command.
type RoutesOptions struct {
	All      bool
	Flat     bool
	ViewsDir string
}

// NewRoutesCommand creates the routes command.
func NewRoutesCommand() *cobra.Command {
	opts := &RoutesOptions{}

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Generate the route tree for the logged-in user",
		Long: `Fetch the menus the logged-in user may access and convert them into the
client route tree, exactly as the console does after login.

Use --all to include the constant routes (login, 401, dashboard) and
--views to check that every view module exists under a directory.`,
		Example: `  goadmin routes
  goadmin routes --flat --all
  goadmin routes --views ./web/src/views -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoutes(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "Include constant routes")
	cmd.Flags().BoolVar(&opts.Flat, "flat", false, "Show a flat table of absolute paths")
	cmd.Flags().StringVar(&opts.ViewsDir, "views", "", "Directory to resolve view modules against")

	return cmd
}

func runRoutes(cmd *cobra.Command, opts *RoutesOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := ctxOf(cmd)

	if err := cc.RequireSession(); err != nil {
		return err
	}
	userID, err := fetchIdentity(ctx, cc)
	if err != nil {
		return err
	}

	store := cc.Session.Routes()
	if opts.ViewsDir != "" {
		store.WithViews(fileViews(opts.ViewsDir))
	}
	routes, err := store.GenerateRoutes(ctx, userID)
	if err != nil {
		return err
	}
	if opts.All {
		routes = store.Routes()
	}

	var missing []string
	if opts.ViewsDir != "" {
		missing = unresolvedViews(routes)
	}

	r := cc.Renderer
	switch {
	case r.EffectiveMode() == output.ModeJSON:
		if routes == nil {
			routes = []*permission.Route{}
		}
		if err := r.JSON(routes); err != nil {
			return err
		}
	case opts.Flat:
		r.Header(1, fmt.Sprintf("Routes (%d)", permission.Count(routes)))
		var rows [][]string
		for _, fr := range permission.Flatten(routes) {
			rows = append(rows, []string{fr.FullPath, fr.Route.Meta.Title, fr.Route.Component.Module(), yesNo(fr.Route.Hidden), fr.Route.Redirect})
		}
		r.Table([]string{"Path", "Title", "Component", "Hidden", "Redirect"}, rows)
	default:
		r.Header(1, fmt.Sprintf("Routes (%d)", permission.Count(routes)))
		r.Tree(routeItems("", routes))
	}

	if len(missing) > 0 {
		for _, m := range missing {
			r.Warning("unresolved view " + m)
		}
		return fmt.Errorf("%d view module(s) not found under %s", len(missing), opts.ViewsDir)
	}
	return nil
}

func routeItems(parent string, routes []*permission.Route) []output.TreeItem {
	items := make([]output.TreeItem, 0, len(routes))
	for _, rt := range routes {
		full := permission.FullPath(parent, rt.Path)
		label := full
		if rt.Meta.Title != "" {
			label += "  " + rt.Meta.Title
		}
		label += "  <" + rt.Component.Module() + ">"
		var flags []string
		if rt.Hidden {
			flags = append(flags, "hidden")
		}
		if rt.AlwaysShow {
			flags = append(flags, "always-show")
		}
		if rt.Redirect != "" {
			flags = append(flags, "-> "+rt.Redirect)
		}
		if len(flags) > 0 {
			label += " (" + strings.Join(flags, ", ") + ")"
		}
		items = append(items, output.TreeItem{Label: label, Children: routeItems(full, rt.Children)})
	}
	return items
}

// viewExtensions are tried in order when resolving a module to a file.
var viewExtensions = []string{"", ".vue", ".html", ".templ"}

// fileViews resolves "@/views/<module>" against files under dir.
func fileViews(dir string) permission.ViewResolver {
	return permission.ViewResolverFunc(func(module string) (any, error) {
		rel := strings.TrimPrefix(module, permission.ViewPrefix)
		base := filepath.Join(dir, filepath.FromSlash(rel))
		for _, ext := range viewExtensions {
			if fi, err := os.Stat(base + ext); err == nil && !fi.IsDir() {
				return base + ext, nil
			}
		}
		return nil, os.ErrNotExist
	})
}

// unresolvedViews loads every lazy view and returns the modules that failed.
func unresolvedViews(routes []*permission.Route) []string {
	var missing []string
	for _, fr := range permission.Flatten(routes) {
		v, ok := fr.Route.Component.(*permission.View)
		if !ok {
			continue
		}
		if _, err := v.Load(); err != nil {
			missing = append(missing, v.Module())
		}
	}
	return missing
}
