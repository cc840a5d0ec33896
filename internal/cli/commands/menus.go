package commands

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/goadmin/internal/cli/output"
	"github.com/leapstack-labs/goadmin/pkg/core"
	"github.com/spf13/cobra"
)

// NewMenusCommand creates the menus command group.
func NewMenusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "menus",
		Aliases: []string{"menu"},
		Short:   "Manage the menu tree",
	}
	cmd.AddCommand(
		newMenusTreeCommand(),
		newMenusListCommand(),
		newMenusCreateCommand(),
		newMenusUpdateCommand(),
		newMenusDeleteCommand(),
		newMenusAccessCommand(),
	)
	return cmd
}

func newMenusTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the full menu tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := cc.API.Menus.Tree(ctxOf(cmd))
			if err != nil {
				return err
			}
			return renderMenuTree(cc.Renderer, "Menu tree", res.MenuTree)
		},
	}
}

func newMenusListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all menus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := cc.API.Menus.List(ctxOf(cmd))
			if err != nil {
				return err
			}
			return renderMenuRows(cc.Renderer, "Menus", res.Menus)
		},
	}
}

// MenuAccessOptions holds options for menus access.
type MenuAccessOptions struct {
	UserID uint
	Flat   bool
}

func newMenusAccessCommand() *cobra.Command {
	opts := &MenuAccessOptions{}
	cmd := &cobra.Command{
		Use:   "access",
		Short: "Show the menus a user may access",
		Long: `Show the menus a user may access. Defaults to the logged-in user.

The tree form is what the route generator consumes; --flat shows the list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			ctx := ctxOf(cmd)

			userID := opts.UserID
			if userID == 0 {
				if err := cc.RequireSession(); err != nil {
					return err
				}
				if userID, err = fetchIdentity(ctx, cc); err != nil {
					return err
				}
			}

			if opts.Flat {
				res, err := cc.API.Menus.UserAccessList(ctx, userID)
				if err != nil {
					return err
				}
				return renderMenuRows(cc.Renderer, fmt.Sprintf("Menus of user %d", userID), res.Menus)
			}
			res, err := cc.API.Menus.UserAccessTree(ctx, userID)
			if err != nil {
				return err
			}
			return renderMenuTree(cc.Renderer, fmt.Sprintf("Menu tree of user %d", userID), res.MenuTree)
		},
	}
	cmd.Flags().UintVar(&opts.UserID, "user-id", 0, "User id (default: logged-in user)")
	cmd.Flags().BoolVar(&opts.Flat, "flat", false, "Show the flat list instead of the tree")
	return cmd
}

// MenuFormOptions holds the fields of menus create and update.
type MenuFormOptions struct {
	Name       string
	Title      string
	Icon       string
	Path       string
	Redirect   string
	Component  string
	Sort       uint
	Status     string
	Hidden     bool
	NoCache    bool
	AlwaysShow bool
	Breadcrumb bool
	ActiveMenu string
	ParentID   uint
}

func (o *MenuFormOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.Name, "name", "", "Route name")
	f.StringVar(&o.Title, "title", "", "Title shown in navigation")
	f.StringVar(&o.Icon, "icon", "", "Icon name")
	f.StringVar(&o.Path, "path", "", "Route path")
	f.StringVar(&o.Redirect, "redirect", "", "Redirect target")
	f.StringVar(&o.Component, "component", "", "View module path, or Layout")
	f.UintVar(&o.Sort, "sort", 999, "Sort order")
	f.StringVar(&o.Status, "status", "normal", "Status (normal|disabled)")
	f.BoolVar(&o.Hidden, "hidden", false, "Hide from navigation")
	f.BoolVar(&o.NoCache, "no-cache", false, "Don't cache the view")
	f.BoolVar(&o.AlwaysShow, "always-show", false, "Always show the root menu")
	f.BoolVar(&o.Breadcrumb, "breadcrumb", true, "Show in breadcrumb")
	f.StringVar(&o.ActiveMenu, "active-menu", "", "Path to highlight when active")
	f.UintVar(&o.ParentID, "parent-id", 0, "Parent menu id (0 for a root menu)")
}

func (o *MenuFormOptions) apply(cmd *cobra.Command, body *core.CreateMenuRequest) error {
	f := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if f.Changed(name) {
			*dst = v
		}
	}
	set("name", &body.Name, o.Name)
	set("title", &body.Title, o.Title)
	set("icon", &body.Icon, o.Icon)
	set("path", &body.Path, o.Path)
	set("redirect", &body.Redirect, o.Redirect)
	set("component", &body.Component, o.Component)
	set("active-menu", &body.ActiveMenu, o.ActiveMenu)

	flag := func(name string, dst *core.Flag, v bool) {
		if f.Changed(name) || *dst == core.FlagUnset {
			*dst = core.FlagOf(v)
		}
	}
	flag("hidden", &body.Hidden, o.Hidden)
	flag("no-cache", &body.NoCache, o.NoCache)
	flag("always-show", &body.AlwaysShow, o.AlwaysShow)
	flag("breadcrumb", &body.Breadcrumb, o.Breadcrumb)

	if f.Changed("sort") || body.Sort == 0 {
		body.Sort = o.Sort
	}
	if f.Changed("parent-id") {
		body.ParentID = o.ParentID
	}
	if f.Changed("status") || body.Status == 0 {
		status, err := parseStatus(o.Status)
		if err != nil {
			return err
		}
		body.Status = status
	}
	return nil
}

func newMenusCreateCommand() *cobra.Command {
	opts := &MenuFormOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a menu",
		Example: `  goadmin menus create --name Dict --title Dictionary --path dict \
    --component /system/dict/index --parent-id 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			body := core.CreateMenuRequest{}
			if err := opts.apply(cmd, &body); err != nil {
				return err
			}
			if err := validateBody(body); err != nil {
				return err
			}
			env, err := cc.API.Menus.Create(ctxOf(cmd), body)
			if err != nil {
				return err
			}
			return renderEnvelope(cc.Renderer, env)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newMenusUpdateCommand() *cobra.Command {
	opts := &MenuFormOptions{}
	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   "Update a menu",
		Long:    `Update a menu. Fields not given on the command line keep their current value.`,
		Example: `  goadmin menus update 4 --hidden=false`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			ctx := ctxOf(cmd)

			current, err := findMenu(ctx, cc, id)
			if err != nil {
				return err
			}
			body := core.UpdateMenuRequest{
				Name:       current.Name,
				Title:      current.Title,
				Icon:       current.Icon,
				Path:       current.Path,
				Redirect:   current.Redirect,
				Component:  current.Component,
				Sort:       current.Sort,
				Status:     current.Status,
				Hidden:     current.Hidden,
				NoCache:    current.NoCache,
				AlwaysShow: current.AlwaysShow,
				Breadcrumb: current.Breadcrumb,
				ActiveMenu: current.ActiveMenu,
				ParentID:   current.ParentID,
			}
			if err := opts.apply(cmd, &body); err != nil {
				return err
			}
			if err := validateBody(body); err != nil {
				return err
			}
			env, err := cc.API.Menus.Update(ctx, id, body)
			if err != nil {
				return err
			}
			return renderEnvelope(cc.Renderer, env)
		},
	}
	opts.bind(cmd)
	return cmd
}

func findMenu(ctx context.Context, cc *CommandContext, id uint) (*core.MenuNode, error) {
	res, err := cc.API.Menus.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range res.Menus {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("menu %d not found", id)
}

func newMenusDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete menus",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			env, err := cc.API.Menus.BatchDelete(ctxOf(cmd), ids)
			if err != nil {
				return err
			}
			return renderEnvelope(cc.Renderer, env)
		},
	}
}

func renderMenuRows(r *output.Renderer, title string, menus []*core.MenuNode) error {
	if r.EffectiveMode() == output.ModeJSON {
		if menus == nil {
			menus = []*core.MenuNode{}
		}
		return r.JSON(menus)
	}
	r.Header(1, fmt.Sprintf("%s (%d)", title, len(menus)))
	rows := make([][]string, 0, len(menus))
	for _, m := range menus {
		rows = append(rows, []string{
			itoa(m.ID), m.Title, m.Path, m.Component, itoa(m.ParentID), itoa(m.Sort), yesNo(m.Hidden.Bool()), m.Status.String(),
		})
	}
	r.Table([]string{"ID", "Title", "Path", "Component", "Parent", "Sort", "Hidden", "Status"}, rows)
	return nil
}

func renderMenuTree(r *output.Renderer, title string, menus []*core.MenuNode) error {
	if r.EffectiveMode() == output.ModeJSON {
		if menus == nil {
			menus = []*core.MenuNode{}
		}
		return r.JSON(menus)
	}
	r.Header(1, fmt.Sprintf("%s (%d menus)", title, core.CountMenuNodes(menus)))
	r.Tree(menuItems(menus))
	return nil
}

func menuItems(menus []*core.MenuNode) []output.TreeItem {
	items := make([]output.TreeItem, 0, len(menus))
	for _, m := range menus {
		if m == nil {
			continue
		}
		label := fmt.Sprintf("%s  %s  [%d]", m.Title, m.Path, m.ID)
		if m.Hidden.Bool() {
			label += " (hidden)"
		}
		items = append(items, output.TreeItem{Label: label, Children: menuItems(m.Children)})
	}
	return items
}
