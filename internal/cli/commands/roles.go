package commands

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/goadmin/internal/cli/output"
	"github.com/leapstack-labs/goadmin/pkg/core"
	"github.com/spf13/cobra"
)

// NewRolesCommand creates the roles command group.
func NewRolesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "roles",
		Aliases: []string{"role"},
		Short:   "Manage roles and their permissions",
	}
	cmd.AddCommand(
		newRolesListCommand(),
		newRolesCreateCommand(),
		newRolesUpdateCommand(),
		newRolesDeleteCommand(),
		newRolesMenusCommand(),
		newRolesSetMenusCommand(),
		newRolesAPIsCommand(),
		newRolesSetAPIsCommand(),
	)
	return cmd
}

// RoleListOptions holds options for roles list.
type RoleListOptions struct {
	Name     string
	Keyword  string
	Status   string
	Page     uint
	PageSize uint
}

func newRolesListCommand() *cobra.Command {
	opts := &RoleListOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			status, err := parseStatus(opts.Status)
			if err != nil {
				return err
			}
			res, err := cc.API.Roles.List(ctxOf(cmd), core.RoleListRequest{
				Name:    opts.Name,
				Keyword: opts.Keyword,
				Status:  status,
				Page:    core.Page{PageNum: opts.Page, PageSize: opts.PageSize},
			})
			if err != nil {
				return err
			}

			r := cc.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(res)
			}
			r.Header(1, fmt.Sprintf("Roles (%d total)", res.Total))
			rows := make([][]string, 0, len(res.Roles))
			for _, role := range res.Roles {
				rows = append(rows, []string{itoa(role.ID), role.Name, role.Keyword, itoa(role.Sort), role.Status.String(), role.Desc})
			}
			r.Table([]string{"ID", "Name", "Keyword", "Sort", "Status", "Description"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "Filter by name")
	cmd.Flags().StringVar(&opts.Keyword, "keyword", "", "Filter by keyword")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status (normal|disabled)")
	cmd.Flags().UintVar(&opts.Page, "page", 0, "Page number")
	cmd.Flags().UintVar(&opts.PageSize, "page-size", 0, "Page size")
	return cmd
}

// RoleFormOptions holds the fields of roles create and update.
type RoleFormOptions struct {
	Name    string
	Keyword string
	Desc    string
	Status  string
	Sort    uint
}

func (o *RoleFormOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Name, "name", "", "Role name")
	cmd.Flags().StringVar(&o.Keyword, "keyword", "", "Role keyword")
	cmd.Flags().StringVar(&o.Desc, "desc", "", "Description")
	cmd.Flags().StringVar(&o.Status, "status", "normal", "Status (normal|disabled)")
	cmd.Flags().UintVar(&o.Sort, "sort", 999, "Privilege rank, 1 is the highest")
}

func (o *RoleFormOptions) apply(cmd *cobra.Command, body *core.CreateRoleRequest) error {
	f := cmd.Flags()
	if f.Changed("name") {
		body.Name = o.Name
	}
	if f.Changed("keyword") {
		body.Keyword = o.Keyword
	}
	if f.Changed("desc") {
		body.Desc = o.Desc
	}
	if f.Changed("sort") || body.Sort == 0 {
		body.Sort = o.Sort
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

func newRolesCreateCommand() *cobra.Command {
	opts := &RoleFormOptions{}
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a role",
		Example: `  goadmin roles create --name Auditor --keyword auditor --sort 10`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			body := core.CreateRoleRequest{}
			if err := opts.apply(cmd, &body); err != nil {
				return err
			}
			if err := validateBody(body); err != nil {
				return err
			}
			env, err := cc.API.Roles.Create(ctxOf(cmd), body)
			if err != nil {
				return err
			}
			return renderEnvelope(cc.Renderer, env)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newRolesUpdateCommand() *cobra.Command {
	opts := &RoleFormOptions{}
	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   "Update a role",
		Long:    `Update a role. Fields not given on the command line keep their current value.`,
		Example: `  goadmin roles update 2 --desc "read-only access"`,
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

			current, err := findRole(ctx, cc, id)
			if err != nil {
				return err
			}
			body := core.UpdateRoleRequest{
				Name:    current.Name,
				Keyword: current.Keyword,
				Desc:    current.Desc,
				Status:  current.Status,
				Sort:    current.Sort,
			}
			if err := opts.apply(cmd, &body); err != nil {
				return err
			}
			if err := validateBody(body); err != nil {
				return err
			}
			env, err := cc.API.Roles.Update(ctx, id, body)
			if err != nil {
				return err
			}
			return renderEnvelope(cc.Renderer, env)
		},
	}
	opts.bind(cmd)
	return cmd
}

func findRole(ctx context.Context, cc *CommandContext, id uint) (*core.Role, error) {
	for page := uint(1); ; page++ {
		res, err := cc.API.Roles.List(ctx, core.RoleListRequest{Page: core.Page{PageNum: page, PageSize: listPageSize}})
		if err != nil {
			return nil, err
		}
		for _, role := range res.Roles {
			if role.ID == id {
				return role, nil
			}
		}
		if len(res.Roles) < listPageSize || int64(page*listPageSize) >= res.Total {
			return nil, fmt.Errorf("role %d not found", id)
		}
	}
}

func newRolesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete roles",
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

			env, err := cc.API.Roles.BatchDelete(ctxOf(cmd), ids)
			if err != nil {
				return err
			}
			return renderEnvelope(cc.Renderer, env)
		},
	}
}

func newRolesMenusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "menus <id>",
		Short: "Show the menus granted to a role",
		Args:  cobra.ExactArgs(1),
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

			res, err := cc.API.Roles.Menus(ctxOf(cmd), id)
			if err != nil {
				return err
			}
			return renderMenuRows(cc.Renderer, fmt.Sprintf("Menus of role %d", id), res.Menus)
		},
	}
}

func newRolesSetMenusCommand() *cobra.Command {
	var menuIDs []uint
	cmd := &cobra.Command{
		Use:     "set-menus <id>",
		Short:   "Replace the menus granted to a role",
		Example: `  goadmin roles set-menus 2 --menu-ids 1,2,5`,
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

			if menuIDs == nil {
				menuIDs = []uint{}
			}
			env, err := cc.API.Roles.UpdateMenus(ctxOf(cmd), id, core.UpdateRoleMenusRequest{MenuIDs: menuIDs})
			if err != nil {
				return err
			}
			return renderEnvelope(cc.Renderer, env)
		},
	}
	cmd.Flags().UintSliceVar(&menuIDs, "menu-ids", nil, "Menu ids to grant")
	return cmd
}

func newRolesAPIsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apis <id>",
		Short: "Show the APIs granted to a role",
		Args:  cobra.ExactArgs(1),
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

			res, err := cc.API.Roles.APIs(ctxOf(cmd), id)
			if err != nil {
				return err
			}

			r := cc.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(res)
			}
			r.Header(1, fmt.Sprintf("APIs of role %d", id))
			rows := make([][]string, 0, len(res.APIs))
			for _, a := range res.APIs {
				rows = append(rows, []string{itoa(a.ID), a.Method, a.Path, a.Category, a.Desc})
			}
			r.Table([]string{"ID", "Method", "Path", "Category", "Description"}, rows)
			return nil
		},
	}
}

func newRolesSetAPIsCommand() *cobra.Command {
	var apiIDs []uint
	cmd := &cobra.Command{
		Use:     "set-apis <id>",
		Short:   "Replace the APIs granted to a role",
		Example: `  goadmin roles set-apis 2 --api-ids 1,2`,
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

			if apiIDs == nil {
				apiIDs = []uint{}
			}
			env, err := cc.API.Roles.UpdateAPIs(ctxOf(cmd), id, core.UpdateRoleAPIsRequest{APIIDs: apiIDs})
			if err != nil {
				return err
			}
			return renderEnvelope(cc.Renderer, env)
		},
	}
	cmd.Flags().UintSliceVar(&apiIDs, "api-ids", nil, "API ids to grant")
	return cmd
}
