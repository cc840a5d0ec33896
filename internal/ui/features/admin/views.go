package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/goadmin/internal/permission"
	"github.com/leapstack-labs/goadmin/internal/ui/console"
	"github.com/leapstack-labs/goadmin/internal/ui/features/common"
	"github.com/leapstack-labs/goadmin/pkg/core"
)

// ViewFunc renders the content of one view module for a console.
type ViewFunc func(ctx context.Context, c *console.Console) (templ.Component, error)

// viewPageSize bounds the rows fetched for a list view.
const viewPageSize = 50

var builtinViews = map[string]ViewFunc{
	"/dashboard/index":         dashboardView,
	"/system/user/index":       usersView,
	"/system/role/index":       rolesView,
	"/system/menu/index":       menusView,
	"/log/operation-log/index": logsView,
	"/error-page/401":          unauthorizedView,
}

// Views resolves "@/views/..." modules to the console's built-in views.
func Views() permission.ViewResolver {
	return permission.ViewResolverFunc(func(module string) (any, error) {
		fn, ok := builtinViews[strings.TrimPrefix(module, permission.ViewPrefix)]
		if !ok {
			return nil, fmt.Errorf("unknown view %s", module)
		}
		return fn, nil
	})
}

func dashboardView(_ context.Context, c *console.Console) (templ.Component, error) {
	rows := [][]string{{"Backend", c.Client().BaseURL()}}
	if u := c.Session.User(); u != nil {
		rows = append(rows,
			[]string{"User", u.Username},
			[]string{"Nickname", u.Nickname},
			[]string{"Roles", strings.Join(u.RoleKeywords(), ", ")},
		)
	}
	if claims := c.Session.Claims(); claims != nil {
		rows = append(rows, []string{"Expires", common.TimeLabel(claims.ExpiresAt)})
	}
	rows = append(rows, []string{"Menus", common.Itoa(permission.Count(c.Session.Routes().AddRoutes()))})
	return Section("Dashboard", "", Table([]string{"Key", "Value"}, rows)), nil
}

func usersView(ctx context.Context, c *console.Console) (templ.Component, error) {
	res, err := c.API().Users.List(ctx, core.UserListRequest{Page: core.Page{PageNum: 1, PageSize: viewPageSize}})
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(res.Users))
	for _, u := range res.Users {
		rows = append(rows, []string{common.Itoa(u.ID), u.Username, u.Nickname, u.Mobile, common.StatusLabel(u.Status), u.Creator})
	}
	return Section("Users", common.Itoa(res.Total)+" total",
		Table([]string{"ID", "Username", "Nickname", "Mobile", "Status", "Creator"}, rows)), nil
}

func rolesView(ctx context.Context, c *console.Console) (templ.Component, error) {
	res, err := c.API().Roles.List(ctx, core.RoleListRequest{Page: core.Page{PageNum: 1, PageSize: viewPageSize}})
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(res.Roles))
	for _, r := range res.Roles {
		rows = append(rows, []string{common.Itoa(r.ID), r.Name, r.Keyword, common.Itoa(r.Sort), common.StatusLabel(r.Status), r.Desc})
	}
	return Section("Roles", common.Itoa(res.Total)+" total",
		Table([]string{"ID", "Name", "Keyword", "Sort", "Status", "Description"}, rows)), nil
}

func menusView(ctx context.Context, c *console.Console) (templ.Component, error) {
	res, err := c.API().Menus.List(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(res.Menus))
	for _, m := range res.Menus {
		rows = append(rows, []string{common.Itoa(m.ID), m.Title, m.Path, m.Component, common.Itoa(m.ParentID), yesNo(m.Hidden.Bool())})
	}
	return Section("Menus", "", Table([]string{"ID", "Title", "Path", "Component", "Parent", "Hidden"}, rows)), nil
}

func logsView(ctx context.Context, c *console.Console) (templ.Component, error) {
	res, err := c.API().OperationLogs.List(ctx, core.OperationLogListRequest{Page: core.Page{PageNum: 1, PageSize: viewPageSize}})
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(res.Logs))
	for _, l := range res.Logs {
		rows = append(rows, []string{
			common.Itoa(l.ID), l.Username, l.IP, l.Method, l.Path,
			common.Itoa(l.Status), common.TimeLabel(l.StartTime), common.Itoa(l.TimeCost) + "ms",
		})
	}
	return Section("Operation logs", common.Itoa(res.Total)+" total",
		Table([]string{"ID", "User", "IP", "Method", "Path", "Status", "Start", "Cost"}, rows)), nil
}

func unauthorizedView(context.Context, *console.Console) (templ.Component, error) {
	return ErrorPage(401, "You do not have permission to access this page."), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
