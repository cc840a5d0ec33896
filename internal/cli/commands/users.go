package commands

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/goadmin/internal/cli/output"
	"github.com/leapstack-labs/goadmin/pkg/core"
	"github.com/spf13/cobra"
)

// listPageSize is used when a command walks every page of a list.
const listPageSize = 100

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage users",
	}
	cmd.AddCommand(
		newUsersListCommand(),
		newUsersCreateCommand(),
		newUsersUpdateCommand(),
		newUsersDeleteCommand(),
		newUsersPasswdCommand(),
	)
	return cmd
}

// UserListOptions holds options for users list.
type UserListOptions struct {
	Username string
	Mobile   string
	Nickname string
	Status   string
	Page     uint
	PageSize uint
}

func newUsersListCommand() *cobra.Command {
	opts := &UserListOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Example: `  goadmin users list
  goadmin users list --username adm --status normal -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUsersList(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Username, "username", "", "Filter by username")
	cmd.Flags().StringVar(&opts.Mobile, "mobile", "", "Filter by mobile")
	cmd.Flags().StringVar(&opts.Nickname, "nickname", "", "Filter by nickname")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status (normal|disabled)")
	cmd.Flags().UintVar(&opts.Page, "page", 0, "Page number")
	cmd.Flags().UintVar(&opts.PageSize, "page-size", 0, "Page size")
	return cmd
}

func runUsersList(cmd *cobra.Command, opts *UserListOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	status, err := parseStatus(opts.Status)
	if err != nil {
		return err
	}

	res, err := cc.API.Users.List(ctxOf(cmd), core.UserListRequest{
		Username: opts.Username,
		Mobile:   opts.Mobile,
		Nickname: opts.Nickname,
		Status:   status,
		Page:     core.Page{PageNum: opts.Page, PageSize: opts.PageSize},
	})
	if err != nil {
		return err
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(res)
	}
	r.Header(1, fmt.Sprintf("Users (%d total)", res.Total))
	rows := make([][]string, 0, len(res.Users))
	for _, u := range res.Users {
		rows = append(rows, []string{itoa(u.ID), u.Username, u.Nickname, u.Mobile, u.Status.String(), joinOrDash(uintsToStrings(u.RoleIDs))})
	}
	r.Table([]string{"ID", "Username", "Nickname", "Mobile", "Status", "Roles"}, rows)
	return nil
}

// UserFormOptions holds the fields of users create and update.
type UserFormOptions struct {
	Username     string
	Password     string
	Mobile       string
	Avatar       string
	Nickname     string
	Introduction string
	Status       string
	RoleIDs      []uint
}

func (o *UserFormOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Username, "username", "", "Username")
	cmd.Flags().StringVar(&o.Password, "password", "", "Password")
	cmd.Flags().StringVar(&o.Mobile, "mobile", "", "11-digit mobile number")
	cmd.Flags().StringVar(&o.Avatar, "avatar", "", "Avatar URL")
	cmd.Flags().StringVar(&o.Nickname, "nickname", "", "Nickname")
	cmd.Flags().StringVar(&o.Introduction, "introduction", "", "Introduction")
	cmd.Flags().StringVar(&o.Status, "status", "normal", "Status (normal|disabled)")
	cmd.Flags().UintSliceVar(&o.RoleIDs, "role-ids", nil, "Role ids")
}

// apply copies the flags set on cmd onto body.
func (o *UserFormOptions) apply(cmd *cobra.Command, body *core.CreateUserRequest) error {
	f := cmd.Flags()
	if f.Changed("username") {
		body.Username = o.Username
	}
	if f.Changed("password") {
		body.Password = o.Password
	}
	if f.Changed("mobile") {
		body.Mobile = o.Mobile
	}
	if f.Changed("avatar") {
		body.Avatar = o.Avatar
	}
	if f.Changed("nickname") {
		body.Nickname = o.Nickname
	}
	if f.Changed("introduction") {
		body.Introduction = o.Introduction
	}
	if f.Changed("status") || body.Status == 0 {
		status, err := parseStatus(o.Status)
		if err != nil {
			return err
		}
		body.Status = status
	}
	if f.Changed("role-ids") {
		body.RoleIDs = o.RoleIDs
	}
	return nil
}

func newUsersCreateCommand() *cobra.Command {
	opts := &UserFormOptions{}
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a user",
		Example: `  goadmin users create --username alice --password s3cret --mobile 13800000000 --role-ids 2`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUsersCreate(cmd, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runUsersCreate(cmd *cobra.Command, opts *UserFormOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	body := core.CreateUserRequest{}
	if err := opts.apply(cmd, &body); err != nil {
		return err
	}
	if err := validateBody(body); err != nil {
		return err
	}
	if body.Password, err = cc.EncryptPassword(body.Password); err != nil {
		return err
	}

	env, err := cc.API.Users.Create(ctxOf(cmd), body)
	if err != nil {
		return err
	}
	return renderEnvelope(cc.Renderer, env)
}

func newUsersUpdateCommand() *cobra.Command {
	opts := &UserFormOptions{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user",
		Long: `Update a user. Fields not given on the command line keep their current
value, which is looked up from the user list first.`,
		Example: `  goadmin users update 2 --status disabled`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersUpdate(cmd, args[0], opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runUsersUpdate(cmd *cobra.Command, arg string, opts *UserFormOptions) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := ctxOf(cmd)

	current, err := findUser(ctx, cc, id)
	if err != nil {
		return err
	}
	body := core.UpdateUserRequest{
		Username:     current.Username,
		Mobile:       current.Mobile,
		Avatar:       current.Avatar,
		Nickname:     current.Nickname,
		Introduction: current.Introduction,
		Status:       current.Status,
		RoleIDs:      current.RoleIDs,
	}
	if err := opts.apply(cmd, &body); err != nil {
		return err
	}
	if err := validateBody(body); err != nil {
		return err
	}
	if body.Password, err = cc.EncryptPassword(body.Password); err != nil {
		return err
	}

	env, err := cc.API.Users.Update(ctx, id, body)
	if err != nil {
		return err
	}
	return renderEnvelope(cc.Renderer, env)
}

// findUser walks the user list until it finds id.
func findUser(ctx context.Context, cc *CommandContext, id uint) (*core.User, error) {
	for page := uint(1); ; page++ {
		res, err := cc.API.Users.List(ctx, core.UserListRequest{Page: core.Page{PageNum: page, PageSize: listPageSize}})
		if err != nil {
			return nil, err
		}
		for _, u := range res.Users {
			if u.ID == id {
				return u, nil
			}
		}
		if len(res.Users) < listPageSize || int64(page*listPageSize) >= res.Total {
			return nil, fmt.Errorf("user %d not found", id)
		}
	}
}

func newUsersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete users",
		Example: `  goadmin users delete 3 4
  goadmin users delete 3,4`,
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

			env, err := cc.API.Users.BatchDelete(ctxOf(cmd), ids)
			if err != nil {
				return err
			}
			return renderEnvelope(cc.Renderer, env)
		},
	}
}

// PasswdOptions holds options for users passwd.
type PasswdOptions struct {
	Old string
	New string
}

func newUsersPasswdCommand() *cobra.Command {
	opts := &PasswdOptions{}
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the logged-in user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUsersPasswd(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Old, "old", "", "Current password (prompted when empty)")
	cmd.Flags().StringVar(&opts.New, "new", "", "New password (prompted when empty)")
	return cmd
}

func runUsersPasswd(cmd *cobra.Command, opts *PasswdOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := cc.RequireSession(); err != nil {
		return err
	}

	oldPwd, newPwd := opts.Old, opts.New
	if oldPwd == "" {
		if oldPwd, err = cc.ReadPassword("Current password: "); err != nil {
			return err
		}
	}
	if newPwd == "" {
		if newPwd, err = cc.ReadPassword("New password: "); err != nil {
			return err
		}
	}

	body := core.ChangePwdRequest{OldPassword: oldPwd, NewPassword: newPwd}
	if err := validateBody(body); err != nil {
		return err
	}
	if body.OldPassword, err = cc.EncryptPassword(oldPwd); err != nil {
		return err
	}
	if body.NewPassword, err = cc.EncryptPassword(newPwd); err != nil {
		return err
	}

	env, err := cc.API.Users.ChangePassword(ctxOf(cmd), body)
	if err != nil {
		return err
	}
	return renderEnvelope(cc.Renderer, env)
}

// renderEnvelope reports the outcome of a mutation.
func renderEnvelope(r *output.Renderer, env *core.Envelope) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(env)
	}
	msg := env.Message
	if msg == "" {
		msg = "OK"
	}
	r.Success(msg)
	return nil
}
