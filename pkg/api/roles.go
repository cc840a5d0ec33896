package api

import (
	"context"
	"net/http"

	"github.com/leapstack-labs/goadmin/pkg/core"
)

// Roles wraps the /role endpoints.
type Roles struct {
	c Doer
}

// List returns a filtered page of roles.
func (s *Roles) List(ctx context.Context, params core.RoleListRequest) (*RoleList, error) {
	return decode[RoleList](ctx, s.c, get(path("/role/list"), params.Values()))
}

// Create creates a role.
func (s *Roles) Create(ctx context.Context, body core.CreateRoleRequest) (*core.Envelope, error) {
	return mutate(ctx, s.c, send(http.MethodPost, path("/role/create"), body))
}

// Update replaces the editable fields of role id.
func (s *Roles) Update(ctx context.Context, id uint, body core.UpdateRoleRequest) (*core.Envelope, error) {
	return mutate(ctx, s.c, send(http.MethodPatch, path("/role/update/%d", id), body))
}

// Menus returns the menus granted to role id.
func (s *Roles) Menus(ctx context.Context, id uint) (*RoleMenus, error) {
	return decode[RoleMenus](ctx, s.c, get(path("/role/menus/get/%d", id), nil))
}

// UpdateMenus replaces the menus granted to role id.
func (s *Roles) UpdateMenus(ctx context.Context, id uint, body core.UpdateRoleMenusRequest) (*core.Envelope, error) {
	body.MenuIDs = nonNil(body.MenuIDs)
	return mutate(ctx, s.c, send(http.MethodPatch, path("/role/menus/update/%d", id), body))
}

// APIs returns the backend endpoints granted to role id.
func (s *Roles) APIs(ctx context.Context, id uint) (*RoleAPIs, error) {
	return decode[RoleAPIs](ctx, s.c, get(path("/role/apis/get/%d", id), nil))
}

// UpdateAPIs replaces the backend endpoints granted to role id.
func (s *Roles) UpdateAPIs(ctx context.Context, id uint, body core.UpdateRoleAPIsRequest) (*core.Envelope, error) {
	body.APIIDs = nonNil(body.APIIDs)
	return mutate(ctx, s.c, send(http.MethodPatch, path("/role/apis/update/%d", id), body))
}

// BatchDelete deletes every role in ids.
func (s *Roles) BatchDelete(ctx context.Context, ids []uint) (*core.Envelope, error) {
	return mutate(ctx, s.c, send(http.MethodDelete, path("/role/delete/batch"), core.DeleteRoleRequest{RoleIDs: nonNil(ids)}))
}
