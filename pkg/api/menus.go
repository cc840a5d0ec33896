package api

import (
	"context"
	"net/http"

	"github.com/leapstack-labs/goadmin/pkg/core"
)

// Menus wraps the /menu endpoints.
type Menus struct {
	c Doer
}

// Tree returns the full menu tree.
func (s *Menus) Tree(ctx context.Context) (*MenuTree, error) {
	return decode[MenuTree](ctx, s.c, get(path("/menu/tree"), nil))
}

// List returns every menu as a flat list.
func (s *Menus) List(ctx context.Context) (*MenuList, error) {
	return decode[MenuList](ctx, s.c, get(path("/menu/list"), nil))
}

// Create creates a menu.
func (s *Menus) Create(ctx context.Context, body core.CreateMenuRequest) (*core.Envelope, error) {
	return mutate(ctx, s.c, send(http.MethodPost, path("/menu/create"), body))
}

// Update replaces the editable fields of menu id.
func (s *Menus) Update(ctx context.Context, id uint, body core.UpdateMenuRequest) (*core.Envelope, error) {
	return mutate(ctx, s.c, send(http.MethodPatch, path("/menu/update/%d", id), body))
}

// BatchDelete deletes every menu in ids.
func (s *Menus) BatchDelete(ctx context.Context, ids []uint) (*core.Envelope, error) {
	return mutate(ctx, s.c, send(http.MethodDelete, path("/menu/delete/batch"), core.DeleteMenuRequest{MenuIDs: nonNil(ids)}))
}

// UserAccessList returns the menus user userID may access, flattened.
func (s *Menus) UserAccessList(ctx context.Context, userID uint) (*MenuList, error) {
	return decode[MenuList](ctx, s.c, get(path("/menu/access/list/%d", userID), nil))
}

// UserAccessTree returns the menu tree user userID may access.
func (s *Menus) UserAccessTree(ctx context.Context, userID uint) (*MenuTree, error) {
	return decode[MenuTree](ctx, s.c, get(path("/menu/access/tree/%d", userID), nil))
}
