package api

import (
	"context"
	"net/http"

	"github.com/leapstack-labs/goadmin/pkg/core"
)

// Users wraps the /user endpoints.
type Users struct {
	c Doer
}

// Info returns the currently authenticated user.
func (s *Users) Info(ctx context.Context) (*UserInfoResult, error) {
	return decode[UserInfoResult](ctx, s.c, send(http.MethodPost, path("/user/info"), nil))
}

// List returns a filtered page of users.
func (s *Users) List(ctx context.Context, params core.UserListRequest) (*UserList, error) {
	return decode[UserList](ctx, s.c, get(path("/user/list"), params.Values()))
}

// ChangePassword changes the current user's password.
func (s *Users) ChangePassword(ctx context.Context, body core.ChangePwdRequest) (*core.Envelope, error) {
	return mutate(ctx, s.c, send(http.MethodPut, path("/user/changePwd"), body))
}

// Create creates a user.
func (s *Users) Create(ctx context.Context, body core.CreateUserRequest) (*core.Envelope, error) {
	return mutate(ctx, s.c, send(http.MethodPost, path("/user/create"), body))
}

// Update replaces the editable fields of user id.
func (s *Users) Update(ctx context.Context, id uint, body core.UpdateUserRequest) (*core.Envelope, error) {
	return mutate(ctx, s.c, send(http.MethodPatch, path("/user/update/%d", id), body))
}

// BatchDelete deletes every user in ids.
func (s *Users) BatchDelete(ctx context.Context, ids []uint) (*core.Envelope, error) {
	return mutate(ctx, s.c, send(http.MethodDelete, path("/user/delete/batch"), core.DeleteUserRequest{UserIDs: nonNil(ids)}))
}

// nonNil keeps an empty selection encoded as [] rather than null.
func nonNil(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}
	return ids
}
