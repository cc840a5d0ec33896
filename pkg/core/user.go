package core

import "net/url"

// User is a row of the user list.
type User struct {
	ID           uint   `json:"ID"`
	Username     string `json:"username"`
	Mobile       string `json:"mobile"`
	Avatar       string `json:"avatar"`
	Nickname     string `json:"nickname"`
	Introduction string `json:"introduction"`
	Status       Status `json:"status"`
	Creator      string `json:"creator"`
	RoleIDs      []uint `json:"roleIds"`
}

// UserInfo describes the currently authenticated user.
type UserInfo struct {
	ID           uint    `json:"id"`
	Username     string  `json:"username"`
	Mobile       string  `json:"mobile"`
	Avatar       string  `json:"avatar"`
	Nickname     string  `json:"nickname"`
	Introduction string  `json:"introduction"`
	Roles        []*Role `json:"roles"`
}

// RoleKeywords returns the keywords of the user's roles in order.
func (u *UserInfo) RoleKeywords() []string {
	if u == nil {
		return nil
	}
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		if r != nil {
			out = append(out, r.Keyword)
		}
	}
	return out
}

// UserListRequest holds the filters of GET /user/list.
type UserListRequest struct {
	Username string `json:"username,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Status   Status `json:"status,omitempty"`
	Page
}

// CreateUserRequest is the body of POST /user/create.
type CreateUserRequest struct {
	Username     string `json:"username" validate:"required,min=2,max=20"`
	Password     string `json:"password"`
	Mobile       string `json:"mobile" validate:"required,numeric,len=11"`
	Avatar       string `json:"avatar"`
	Nickname     string `json:"nickname" validate:"min=0,max=20"`
	Introduction string `json:"introduction" validate:"min=0,max=255"`
	Status       Status `json:"status" validate:"oneof=1 2"`
	RoleIDs      []uint `json:"roleIds" validate:"required"`
}

// UpdateUserRequest shares the create payload shape.
type UpdateUserRequest = CreateUserRequest

// DeleteUserRequest is the body of DELETE /user/delete/batch.
type DeleteUserRequest struct {
	UserIDs []uint `json:"userIds"`
}

// ChangePwdRequest is the body of PUT /user/changePwd.
type ChangePwdRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// LoginRequest is the body of POST /base/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Values encodes the filters as query parameters, skipping zero values.
func (r UserListRequest) Values() url.Values {
	v := url.Values{}
	setString(v, "username", r.Username)
	setString(v, "mobile", r.Mobile)
	setString(v, "nickname", r.Nickname)
	setUint(v, "status", uint(r.Status))
	r.Page.encode(v)
	return v
}
