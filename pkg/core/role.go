package core

import "net/url"

// Role groups menu and API permissions.
// Sort is the privilege rank: 1 is the super administrator, larger is weaker.
type Role struct {
	ID      uint   `json:"ID"`
	Name    string `json:"name"`
	Keyword string `json:"keyword"`
	Desc    string `json:"desc"`
	Status  Status `json:"status"`
	Sort    uint   `json:"sort"`
	Creator string `json:"creator"`
}

// RoleListRequest holds the filters of GET /role/list.
type RoleListRequest struct {
	Name    string `json:"name,omitempty"`
	Keyword string `json:"keyword,omitempty"`
	Status  Status `json:"status,omitempty"`
	Page
}

// CreateRoleRequest is the body of POST /role/create and PATCH /role/update/{id}.
type CreateRoleRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=20"`
	Keyword string `json:"keyword" validate:"required,min=1,max=20"`
	Desc    string `json:"desc" validate:"min=0,max=100"`
	Status  Status `json:"status" validate:"oneof=1 2"`
	Sort    uint   `json:"sort" validate:"gte=1,lte=999"`
}

// UpdateRoleRequest shares the create payload shape.
type UpdateRoleRequest = CreateRoleRequest

// DeleteRoleRequest is the body of DELETE /role/delete/batch.
type DeleteRoleRequest struct {
	RoleIDs []uint `json:"roleIds"`
}

// UpdateRoleMenusRequest is the body of PATCH /role/menus/update/{id}.
type UpdateRoleMenusRequest struct {
	MenuIDs []uint `json:"menuIds"`
}

// UpdateRoleAPIsRequest is the body of PATCH /role/apis/update/{id}.
type UpdateRoleAPIsRequest struct {
	APIIDs []uint `json:"apiIds"`
}

// API is a backend endpoint that can be granted to a role.
type API struct {
	ID       uint   `json:"ID"`
	Method   string `json:"method"`
	Path     string `json:"path"`
	Category string `json:"category"`
	Desc     string `json:"desc"`
	Creator  string `json:"creator"`
}

// Values encodes the filters as query parameters, skipping zero values.
func (r RoleListRequest) Values() url.Values {
	v := url.Values{}
	setString(v, "name", r.Name)
	setString(v, "keyword", r.Keyword)
	setUint(v, "status", uint(r.Status))
	r.Page.encode(v)
	return v
}
