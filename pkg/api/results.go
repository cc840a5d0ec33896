package api

import "github.com/leapstack-labs/goadmin/pkg/core"

// UserList is the data of GET /user/list.
type UserList struct {
	Users []*core.User `json:"users"`
	Total int64        `json:"total"`
}

// UserInfoResult is the data of POST /user/info.
type UserInfoResult struct {
	UserInfo *core.UserInfo `json:"userInfo"`
}

// RoleList is the data of GET /role/list.
type RoleList struct {
	Roles []*core.Role `json:"roles"`
	Total int64        `json:"total"`
}

// RoleMenus is the data of GET /role/menus/get/{id}.
type RoleMenus struct {
	Menus []*core.MenuNode `json:"menus"`
}

// RoleAPIs is the data of GET /role/apis/get/{id}.
type RoleAPIs struct {
	APIs []*core.API `json:"apis"`
}

// MenuList is the data of the flat menu endpoints.
type MenuList struct {
	Menus []*core.MenuNode `json:"menus"`
}

// MenuTree is the data of the tree menu endpoints.
type MenuTree struct {
	MenuTree []*core.MenuNode `json:"menuTree"`
}

// OperationLogList is the data of GET /log/operation/list.
type OperationLogList struct {
	Logs  []*core.OperationLog `json:"logs"`
	Total int64                `json:"total"`
}

// LoginResult is the data of POST /base/login and /base/refreshToken.
type LoginResult struct {
	Token   string `json:"token"`
	Expires string `json:"expires"`
}
