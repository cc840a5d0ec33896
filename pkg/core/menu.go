package core

// MenuNode is one entry of the server-authoritative menu tree.
// Nodes are produced by the backend and consumed read-only.
type MenuNode struct {
	ID         uint        `json:"ID"`
	Name       string      `json:"name"`
	Title      string      `json:"title"`
	Icon       string      `json:"icon"`
	Path       string      `json:"path"`
	Redirect   string      `json:"redirect"`
	Component  string      `json:"component"`
	Sort       uint        `json:"sort"`
	Status     Status      `json:"status"`
	Hidden     Flag        `json:"hidden"`
	NoCache    Flag        `json:"noCache"`
	AlwaysShow Flag        `json:"alwaysShow"`
	Breadcrumb Flag        `json:"breadcrumb"`
	ActiveMenu string      `json:"activeMenu"`
	ParentID   uint        `json:"parentId"`
	Creator    string      `json:"creator"`
	Children   []*MenuNode `json:"children"`
}

// CountMenuNodes returns the number of nodes in a menu forest.
func CountMenuNodes(nodes []*MenuNode) int {
	n := 0
	for _, node := range nodes {
		if node == nil {
			continue
		}
		n += 1 + CountMenuNodes(node.Children)
	}
	return n
}

// CreateMenuRequest is the body of POST /menu/create and PATCH /menu/update/{id}.
type CreateMenuRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=50"`
	Title      string `json:"title" validate:"required,min=1,max=50"`
	Icon       string `json:"icon" validate:"min=0,max=50"`
	Path       string `json:"path" validate:"required,min=1,max=100"`
	Redirect   string `json:"redirect" validate:"min=0,max=100"`
	Component  string `json:"component" validate:"required,min=1,max=100"`
	Sort       uint   `json:"sort" validate:"gte=1,lte=999"`
	Status     Status `json:"status" validate:"oneof=1 2"`
	Hidden     Flag   `json:"hidden" validate:"oneof=1 2"`
	NoCache    Flag   `json:"noCache" validate:"oneof=1 2"`
	AlwaysShow Flag   `json:"alwaysShow" validate:"oneof=1 2"`
	Breadcrumb Flag   `json:"breadcrumb" validate:"oneof=1 2"`
	ActiveMenu string `json:"activeMenu" validate:"min=0,max=100"`
	ParentID   uint   `json:"parentId"`
}

// UpdateMenuRequest shares the create payload shape.
type UpdateMenuRequest = CreateMenuRequest

// DeleteMenuRequest is the body of DELETE /menu/delete/batch.
type DeleteMenuRequest struct {
	MenuIDs []uint `json:"menuIds"`
}
