// Package common provides shared types and utilities for UI features.
package common

// NavNode is one entry of the console's side navigation.
type NavNode struct {
	Title    string
	Path     string
	Icon     string
	Children []NavNode
}

// SidebarData holds data needed for the shell rendering.
type SidebarData struct {
	Nav         []NavNode
	CurrentPath string
	User        string
}
