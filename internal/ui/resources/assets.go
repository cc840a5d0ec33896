// Package resources provides static asset handling for the web console.
package resources

// StaticDirectoryPath is the path to static assets from the project root.
const StaticDirectoryPath = "internal/ui/resources/static"

// Prefix is the URL prefix every asset is served under.
const Prefix = "/static/"

// StaticPath returns the URL path for a static asset.
func StaticPath(name string) string {
	return Prefix + name
}
