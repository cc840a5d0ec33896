package permission

import (
	"encoding/json"
	"sync"
	"sync/atomic"
)

// ViewPrefix is prepended to a menu's component string to name its view.
const ViewPrefix = "@/views"

// LayoutName is the component string that selects the shared layout.
const LayoutName = "Layout"

// Component is what a route renders: the shared Layout or a lazy *View.
type Component interface {
	// Module names the component, "Layout" or a "@/views/..." path.
	Module() string
}

type layout struct{}

func (layout) Module() string { return LayoutName }

func (layout) MarshalJSON() ([]byte, error) { return json.Marshal(LayoutName) }

// Layout is the placeholder shared by every layout route.
var Layout Component = layout{}

// IsLayout reports whether c is the shared layout placeholder.
func IsLayout(c Component) bool {
	_, ok := c.(layout)
	return ok
}

// ViewResolver loads the view module named by a "@/views/..." path.
type ViewResolver interface {
	Resolve(module string) (any, error)
}

// ViewResolverFunc adapts a function to ViewResolver.
type ViewResolverFunc func(module string) (any, error)

// Resolve calls f.
func (f ViewResolverFunc) Resolve(module string) (any, error) {
	return f(module)
}

// View is a lazily resolved view module. Nothing is loaded until Load is
// first called; later calls return the first result.
type View struct {
	module   string
	resolver ViewResolver

	once   sync.Once
	loaded atomic.Bool
	val    any
	err    error
}

// Module returns the "@/views/..." path of the view.
func (v *View) Module() string { return v.module }

// MarshalJSON renders the view as its module path.
func (v *View) MarshalJSON() ([]byte, error) { return json.Marshal(v.module) }

// Load resolves the view on first activation.
func (v *View) Load() (any, error) {
	v.once.Do(func() {
		if v.resolver == nil {
			v.err = &UnresolvedViewError{Module: v.module}
			return
		}
		v.val, v.err = v.resolver.Resolve(v.module)
	})
	v.loaded.Store(true)
	return v.val, v.err
}

// Loaded reports whether Load has run.
func (v *View) Loaded() bool {
	return v.loaded.Load()
}

// UnresolvedViewError is returned by Load when no resolver was provided.
type UnresolvedViewError struct {
	Module string
}

func (e *UnresolvedViewError) Error() string {
	return "no resolver for view " + e.Module
}

// LoadComponent maps a menu component string to a Component.
// "" and "Layout" select the shared Layout; anything else names a view
// under ViewPrefix.
func LoadComponent(component string, views ViewResolver) Component {
	if component == "" || component == LayoutName {
		return Layout
	}
	return &View{module: ViewPrefix + component, resolver: views}
}
