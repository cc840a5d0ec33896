//go:build governance

package core_test

import (
	"go/types"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/leapstack-labs/goadmin"

func loadModule(t *testing.T, mode packages.LoadMode) []*packages.Package {
	t.Helper()
	pkgs, err := packages.Load(&packages.Config{Mode: mode}, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}
	return pkgs
}

func rel(pkgPath string) string {
	return strings.TrimPrefix(pkgPath, modulePath+"/")
}

// Wire types that only the SDK decodes or sends. They live in core so the
// shapes of the backend API stay in one place.
var sdkOnly = map[string]bool{
	"API":                       true,
	"OperationLog":              true,
	"OperationLogListRequest":   true,
	"DeleteOperationLogRequest": true,
	"CountMenuNodes":            true,
	"FlagOf":                    true,
	"FlagUnset":                 true,
	"FlagFalse":                 true,
	"StatusDisabled":            true,
	"UpdateMenuRequest":         true,
	"UpdateRoleRequest":         true,
	"UpdateUserRequest":         true,
}

// TestGovernance_CoreShared checks that each exported core identifier is
// referenced by at least two packages outside core.
func TestGovernance_CoreShared(t *testing.T) {
	pkgs := loadModule(t, packages.NeedName|packages.NeedTypes|packages.NeedTypesInfo|packages.NeedDeps|packages.NeedImports)

	exported := make(map[types.Object]string)
	for _, p := range pkgs {
		if p.PkgPath != modulePath+"/pkg/core" {
			continue
		}
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			if obj := scope.Lookup(name); obj.Exported() {
				exported[obj] = name
			}
		}
	}
	if len(exported) == 0 {
		t.Fatal("pkg/core exports nothing")
	}

	users := make(map[string]map[string]bool)
	for _, p := range pkgs {
		if p.TypesInfo == nil || p.PkgPath == modulePath+"/pkg/core" {
			continue
		}
		for _, obj := range p.TypesInfo.Uses {
			name, ok := exported[obj]
			if !ok {
				continue
			}
			if users[name] == nil {
				users[name] = make(map[string]bool)
			}
			users[name][rel(p.PkgPath)] = true
		}
	}

	for _, name := range exported {
		switch n := len(users[name]); {
		case n == 0:
			t.Logf("core.%s is unused", name)
		case n == 1 && !sdkOnly[name]:
			var only []string
			for k := range users[name] {
				only = append(only, k)
			}
			t.Errorf("core.%s is only used by %s; move it there", name, only[0])
		}
	}
}

// TestGovernance_PublicDoesNotImportInternal keeps pkg/ usable by other
// modules: nothing under pkg/ may import internal/.
func TestGovernance_PublicDoesNotImportInternal(t *testing.T) {
	for _, p := range loadModule(t, packages.NeedName|packages.NeedImports) {
		if !strings.HasPrefix(p.PkgPath, modulePath+"/pkg/") {
			continue
		}
		var bad []string
		for path := range p.Imports {
			if strings.HasPrefix(path, modulePath+"/internal/") {
				bad = append(bad, rel(path))
			}
		}
		sort.Strings(bad)
		for _, b := range bad {
			t.Errorf("%s imports %s", rel(p.PkgPath), b)
		}
	}
}

// TestGovernance_NoCoreAliases rejects aliases of core types declared in
// other packages. Callers should name core.X directly.
func TestGovernance_NoCoreAliases(t *testing.T) {
	for _, p := range loadModule(t, packages.NeedName|packages.NeedTypes) {
		if len(p.Errors) > 0 || p.Types == nil || p.PkgPath == modulePath+"/pkg/core" {
			continue
		}
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !tn.Exported() || !tn.IsAlias() {
				continue
			}
			named, ok := tn.Type().(*types.Named)
			if !ok || named.Obj().Pkg() == nil {
				continue
			}
			if named.Obj().Pkg().Path() == modulePath+"/pkg/core" {
				t.Errorf("%s.%s aliases core.%s", rel(p.PkgPath), name, named.Obj().Name())
			}
		}
	}
}
