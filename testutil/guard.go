// Package testutil provides reusable testing helpers for enforcing architectural
// boundaries across the repository.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// AssertNoDirectImports scans all non-test .go files in dir (typically "." from within the package)
// and fails if any import path satisfies the forbidden predicate. It does not follow build tags.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	viols, err := directImportViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	failIfViolations(t, "forbidden direct imports detected", reason, viols)
}

// AssertPackageImports loads every package matching pattern (tests included) and fails
// when a package outside the exempt set imports a path satisfying forbidden.
func AssertPackageImports(t testing.TB, pattern string, exempt func(pkgPath string) bool, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	seen := make(map[string]struct{})
	for _, pkg := range pkgs {
		if exempt != nil && exempt(pkg.PkgPath) {
			continue
		}
		for importPath := range pkg.Imports {
			if forbidden(importPath) {
				seen[pkg.PkgPath+": "+importPath] = struct{}{}
			}
		}
	}
	viols := make([]string, 0, len(seen))
	for v := range seen {
		viols = append(viols, v)
	}
	sort.Strings(viols)
	failIfViolations(t, "forbidden package imports detected", reason, viols)
}

// InternalImportForbidden returns a predicate matching any import path containing /internal/.
func InternalImportForbidden(path string) bool {
	return strings.Contains(path, "/internal/")
}

// InfraImportForbidden matches imports of concrete infrastructure packages.
func InfraImportForbidden(path string) bool {
	return strings.Contains(path, "/internal/infra/")
}

// ThirdPartyImport matches import paths whose first element looks like a host name.
func ThirdPartyImport(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return strings.Contains(first, ".")
}

// HasPathPrefix reports whether path equals prefix or lives below it.
func HasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func directImportViolations(dir string, forbidden func(importPath string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		path := filepath.Join(dir, name)
		fileAst, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range fileAst.Imports {
			ip := strings.Trim(imp.Path.Value, "\"")
			if forbidden(ip) {
				viols = append(viols, ip+" (in "+name+")")
			}
		}
	}
	return viols, nil
}

type fatalLogger interface {
	Fatalf(format string, args ...any)
}

func failIfViolations(t fatalLogger, header, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("%s (%s):\n%s", header, reason, strings.Join(viols, "\n"))
	}
}
