package core

import (
	"path/filepath"
	"testing"

	"auditdesk/testutil"
)

// TestCoreDoesNotImportAdapters keeps the service independent of the HTTP
// and export layers that sit on top of it.
func TestCoreDoesNotImportAdapters(t *testing.T) {
	dir, err := filepath.Abs(".")
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	testutil.AssertNoDirectImports(t, dir, func(importPath string) bool {
		return testutil.HasPathPrefix(importPath, "auditdesk/internal/adapters") ||
			testutil.HasPathPrefix(importPath, "auditdesk/cmd")
	}, "core must not depend on adapters or binaries")
}
