package blob

import (
	"strings"
	"testing"

	"auditdesk/testutil"
)

// TestOnlyBlobPackageImportsInfra ensures that only the blob package wraps
// the concrete backends. Everything else depends on blob.Store.
func TestOnlyBlobPackageImportsInfra(t *testing.T) {
	const infraPrefix = "auditdesk/internal/infra/blob"
	exempt := func(pkgPath string) bool {
		pkgPath = strings.TrimSuffix(strings.TrimSuffix(pkgPath, ".test"), "_test")
		return testutil.HasPathPrefix(pkgPath, "auditdesk/internal/blob") || testutil.HasPathPrefix(pkgPath, infraPrefix)
	}
	forbidden := func(importPath string) bool {
		return testutil.HasPathPrefix(importPath, infraPrefix)
	}
	testutil.AssertPackageImports(t, "auditdesk/...", exempt, forbidden, "depend on blob.Store instead of backend packages")
}
