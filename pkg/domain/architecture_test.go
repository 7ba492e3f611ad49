package domain

import (
	"testing"

	"auditdesk/testutil"
)

// TestDomainDoesNotImportInternal keeps the domain layer free of implementation
// packages so every persistence backend and adapter can depend on it.
func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "domain must stay implementation free")
}

func TestDomainHasNoThirdPartyDependencies(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.ThirdPartyImport, "domain uses the standard library only")
}
