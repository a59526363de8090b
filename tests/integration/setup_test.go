package integration

import (
	"testing"

	"github.com/dimitrije/martsy-api/tests/testutil"
)

// setupTest starts a migrated Postgres container for one test
func setupTest(t *testing.T) *testutil.TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	return testutil.SetupTestDB(t)
}
