// Package shared holds helpers used across the distress codebase that do not
// belong to any domain or architectural layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler for asserting on structured log output
//   - StatementFixtures for building statement sets and writing them to disk
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    fixtures := testutil.NewStatementFixtures(t.TempDir())
//	    set := fixtures.SteadySet("TASC")
//	    ...
//	}
package shared
