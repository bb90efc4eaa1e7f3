// Package testutil provides helpers shared by ksmm tests.
//
// Key components:
//   - NewTestFS: in-memory afero filesystem behind types.FS
//   - WriteTree / ReadTree: declarative module trees keyed by relative path
//   - MockSigner / MockCommitReader: testify mocks for the external collaborators
//
// Tests should define their trees inline, not in fixture files.
package testutil
