// Package types defines the interfaces shared across ksmm packages.
// The central one is FS, the filesystem abstraction every build phase
// reads and writes through so tests can run against an in-memory tree.
package types
