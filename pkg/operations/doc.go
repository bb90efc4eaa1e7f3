// Package operations turns a module source tree into an ordered plan of
// filesystem operations and executes that plan.
//
// Planning and execution are separate on purpose: Plan only reads
// directory entries, so the full list of what will be copied, skipped
// or force-included can be logged or inspected before anything is
// written. The executor then performs the plan front to back and stops
// at the first failure.
//
// There are four operation kinds:
//
//   - CreateDirectory: create a directory (and missing ancestors) in the output tree
//   - CopyFile: copy a source file's bytes and permission bits to the output tree
//   - RecordedForceInclude: a path kept because a force-include rule matched it
//   - RecordedIgnore: a path skipped because an ignore rule matched it
//
// The two Recorded kinds never touch the filesystem; they exist so the
// rule decision for every visited path shows up in the log.
package operations
