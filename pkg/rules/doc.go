// Package rules decides which paths of a module tree are packaged.
//
// Rules come from two layered sources: a generic ignore file (one
// pattern per line) and the tool's own .ksmm/build.conf, which uses the
// same syntax plus force-include lines.
//
// # Pattern Conventions
//
// Every path is matched as a slash-separated path relative to the tree
// root:
//
//   - `build/` - Directory pattern (trailing slash). Matches paths that
//     start with `build/` or contain `/build/`, so an ignored directory
//     name is excluded wherever it recurs.
//   - `*.log` - Wildcard pattern. `*` matches any run of characters,
//     including `/`; every other character is literal. The whole path
//     must match.
//   - `module.prop` - Exact pattern. Matches the path itself or any path
//     ending in `/module.prop`.
//   - `!system/` - Force-include. The leading `!` is stripped and the
//     rest compiles like any other pattern.
//
// # Precedence
//
// Force-include rules are always evaluated before ignore rules, in the
// order they were declared, and the first match wins. A path matched by
// a force-include rule is never ignored.
package rules
