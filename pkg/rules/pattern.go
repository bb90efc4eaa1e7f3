package rules

import (
	"regexp"
	"strings"
)

// PatternKind tags the compiled form of a pattern
type PatternKind int

const (
	// PatternExact matches a path or a trailing path component sequence
	PatternExact PatternKind = iota
	// PatternDirectory matches everything under a directory name
	PatternDirectory
	// PatternWildcard matches the whole path against a `*` expansion
	PatternWildcard
)

func (k PatternKind) String() string {
	switch k {
	case PatternExact:
		return "exact"
	case PatternDirectory:
		return "directory"
	case PatternWildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

// Pattern is a rule string compiled once into its matching form
type Pattern struct {
	raw  string
	kind PatternKind
	re   *regexp.Regexp
}

// Compile classifies a pattern string and prepares it for matching.
// A trailing `/` wins over `*`, so `cache*/` is a directory pattern.
func Compile(pattern string) Pattern {
	switch {
	case strings.HasSuffix(pattern, "/"):
		return Pattern{raw: pattern, kind: PatternDirectory}
	case strings.Contains(pattern, "*"):
		return Pattern{raw: pattern, kind: PatternWildcard, re: compileWildcard(pattern)}
	default:
		return Pattern{raw: pattern, kind: PatternExact}
	}
}

// compileWildcard returns nil when the expansion does not compile;
// Match treats that as a permanent non-match.
func compileWildcard(pattern string) *regexp.Regexp {
	expr := "^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*") + "$"
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil
	}
	return re
}

// String returns the pattern as it was declared
func (p Pattern) String() string {
	return p.raw
}

// Kind returns the compiled form of the pattern
func (p Pattern) Kind() PatternKind {
	return p.kind
}

// Match reports whether a slash-separated relative path matches the pattern
func (p Pattern) Match(path string) bool {
	switch p.kind {
	case PatternDirectory:
		return strings.HasPrefix(path, p.raw) || strings.Contains(path, "/"+p.raw)
	case PatternWildcard:
		if p.re == nil {
			return false
		}
		return p.re.MatchString(path)
	default:
		return path == p.raw || strings.HasSuffix(path, "/"+p.raw)
	}
}

// Matches reports whether path matches pattern. It compiles the pattern
// on every call; RuleSet keeps compiled patterns for repeated use.
func Matches(path, pattern string) bool {
	return Compile(pattern).Match(path)
}
