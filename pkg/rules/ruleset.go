package rules

import (
	"os"
	"strings"

	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/logging"
	"github.com/ksmm-dev/ksmm/pkg/types"
)

// Polarity says what a matching rule does to a path
type Polarity int

const (
	Ignore Polarity = iota
	ForceInclude
)

func (p Polarity) String() string {
	if p == ForceInclude {
		return "force-include"
	}
	return "ignore"
}

// Rule is a single declared pattern
type Rule struct {
	Pattern  string
	Polarity Polarity
	Source   string // file the rule was read from, empty for programmatic rules
	Line     int

	compiled Pattern
}

// NewRule compiles a rule from a bare pattern (no `!` prefix)
func NewRule(pattern string, polarity Polarity) Rule {
	return Rule{Pattern: pattern, Polarity: polarity, compiled: Compile(pattern)}
}

// Match reports whether the rule matches a relative path
func (r Rule) Match(path string) bool {
	return r.compiled.Match(path)
}

// RuleSet holds the ordered ignore and force-include lists
type RuleSet struct {
	ignore  []Rule
	include []Rule
}

// NewRuleSet builds a rule set from bare pattern lists
func NewRuleSet(ignore, include []string) *RuleSet {
	rs := &RuleSet{}
	for _, p := range ignore {
		rs.ignore = append(rs.ignore, NewRule(p, Ignore))
	}
	for _, p := range include {
		rs.include = append(rs.include, NewRule(p, ForceInclude))
	}
	return rs
}

// Ignore returns the ignore rules in declaration order
func (rs *RuleSet) Ignore() []Rule {
	return rs.ignore
}

// Include returns the force-include rules in declaration order
func (rs *RuleSet) Include() []Rule {
	return rs.include
}

// HasIncludes reports whether any force-include rule exists
func (rs *RuleSet) HasIncludes() bool {
	return len(rs.include) > 0
}

// MatchInclude returns the first force-include rule matching an entry
func (rs *RuleSet) MatchInclude(rel string, isDir bool) (Rule, bool) {
	return firstMatch(rs.include, rel, isDir)
}

// MatchIgnore returns the first ignore rule matching an entry
func (rs *RuleSet) MatchIgnore(rel string, isDir bool) (Rule, bool) {
	return firstMatch(rs.ignore, rel, isDir)
}

// firstMatch tests directories both bare and with a trailing slash so
// `build/` and `build` both catch the directory itself.
func firstMatch(list []Rule, rel string, isDir bool) (Rule, bool) {
	for _, r := range list {
		if r.Match(rel) || (isDir && r.Match(rel+"/")) {
			return r, true
		}
	}
	return Rule{}, false
}

// Append adds rules written in rule-file syntax, after the existing ones
func (rs *RuleSet) Append(source string, lines ...string) {
	ignore, include := Parse(strings.Join(lines, "\n"), source)
	rs.ignore = append(rs.ignore, ignore...)
	rs.include = append(rs.include, include...)
}

// Parse splits rule file content into ignore and force-include rules
func Parse(content, source string) (ignore, include []Rule) {
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "!") {
			pattern := strings.TrimPrefix(line, "!")
			if pattern == "" {
				continue
			}
			r := NewRule(pattern, ForceInclude)
			r.Source, r.Line = source, i+1
			include = append(include, r)
			continue
		}

		r := NewRule(line, Ignore)
		r.Source, r.Line = source, i+1
		ignore = append(ignore, r)
	}
	return ignore, include
}

// Load reads the generic ignore file and then the tool config file.
// Either file may be absent; that contributes no rules.
func Load(fsys types.FS, ignoreFile, configFile string) (*RuleSet, error) {
	logger := logging.GetLogger("rules.loader")
	rs := &RuleSet{}

	for _, path := range []string{ignoreFile, configFile} {
		if path == "" {
			continue
		}

		data, err := fsys.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Debug().Str("path", path).Msg("Rule file not found, skipping")
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrIO, "failed to read rule file %s", path)
		}

		ignore, include := Parse(string(data), path)
		rs.ignore = append(rs.ignore, ignore...)
		rs.include = append(rs.include, include...)

		logger.Debug().
			Str("path", path).
			Int("ignore", len(ignore)).
			Int("include", len(include)).
			Msg("Loaded rule file")
	}

	logger.Info().
		Int("ignoreRules", len(rs.ignore)).
		Int("includeRules", len(rs.include)).
		Msg("Rule set loaded")

	return rs, nil
}
