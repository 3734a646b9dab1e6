// Package pattern translates caller key patterns into backend queries and
// provides the canonical matcher used to re-validate every key a backend
// returns.
//
// A pattern carries no dialect tag. It may be a glob ("user:*", "user:?"),
// a SQL style wildcard ("user:%") or a regular expression ("user:\d+").
// Matching tries each interpretation in turn and never fails: a pattern
// that is not a valid regular expression simply does not match.
package pattern

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// SQLWildcard is the SQL LIKE "any sequence" wildcard. Patterns containing
// it are rewritten to the glob wildcard before matching.
const SQLWildcard = "%"

// GlobWildcard is the glob "any sequence" wildcard.
const GlobWildcard = "*"

// Matcher is a compiled pattern. It is safe for concurrent use.
type Matcher struct {
	pattern string
	glob    glob.Glob
	re      *regexp.Regexp
}

// Compile prepares pattern for repeated matching. It never fails; parts of
// the ladder that cannot be compiled are skipped.
func Compile(pattern string) *Matcher {
	m := &Matcher{pattern: pattern}
	rewritten := pattern
	if strings.Contains(rewritten, SQLWildcard) {
		rewritten = strings.ReplaceAll(rewritten, SQLWildcard, GlobWildcard)
	}
	m.glob = compileGlob(rewritten)
	// anchored so that "x*" read as a regex does not match every key
	if re, err := regexp.Compile("^(?:" + rewritten + ")$"); err == nil {
		m.re = re
	}
	return m
}

// Pattern returns the original, unmodified pattern.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Match reports whether key satisfies the pattern: exact equality first,
// then glob, then regular expression.
func (m *Matcher) Match(key string) bool {
	if key == m.pattern {
		return true
	}
	if m.glob != nil && globMatch(m.glob, key) {
		return true
	}
	if m.re != nil {
		return m.re.MatchString(key)
	}
	return false
}

// compileGlob returns nil when pattern is not a usable glob.
func compileGlob(pattern string) (g glob.Glob) {
	defer func() {
		if recover() != nil {
			g = nil
		}
	}()
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil
	}
	return g
}

// globMatch treats a panic inside the glob library as a non-match. Some
// unbalanced "{" patterns compile but fail while matching.
func globMatch(g glob.Glob, key string) (matched bool) {
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()
	return g.Match(key)
}

// Filter returns the keys that satisfy the pattern, preserving order.
func (m *Matcher) Filter(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if m.Match(key) {
			out = append(out, key)
		}
	}
	return out
}

// Match is a convenience for Compile(pattern).Match(key).
func Match(pattern, key string) bool {
	return Compile(pattern).Match(key)
}
