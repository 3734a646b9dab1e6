package pattern

import (
	"strings"
	"unicode/utf8"
)

// Separator joins a store namespace and a key.
const Separator = ":"

// Dialect is the query language a backend understands for key listing.
type Dialect int

const (
	// DialectRaw passes the (prefixed) pattern through untouched. Used for
	// in-process backends that receive the caller's pattern directly.
	DialectRaw Dialect = iota
	// DialectGlob targets glob matchers such as Redis SCAN MATCH.
	DialectGlob
	// DialectSQL targets a SQL LIKE clause.
	DialectSQL
)

func (d Dialect) String() string {
	switch d {
	case DialectRaw:
		return "raw"
	case DialectGlob:
		return "glob"
	case DialectSQL:
		return "sql"
	default:
		return "unknown"
	}
}

// patternMeta are the characters that carry meaning to the glob or the
// regular expression step of the matcher. A backend query only ever
// contains the literal text before the first of them.
const patternMeta = `*?%[]{}().^$|+\`

// optionalMeta make the character before them optional when the pattern is
// read as a regular expression ("ab*" matches "a").
const optionalMeta = `*?%{`

// literalPrefix returns the longest prefix every key matching pattern must
// start with, and whether pattern has no metacharacters at all.
func literalPrefix(pattern string) (string, bool) {
	i := strings.IndexAny(pattern, patternMeta)
	if i < 0 {
		return pattern, true
	}
	if strings.Contains(pattern, "|") {
		return "", false
	}
	lit := pattern[:i]
	if strings.IndexByte(optionalMeta, pattern[i]) >= 0 && lit != "" {
		_, size := utf8.DecodeLastRuneInString(lit)
		lit = lit[:len(lit)-size]
	}
	return lit, false
}

// Prefix prepends "<namespace>:" to pattern when the store prefixes its keys
// and the pattern does not already start with the namespace.
func Prefix(pattern, namespace string, usePrefix bool) string {
	if !usePrefix || namespace == "" || strings.HasPrefix(pattern, namespace) {
		return pattern
	}
	return namespace + Separator + pattern
}

// StripPrefix removes a leading "<namespace>:" from key. Keys a backend has
// already stripped are returned unchanged.
func StripPrefix(key, namespace string, usePrefix bool) string {
	if !usePrefix || namespace == "" {
		return key
	}
	return strings.TrimPrefix(key, namespace+Separator)
}

// Translate converts a caller pattern into the query sent to a backend
// speaking dialect. The query only narrows candidates to the pattern's
// literal prefix; callers must still filter with the Matcher for the
// original pattern.
func Translate(pattern, namespace string, usePrefix bool, dialect Dialect) string {
	switch dialect {
	case DialectGlob:
		lit, exact := literalPrefix(pattern)
		if exact {
			return Prefix(pattern, namespace, usePrefix)
		}
		return Prefix(lit, namespace, usePrefix) + GlobWildcard
	case DialectSQL:
		lit, exact := literalPrefix(pattern)
		if exact {
			return Like(Prefix(pattern, namespace, usePrefix))
		}
		if lit == "" {
			return SQLWildcard
		}
		return Like(Prefix(lit, namespace, usePrefix))
	default:
		return Prefix(pattern, namespace, usePrefix)
	}
}

var likeReplacer = strings.NewReplacer("*", "%", "?", "_")

// Like converts a glob pattern into a LIKE operand. An empty pattern
// matches everything; anything else is wrapped as a substring match.
func Like(pattern string) string {
	if pattern == "" {
		return SQLWildcard
	}
	return SQLWildcard + likeReplacer.Replace(pattern) + SQLWildcard
}
