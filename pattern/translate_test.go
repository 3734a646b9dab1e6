package pattern

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefix(t *testing.T) {
	assert.Equal(t, "ns:foo", Prefix("foo", "ns", true))
	assert.Equal(t, "ns:foo", Prefix("ns:foo", "ns", true))
	assert.Equal(t, "foo", Prefix("foo", "ns", false))
	assert.Equal(t, "foo", Prefix("foo", "", true))
}

func TestStripPrefix(t *testing.T) {
	assert.Equal(t, "foo", StripPrefix("ns:foo", "ns", true))
	assert.Equal(t, "foo", StripPrefix("foo", "ns", true))
	assert.Equal(t, "ns:foo", StripPrefix("ns:foo", "ns", false))
	assert.Equal(t, "ns:foo", StripPrefix("ns:foo", "", true))
	assert.Equal(t, "nsfoo", StripPrefix("nsfoo", "ns", true))
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		namespace string
		usePrefix bool
		dialect   Dialect
		want      string
	}{
		{"raw passthrough", "user:*", "", false, DialectRaw, "user:*"},
		{"raw prefixed", "user:*", "ns", true, DialectRaw, "ns:user:*"},
		{"raw already prefixed", "ns:user:*", "ns", true, DialectRaw, "ns:user:*"},
		{"raw prefix disabled", "user:*", "ns", false, DialectRaw, "user:*"},
		{"raw keeps regex", `user:\d+`, "ns", true, DialectRaw, `ns:user:\d+`},
		{"glob percent", "user:%", "", false, DialectGlob, "user*"},
		{"glob literal", "user:1", "app", true, DialectGlob, "app:user:1"},
		{"glob prefixed star", "x*", "app", true, DialectGlob, "app:*"},
		{"glob literal prefix kept", "user:a*", "app", true, DialectGlob, "app:user:*"},
		{"glob regex narrows to literal", `user:\d+`, "app", true, DialectGlob, "app:user:*"},
		{"glob class", "[mn]", "", false, DialectGlob, "*"},
		{"glob dot", "x.*", "", false, DialectGlob, "x*"},
		{"glob leading dot", ".x", "app", true, DialectGlob, "app:*"},
		{"glob alternation", "ab|cd", "", false, DialectGlob, "*"},
		{"sql literal", "abc", "", false, DialectSQL, "%abc%"},
		{"sql star", "x*", "", false, DialectSQL, "%"},
		{"sql question", "a?c", "", false, DialectSQL, "%"},
		{"sql star after literal", "xy*", "", false, DialectSQL, "%x%"},
		{"sql percent", "user:%", "", false, DialectSQL, "%user%"},
		{"sql empty", "", "", false, DialectSQL, "%"},
		{"sql prefixed", "xy*", "db", true, DialectSQL, "%db:x%"},
		{"sql prefixed literal", "xy", "db", true, DialectSQL, "%db:xy%"},
		{"sql regex narrows to literal", `user:\d+`, "", false, DialectSQL, "%user:%"},
		{"sql class", "[mn]", "", false, DialectSQL, "%"},
		{"sql dot", "x.*", "", false, DialectSQL, "%x%"},
		{"sql leading dot", ".x", "db", true, DialectSQL, "%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.pattern, tt.namespace, tt.usePrefix, tt.dialect))
		})
	}
}

func TestLiteralPrefix(t *testing.T) {
	tests := []struct {
		pattern string
		lit     string
		exact   bool
	}{
		{"user:1", "user:1", true},
		{"", "", true},
		{"user:*", "user", false},
		{"ab*", "a", false},
		{"ab?", "a", false},
		{"ab%", "a", false},
		{"ab{2}", "a", false},
		{"ab+", "ab", false},
		{"ab.c", "ab", false},
		{"ab[cd]", "ab", false},
		{`ab\d`, "ab", false},
		{"ab(c)", "ab", false},
		{"ab|cd", "", false},
		{"é*", "", false},
		{"aé*", "a", false},
	}
	for _, tt := range tests {
		lit, exact := literalPrefix(tt.pattern)
		assert.Equal(t, tt.lit, lit, tt.pattern)
		assert.Equal(t, tt.exact, exact, tt.pattern)
	}
}

// Keys accepted by the matcher always start with the literal prefix the
// backends are queried with.
func TestTranslateNeverDropsMatches(t *testing.T) {
	keys := []string{"m", "n", "x", "xx", "a", "ab", "abb", "user:1", "user:42", "user", "user:abc"}
	patterns := []string{"[mn]", "x.*", ".x", "x*", "ab*", "a|m", `user:\d+`, "user:%", "user:?", "?", "*"}
	for _, p := range patterns {
		lit, _ := literalPrefix(p)
		for _, key := range keys {
			if Match(p, key) {
				assert.True(t, strings.HasPrefix(key, lit), "%q matches %q but lacks %q", key, p, lit)
			}
		}
	}
}

func TestLike(t *testing.T) {
	assert.Equal(t, "%", Like(""))
	assert.Equal(t, "%abc%", Like("abc"))
	assert.Equal(t, "%a%b_%", Like("a*b?"))
}

func TestDialectString(t *testing.T) {
	assert.Equal(t, "raw", DialectRaw.String())
	assert.Equal(t, "glob", DialectGlob.String())
	assert.Equal(t, "sql", DialectSQL.String())
	assert.Equal(t, "unknown", Dialect(42).String())
}
