package config

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// mask keeps the first half of s and stars out the rest.
func mask(s string) string {
	l := len(s)
	if l == 0 {
		return s
	}
	if l == 1 {
		return "*"
	}
	h := l / 2
	return s[0:h] + strings.Repeat("*", l-h)
}

// MaskURL returns a store URL safe to log: credentials are masked, the
// host and database path are kept.
func MaskURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse URL")
	}
	var str strings.Builder
	str.WriteString(u.Scheme)
	str.WriteString("://")
	if u.User != nil {
		str.WriteString(mask(u.User.Username()))
		if pass, ok := u.User.Password(); ok {
			str.WriteString(":")
			str.WriteString(mask(pass))
		}
		str.WriteString("@")
	}
	str.WriteString(u.Host)
	if u.Path != "/" {
		str.WriteString(u.Path)
	}
	return str.String(), nil
}

// Target describes where a store lives, for logs.
func (s Store) Target() string {
	switch s.Type {
	case TypeSQLite:
		if s.Path == "" {
			return ":memory:"
		}
		return s.Path
	case TypeRedis:
		masked, err := MaskURL(s.URL)
		if err != nil {
			return "<invalid url>"
		}
		return masked
	default:
		return "process"
	}
}
