// Package config loads the list of stores the adapter fronts from a YAML
// file and builds the matching backends.
//
//	stores:
//	  - name: local
//	    type: memory
//	    namespace: app
//	    ttl: 10m
//	  - name: db
//	    type: sqlite
//	    path: cache.db
//	    ttl: 1d
//	  - name: shared
//	    type: redis
//	    url: redis://localhost:6379/0
//	    namespace: app
//
// Durations accept day and week units ("1d", "2w3h") as well as the units
// time.ParseDuration understands.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

// Backend types.
const (
	TypeMemory = "memory"
	TypeSQLite = "sqlite"
	TypeRedis  = "redis"
)

var (
	// ErrUnknownBackend is returned for a store whose type is not one of
	// memory, sqlite or redis.
	ErrUnknownBackend = errors.New("unknown store type")
	// ErrConfigNotFound is returned by Load when the file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
)

// Duration is a time.Duration read from strings such as "90s" or "1d".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	dur, err := str2duration.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "line %d: invalid duration %q", value.Line, s)
	}
	if dur < 0 {
		return errors.Newf("line %d: duration must be >= 0, got %q", value.Line, s)
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return str2duration.String(time.Duration(d)), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Store describes one backend.
type Store struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Namespace string `yaml:"namespace,omitempty"`
	// UseKeyPrefix defaults to true when a namespace is set.
	UseKeyPrefix *bool    `yaml:"useKeyPrefix,omitempty"`
	TTL          Duration `yaml:"ttl,omitempty"`
	QueryTimeout Duration `yaml:"queryTimeout,omitempty"`

	// sqlite
	Path string `yaml:"path,omitempty"`

	// redis
	URL       string `yaml:"url,omitempty"`
	ScanCount int64  `yaml:"scanCount,omitempty"`
}

// Prefixed reports whether keys of this store are stored as "<namespace>:<key>".
func (s Store) Prefixed() bool {
	if s.Namespace == "" {
		return false
	}
	return s.UseKeyPrefix == nil || *s.UseKeyPrefix
}

// Config is the root of the configuration file.
type Config struct {
	Stores []Store `yaml:"stores"`
}

// Load reads and validates the configuration file at filename.
func Load(filename string) (*Config, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrConfigNotFound, "%s", filename)
		}
		return nil, errors.Wrapf(err, "read config %s", filename)
	}
	cfg, err := Parse(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", filename)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML document.
func Parse(buf []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that stores are named uniquely and fully described.
// Missing names default to the store type plus its position.
func (c *Config) Validate() error {
	if len(c.Stores) == 0 {
		return errors.New("at least one store is required")
	}
	seen := make(map[string]bool, len(c.Stores))
	for i := range c.Stores {
		s := &c.Stores[i]
		if s.Name == "" {
			s.Name = s.Type + "-" + strconv.Itoa(i)
		}
		if seen[s.Name] {
			return errors.Newf("duplicate store name %q", s.Name)
		}
		seen[s.Name] = true
		switch s.Type {
		case TypeMemory:
		case TypeSQLite:
		case TypeRedis:
			if s.URL == "" {
				return errors.Newf("store %q: redis url is required", s.Name)
			}
		default:
			return errors.Wrapf(ErrUnknownBackend, "store %q: %q", s.Name, s.Type)
		}
	}
	return nil
}
