package cache

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"
)

const (
	sqliteTable     = "cache"
	sqliteKeyColumn = "key"
)

type sqliteCache struct {
	db        *sql.DB
	ctx       context.Context
	cancel    context.CancelFunc
	waitGroup sync.WaitGroup
	once      sync.Once
	cfg       config
}

var (
	_ Cache        = (*sqliteCache)(nil)
	_ BatchExpirer = (*sqliteCache)(nil)
)

// NewSQLite returns a new Cache backed by SQLite.
// If dbPath is empty or ":memory:", an in-memory database is used.
func NewSQLite(ctx context.Context, dbPath string, opts ...Option) (Cache, error) {
	cfg := applyOptions(opts)
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrapf(err, "cache: open sqlite %q", dbPath)
	}
	if dbPath == ":memory:" {
		// every connection to ":memory:" is a separate database
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent performance.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "cache: enable wal")
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL,
		hits INTEGER NOT NULL DEFAULT 0
	)`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "cache: create table")
	}

	// Create index on expires_at for efficient cleanup.
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_cache_expires_at ON cache(expires_at)`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "cache: create index")
	}

	childCtx, cancel := context.WithCancel(ctx)
	c := &sqliteCache{
		db:     db,
		ctx:    childCtx,
		cancel: cancel,
		cfg:    cfg,
	}

	c.waitGroup.Add(1)
	go c.run()

	return c, nil
}

func (c *sqliteCache) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.cfg.queryTimeout)
}

func (c *sqliteCache) Get(ctx context.Context, key string) (bool, any, error) {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	k := c.cfg.prefixKey(key)
	now := time.Now().UnixNano()
	var data []byte
	var expiresAt int64
	err := c.db.QueryRowContext(qctx,
		`SELECT value, expires_at FROM cache WHERE key = ?`, k,
	).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}

	if expiresAt < now {
		// Lazily delete expired entry.
		_, _ = c.db.ExecContext(qctx, `DELETE FROM cache WHERE key = ?`, k)
		return false, nil, nil
	}

	_, _ = c.db.ExecContext(qctx, `UPDATE cache SET hits = hits + 1 WHERE key = ?`, k)

	return true, data, nil
}

func (c *sqliteCache) Set(ctx context.Context, key string, val any, expires time.Duration) error {
	data, err := msgpack.Marshal(val)
	if err != nil {
		return errors.Wrap(err, "cache: failed to marshal value")
	}
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	expiresAt := time.Now().Add(c.cfg.expires(expires)).UnixNano()
	_, err = c.db.ExecContext(qctx,
		`INSERT INTO cache (key, value, expires_at, hits) VALUES (?, ?, ?, 0)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at, hits = 0`,
		c.cfg.prefixKey(key), data, expiresAt,
	)
	return err
}

func (c *sqliteCache) Hits(ctx context.Context, key string) (bool, int) {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	var hits int
	err := c.db.QueryRowContext(qctx, `SELECT hits FROM cache WHERE key = ?`, c.cfg.prefixKey(key)).Scan(&hits)
	if err != nil {
		return false, 0
	}
	return true, hits
}

func (c *sqliteCache) Expire(ctx context.Context, key string) (bool, error) {
	n, err := c.ExpireMany(ctx, key)
	return n > 0, err
}

func (c *sqliteCache) ExpireMany(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = c.cfg.prefixKey(key)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	result, err := c.db.ExecContext(qctx, `DELETE FROM cache WHERE key IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

// SQLDialect identifies the SQL flavour used for key listing.
func (c *sqliteCache) SQLDialect() string {
	return "sqlite"
}

// KeyTable names the table and column holding cache keys. SQLite uses the
// default schema.
func (c *sqliteCache) KeyTable() (schema, table, column string) {
	return "", sqliteTable, sqliteKeyColumn
}

// QueryContext runs a read-only query against the cache database. The
// caller must close the returned rows.
func (c *sqliteCache) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

func (c *sqliteCache) Close() error {
	var dbErr error
	c.once.Do(func() {
		c.cancel()
		c.waitGroup.Wait()
		dbErr = c.db.Close()
	})
	return dbErr
}

func (c *sqliteCache) run() {
	defer c.waitGroup.Done()
	ticker := time.NewTicker(c.cfg.expiryCheck)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().UnixNano()
			_, _ = c.db.ExecContext(c.ctx, `DELETE FROM cache WHERE expires_at < ?`, now)
		}
	}
}
