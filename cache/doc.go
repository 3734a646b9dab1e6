// Package cache provides the stores driven by the adapter: a unified
// [Cache] interface, several backends, and type-safe generic helpers.
//
// # Implementations
//
//   - [NewInMemory]: In-process map guarded by a mutex. Values are stored
//     as-is. Expired entries are removed by a background goroutine. The
//     backend exposes a key snapshot, so key listing never leaves the process.
//
//   - [NewSQLite]: Backed by [modernc.org/sqlite] (pure Go). Values are
//     msgpack encoded BLOBs in a "cache" table. The backend advertises its
//     SQL dialect and key table, so key listing runs as a LIKE query.
//
//   - [NewRedis]: Backed by [github.com/redis/go-redis/v9]. Values live in
//     hashes (fields "v" and "h"), expiry uses native Redis TTL. Key listing
//     pages through the key space with SCAN.
//
//   - [NewComposite]: Chains caches in order. Get returns the first hit,
//     Set and Expire apply to every cache.
//
// Every backend honours [WithPrefix]: keys are stored as "<prefix>:<key>".
// Listing primitives return stored keys with the prefix intact; removing it
// is the caller's job.
//
// # Batched deletes
//
// Backends also implement [BatchExpirer] so that bulk invalidation deletes
// many keys in a single round trip (DEL k1 k2 … for Redis, DELETE … IN (…)
// for SQLite).
//
// # Generic Helpers
//
// [Get] and [Decode] convert stored values into a concrete type. In-memory
// values are type asserted, serialized backends are decoded with msgpack:
//
//	found, user, err := cache.Get[User](ctx, c, "user:123")
//
// [HashKey] derives a deterministic key from arbitrary arguments with
// xxhash, the way decorated methods key their results:
//
//	key, err := cache.HashKey("users.find", tenantID, filter)
//
// # Timeouts
//
// The SQLite and Redis backends apply a per-operation timeout
// ([DefaultQueryTimeout], 5 seconds) derived from the caller's context.
package cache
