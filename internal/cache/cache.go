// Package cache is a content-addressed build cache: the generated C text
// for a source file is keyed by the sha256 of its bytes plus the compiler
// version, so an unchanged source short-circuits the typer/codegen pipeline
// entirely. Backed by a single sqlite table through the pure-Go
// modernc.org/sqlite driver, so the cache never needs a cgo toolchain
// alongside the C toolchain the compiler targets.
//
// Grounded on the teacher's internal/modules virtual-package family
// (virtual_packages_data.go), the teacher's own lazily-loaded persistent
// store, adapted here from an in-memory map to an on-disk database/sql
// table since the build cache needs to survive across separate `fsc`
// invocations.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite"
)

// Cache wraps a sqlite-backed key/value store of generated C text.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS build_cache (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// Key computes the cache key for a source file's bytes under a given
// compiler version string.
func Key(source []byte, version string) string {
	h := sha256.New()
	h.Write(source)
	h.Write([]byte{0})
	h.Write([]byte(version))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached C text for key, or ok=false on a cache miss.
func (c *Cache) Get(key string) (value string, ok bool, err error) {
	row := c.db.QueryRow(`SELECT value FROM build_cache WHERE key = ?`, key)
	err = row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, overwriting any existing entry.
func (c *Cache) Put(key, value string) error {
	_, err := c.db.Exec(
		`INSERT INTO build_cache (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}
