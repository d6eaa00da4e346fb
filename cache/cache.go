// Package cache is a content-hash-keyed cache of serialized graph JSON, so a
// batch run over many files skips re-analyzing one whose bytes haven't
// changed since the last run. Grounded on the teacher's inspector/graph
// Hash (highwayhash over file bytes) as the key derivation, and on
// hargabyte-cortex's plain database/sql + modernc.org/sqlite usage — no
// ORM, since the schema here is a single key/value table.
package cache

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/minio/highwayhash"

	_ "modernc.org/sqlite"
)

// hashKey matches the 32-byte fixed key convention syntax already uses
// for NodeId derivation, reused here for cache-key derivation so both
// hashes are produced the same way across the repo.
var hashKey = []byte("CODEVIEWS-CACHE-KEY-0123456789AB")

// Store is a SQLite-backed cache of (content hash, graphs kind, format) ->
// serialized bytes.
type Store struct {
	db *sql.DB
}

// Open opens (and, if needed, creates) a cache database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache db %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS graph_cache (
	content_hash TEXT NOT NULL,
	graphs       TEXT NOT NULL,
	format       TEXT NOT NULL,
	payload      BLOB NOT NULL,
	PRIMARY KEY (content_hash, graphs, format)
)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Hash derives the cache key for a file's contents.
func Hash(content []byte) (string, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return "", fmt.Errorf("initializing cache hash: %w", err)
	}
	if _, err := h.Write(content); err != nil {
		return "", fmt.Errorf("hashing content: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}

// Get returns a previously cached payload, or ok=false on a miss.
func (s *Store) Get(ctx context.Context, contentHash, graphs, format string) ([]byte, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM graph_cache WHERE content_hash = ? AND graphs = ? AND format = ?`,
		contentHash, graphs, format)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	return payload, true, nil
}

// Put stores payload under (contentHash, graphs, format), overwriting any
// existing entry for the same key.
func (s *Store) Put(ctx context.Context, contentHash, graphs, format string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO graph_cache (content_hash, graphs, format, payload) VALUES (?, ?, ?, ?)
		 ON CONFLICT (content_hash, graphs, format) DO UPDATE SET payload = excluded.payload`,
		contentHash, graphs, format, payload)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}
