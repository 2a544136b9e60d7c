// Package index persists the digest-to-path mapping in an embedded SQLite
// database. The table only grows: rows are inserted or refreshed, never
// deleted, so stale source-path rows from earlier runs remain on record.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/substantialcattle5/ghanima/internal/constants"
)

// Index is a durable mapping from content digest to one or more absolute
// paths. The (digest, path) pair is the uniqueness key: the same digest may
// legitimately appear at a canonical storage path plus any number of source
// paths that have since been replaced by links.
type Index struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the index database at path. Each write
// commits independently; there is no cross-statement buffering, so a crash
// leaves the index consistent with whatever files were fully processed.
func Open(path string) (*Index, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.StandardDirPerms); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal_mode: %w", err)
	}
	// Upserts must be durable before the call returns.
	if _, err := db.Exec("PRAGMA synchronous = FULL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set synchronous: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS file_hashes (
		hash TEXT,
		file_path TEXT,
		mtime REAL,
		PRIMARY KEY (hash, file_path)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create file_hashes table: %w", err)
	}

	return &Index{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Upsert records (digest, path, mtime), replacing the row if the pair is
// already known. mtime is stored as fractional seconds since the epoch.
func (ix *Index) Upsert(digest, path string, mtime time.Time) error {
	seconds := float64(mtime.UnixNano()) / float64(time.Second)
	_, err := ix.db.Exec(
		"INSERT OR REPLACE INTO file_hashes (hash, file_path, mtime) VALUES (?, ?, ?)",
		digest, path, seconds,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", digest, err)
	}
	return nil
}

// LookupStorageCopy returns the canonical storage path already recorded for
// digest under storageRoot, if any. Paths are compared by cleaned directory
// identity, not by raw string prefix, so an unrelated sibling such as
// "<root>2/..." never matches. When more than one storage row exists the
// lexicographically smallest path wins, deterministically.
func (ix *Index) LookupStorageCopy(digest, storageRoot string) (string, bool, error) {
	rows, err := ix.db.Query(
		"SELECT file_path FROM file_hashes WHERE hash = ? ORDER BY file_path",
		digest,
	)
	if err != nil {
		return "", false, fmt.Errorf("lookup %s: %w", digest, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return "", false, fmt.Errorf("scan path for %s: %w", digest, err)
		}
		if UnderRoot(p, storageRoot) {
			return p, true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", false, fmt.Errorf("iterate paths for %s: %w", digest, err)
	}

	return "", false, nil
}

// Stats summarizes the index contents for reporting.
type Stats struct {
	DistinctDigests int64
	TotalPaths      int64
	StorageObjects  int64
	LinkedSources   int64
}

// CollectStats walks all rows once and classifies paths against storageRoot.
func (ix *Index) CollectStats(storageRoot string) (*Stats, error) {
	stats := &Stats{}

	if err := ix.db.QueryRow("SELECT COUNT(DISTINCT hash) FROM file_hashes").
		Scan(&stats.DistinctDigests); err != nil {
		return nil, fmt.Errorf("count digests: %w", err)
	}

	rows, err := ix.db.Query("SELECT file_path FROM file_hashes")
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		stats.TotalPaths++
		if UnderRoot(p, storageRoot) {
			stats.StorageObjects++
		} else {
			stats.LinkedSources++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paths: %w", err)
	}

	return stats, nil
}

// StoragePathsByDigest returns, per digest, the recorded storage path and the
// number of non-storage rows sharing that digest. Used to estimate reclaimed
// space: every source row beyond the first shares the single storage copy.
func (ix *Index) StoragePathsByDigest(storageRoot string) (map[string]string, map[string]int64, error) {
	rows, err := ix.db.Query("SELECT hash, file_path FROM file_hashes ORDER BY file_path")
	if err != nil {
		return nil, nil, fmt.Errorf("list rows: %w", err)
	}
	defer rows.Close()

	storage := make(map[string]string)
	sources := make(map[string]int64)
	for rows.Next() {
		var digest, p string
		if err := rows.Scan(&digest, &p); err != nil {
			return nil, nil, fmt.Errorf("scan row: %w", err)
		}
		if UnderRoot(p, storageRoot) {
			if _, ok := storage[digest]; !ok {
				storage[digest] = p
			}
		} else {
			sources[digest]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate rows: %w", err)
	}

	return storage, sources, nil
}

// UnderRoot reports whether path sits inside root, comparing cleaned paths on
// separator boundaries rather than raw string prefixes.
func UnderRoot(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if path == root {
		return false
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
