package cache

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"Wavecache/internal/logger"
)

// Index is an sqlite-backed accelerator recording which (stem, key) cache
// entries are known-complete, so repeated IsComplete checks on a hot path
// avoid a stat() per expected file. It is never the source of truth: a
// miss or an open failure falls back to the filesystem check in IsComplete
// and, on success, repairs the index.
type Index struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenIndex opens (creating if absent) the sqlite index file under cacheDir.
func OpenIndex(cacheDir string) (*Index, error) {
	path := filepath.Join(cacheDir, "index.sqlite")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open index: %w", err)
	}
	const createTable = `
	CREATE TABLE IF NOT EXISTS entries (
		stem TEXT NOT NULL,
		key TEXT NOT NULL,
		rows INTEGER NOT NULL,
		PRIMARY KEY (stem, key)
	);`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create index table: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying database handle.
func (idx *Index) Close() error {
	if idx == nil || idx.db == nil {
		return nil
	}
	return idx.db.Close()
}

// Lookup reports whether (stem, key) is recorded as complete in the index
// and, if so, its row count. A false result is not conclusive; callers
// must still consult the filesystem before trusting it as authoritative.
func (idx *Index) Lookup(stem, key string) (rows int, found bool) {
	if idx == nil || idx.db == nil {
		return 0, false
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	row := idx.db.QueryRow(`SELECT rows FROM entries WHERE stem = ? AND key = ?`, stem, key)
	if err := row.Scan(&rows); err != nil {
		if err != sql.ErrNoRows {
			logger.Warn("cache: index lookup for %s/%s failed: %v", stem, key, err)
		}
		return 0, false
	}
	return rows, true
}

// Record upserts a known-complete entry.
func (idx *Index) Record(stem, key string, rows int) {
	if idx == nil || idx.db == nil {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	const upsert = `
	INSERT INTO entries (stem, key, rows) VALUES (?, ?, ?)
	ON CONFLICT(stem, key) DO UPDATE SET rows = excluded.rows;`
	if _, err := idx.db.Exec(upsert, stem, key, rows); err != nil {
		logger.Warn("cache: index record for %s/%s failed: %v", stem, key, err)
	}
}

// Forget removes (stem, key) from the index, used when RemoveEntry deletes
// the underlying cache files.
func (idx *Index) Forget(stem, key string) {
	if idx == nil || idx.db == nil {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, err := idx.db.Exec(`DELETE FROM entries WHERE stem = ? AND key = ?`, stem, key); err != nil {
		logger.Warn("cache: index forget for %s/%s failed: %v", stem, key, err)
	}
}

// Complete consults the index first, falling back to and repairing from
// the filesystem check on a miss.
func (idx *Index) Complete(cacheDir, stem, key string) (rows int, complete bool) {
	if rows, ok := idx.Lookup(stem, key); ok {
		return rows, true
	}
	if !IsComplete(cacheDir, stem, key) {
		return 0, false
	}
	rows, err := rowCountFrom(FileName(cacheDir, stem, "time", key))
	if err != nil {
		return 0, false
	}
	idx.Record(stem, key, rows)
	return rows, true
}
