package cache

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
)

// Key computes the deterministic digest used to name cache files for path.
// It combines the absolute path and the file's modification time so that
// any change to either invalidates previously materialized columns. Unlike
// a language runtime's randomized string hash, FNV-1a over a fixed byte
// layout is stable across process restarts.
func Key(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cache: resolve abs path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cache: stat %s: %w", abs, err)
	}
	return KeyFor(abs, info.ModTime().UnixNano()), nil
}

// KeyFor computes the digest directly from an absolute path and a
// nanosecond modification timestamp, without touching the filesystem.
func KeyFor(absPath string, mtimeNano int64) string {
	h := fnv.New64a()
	h.Write([]byte(absPath))
	h.Write([]byte{0})
	fmt.Fprintf(h, "%d", mtimeNano)
	return fmt.Sprintf("%016x", h.Sum64())
}
