package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// fileCache stores entries as JSON files under a root directory, sharded by
// the first byte of the key hash so large caches don't pile every summary
// into one directory. Writes go through a temp file and rename, so a
// concurrent reader never sees a partial entry.
type fileCache struct {
	root string
}

// NewFileCache opens a file-backed cache rooted at dir, creating the
// directory if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &fileCache{root: dir}, nil
}

// fileEntry is the on-disk envelope around a cached value. A zero Expiry
// means the entry never expires.
type fileEntry struct {
	Body   []byte    `json:"body"`
	Expiry time.Time `json:"expiry,omitempty"`
}

func (e *fileEntry) expired(now time.Time) bool {
	return !e.Expiry.IsZero() && now.After(e.Expiry)
}

func (c *fileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.entryPath(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// An unreadable entry counts as a miss; drop it so the next Set
		// replaces it.
		_ = os.Remove(path)
		return nil, false, nil
	}
	if entry.expired(time.Now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Body, true, nil
}

func (c *fileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{Body: data}
	if ttl > 0 {
		entry.Expiry = time.Now().Add(ttl)
	}
	raw, err := json.Marshal(&entry)
	if err != nil {
		return err
	}

	path := c.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *fileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.entryPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Close is a no-op; every operation opens and closes its own file.
func (c *fileCache) Close() error { return nil }

// entryPath maps a key to root/<2-char shard>/<hash>.json.
func (c *fileCache) entryPath(key string) string {
	digest := Hash([]byte(key))
	return filepath.Join(c.root, digest[:2], digest[2:]+".json")
}
