package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/HartBrook/shrink/internal/config"
	"github.com/HartBrook/shrink/internal/errors"
	"github.com/HartBrook/shrink/internal/kind"
)

// schemaVersion is mixed into every key. Bump it when minifier output changes
// so older entries are never served.
const schemaVersion = "1"

// Key returns the cache key for text of kind k.
func Key(k kind.Kind, text string) string {
	h := sha256.New()
	h.Write([]byte(schemaVersion))
	h.Write([]byte{0})
	h.Write([]byte(k.String()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Cache manages cached minification results.
type Cache struct {
	paths *config.Paths
}

// New creates a cache manager.
func New(paths *config.Paths) *Cache {
	return &Cache{paths: paths}
}

// Read returns cached content and metadata, or error if not cached.
// Content without readable metadata is treated as missing and removed.
func (c *Cache) Read(key string) (content string, meta *Metadata, err error) {
	contentBytes, err := os.ReadFile(c.paths.ResultFile(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, errors.CacheNotFound(key)
		}
		return "", nil, err
	}

	meta, err = c.GetMetadata(key)
	if err != nil {
		_ = c.Clear(key)
		return "", nil, errors.CacheNotFound(key)
	}

	return string(contentBytes), meta, nil
}

// Lookup returns the cached content for key when an entry exists and is
// younger than ttl.
func (c *Cache) Lookup(key string, ttl time.Duration) (string, *Metadata, bool) {
	content, meta, err := c.Read(key)
	if err != nil || meta.IsStale(ttl) {
		return "", nil, false
	}
	return content, meta, true
}

// Write stores content and metadata.
func (c *Cache) Write(key, content string, meta *Metadata) error {
	if err := os.MkdirAll(c.paths.ResultsDir(), config.DefaultDirMode); err != nil {
		return err
	}

	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}
	meta.Key = key

	if err := os.WriteFile(c.paths.ResultFile(key), []byte(content), config.DefaultFileMode); err != nil {
		return err
	}

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.paths.ResultMetaFile(key), metaBytes, config.DefaultFileMode)
}

// Exists checks if a result is cached for key.
func (c *Cache) Exists(key string) bool {
	_, err := os.Stat(c.paths.ResultFile(key))
	return err == nil
}

// Clear removes the cached result for key.
// Returns nil even if files don't exist (idempotent operation).
func (c *Cache) Clear(key string) error {
	if err := os.Remove(c.paths.ResultFile(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cached result: %w", err)
	}
	if err := os.Remove(c.paths.ResultMetaFile(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache metadata: %w", err)
	}
	return nil
}

// ClearAll removes every cached result and returns how many were removed.
func (c *Cache) ClearAll() (int, error) {
	keys, err := c.keys()
	if err != nil {
		return 0, err
	}
	for _, key := range keys {
		if err := c.Clear(key); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}

// GetMetadata returns only the metadata without reading content.
func (c *Cache) GetMetadata(key string) (*Metadata, error) {
	metaBytes, err := os.ReadFile(c.paths.ResultMetaFile(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.CacheNotFound(key)
		}
		return nil, err
	}

	meta := &Metadata{}
	if err := json.Unmarshal(metaBytes, meta); err != nil {
		return nil, err
	}

	return meta, nil
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.paths.ResultsDir()
}

// ListCached returns metadata for every cached result, newest first.
// Entries with unreadable metadata are skipped.
func (c *Cache) ListCached() ([]*Metadata, error) {
	keys, err := c.keys()
	if err != nil {
		return nil, err
	}

	entries := make([]*Metadata, 0, len(keys))
	for _, key := range keys {
		meta, err := c.GetMetadata(key)
		if err != nil {
			continue
		}
		entries = append(entries, meta)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (c *Cache) keys() ([]string, error) {
	entries, err := os.ReadDir(c.paths.ResultsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var keys []string
	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), ".out"); ok {
			keys = append(keys, name)
		}
	}
	return keys, nil
}
