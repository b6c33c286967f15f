// Package cache persists serialized flow analyses between runs, keyed by
// what was analyzed and validated against a content hash of the source.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// DefaultTTL is how long an entry stays valid when no TTL is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a file-backed analysis cache. A disabled cache is a no-op that
// always misses, so callers never branch on configuration.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// entry is the on-disk shape of one cached analysis.
type entry struct {
	ContentHash string          `json:"content_hash"`
	CreatedAt   time.Time       `json:"created_at"`
	Payload     json.RawMessage `json:"payload"`
}

// Open creates or reuses a cache directory. Pass enabled=false to get a
// disabled cache without touching the filesystem.
func Open(dir string, ttl time.Duration, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{dir: dir, ttl: ttl, enabled: true}, nil
}

// Key builds a cache key from the identifying parts of one analysis, such
// as file path, symbol name and an options fingerprint.
func Key(parts ...string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.Join(parts, "\x00")))
}

// HashBytes returns the blake3 content hash used to validate entries
// against source changes.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile hashes a file's current contents.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// Get returns the cached payload for key when the stored content hash
// matches and the entry has not expired.
func (c *Cache) Get(key, contentHash string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	if e.ContentHash != contentHash {
		return nil, false
	}
	if time.Since(e.CreatedAt) > c.ttl {
		os.Remove(c.path(key))
		return nil, false
	}
	return e.Payload, true
}

// Put stores payload under key, stamped with the source content hash.
func (c *Cache) Put(key, contentHash string, payload []byte) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(entry{
		ContentHash: contentHash,
		CreatedAt:   time.Now(),
		Payload:     payload,
	})
	if err != nil {
		return fmt.Errorf("cache: encode entry: %w", err)
	}
	return os.WriteFile(c.path(key), data, 0o600)
}

// Invalidate removes one entry. Missing entries are not an error.
func (c *Cache) Invalidate(key string) error {
	if !c.enabled {
		return nil
	}
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes the whole cache directory.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries   int   `json:"entries"`
	TotalSize int64 `json:"total_size"`
}

// GetStats counts entries and their total size on disk.
func (c *Cache) GetStats() (*Stats, error) {
	stats := &Stats{}
	if !c.enabled {
		return stats, nil
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}
	for _, de := range entries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalSize += info.Size()
	}
	return stats, nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
