// Package cache memoises token counts on disk, keyed by a BLAKE3 hash of
// the file content.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/zeebo/blake3"

	"github.com/syntaxai/cargo-syntax/pkg/config"
	"github.com/syntaxai/cargo-syntax/pkg/tokenizer"
)

var encoding = string(tokenizer.Encoding)

// Cache stores one JSON entry per distinct content.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool

	hits   atomic.Int64
	misses atomic.Int64
}

// Entry is a cached token count.
type Entry struct {
	Encoding  string    `json:"encoding"`
	Tokens    int       `json:"tokens"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a cache in dir. A disabled cache never stores anything.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// FromConfig creates the cache described by cfg.Cache. A relative
// directory is resolved against root.
func FromConfig(cfg *config.Config, root string) (*Cache, error) {
	dir := cfg.Cache.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return New(dir, cfg.Cache.TTL, cfg.Cache.Enabled)
}

// Enabled reports whether the cache stores entries.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Dir is the entry directory; empty when disabled.
func (c *Cache) Dir() string {
	return c.dir
}

// Key is the cache key for content under the active encoding.
func Key(content string) string {
	h := blake3.New()
	_, _ = h.Write([]byte(encoding))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached token count for key if present and fresh.
func (c *Cache) Get(key string) (int, bool) {
	if !c.enabled {
		return 0, false
	}

	path := c.keyPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Encoding != encoding {
		return 0, false
	}

	if time.Since(entry.Timestamp) > c.ttl {
		os.Remove(path)
		return 0, false
	}

	return entry.Tokens, true
}

// Set stores a token count. The entry is written to a temp file and
// renamed so concurrent readers never see a partial entry.
func (c *Cache) Set(key string, tokens int) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(Entry{
		Encoding:  encoding,
		Tokens:    tokens,
		Timestamp: time.Now(),
	})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.keyPath(key))
}

// Counter wraps count so repeated contents are served from the cache.
// Cache write failures are ignored; the count is still returned.
func (c *Cache) Counter(count tokenizer.Counter) tokenizer.Counter {
	if !c.enabled {
		return count
	}
	return func(content string) (int, error) {
		key := Key(content)
		if n, ok := c.Get(key); ok {
			c.hits.Add(1)
			return n, nil
		}
		c.misses.Add(1)
		n, err := count(content)
		if err != nil {
			return 0, err
		}
		_ = c.Set(key, n)
		return n, nil
	}
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

func (c *Cache) keyPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Stats returns cache statistics.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats walks the cache directory. Hits and misses count lookups made
// through Counter since the cache was created.
func (c *Cache) GetStats() (*Stats, error) {
	stats := &Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
	if !c.enabled {
		return stats, nil
	}

	var oldest, newest time.Time
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		modTime := info.ModTime()
		if oldest.IsZero() || modTime.Before(oldest) {
			oldest = modTime
		}
		if newest.IsZero() || modTime.After(newest) {
			newest = modTime
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = time.Since(newest)
	}
	return stats, nil
}
