package allocation

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// maxDaysToForceRefresh is the expiry, in days, above which cached entries
// ignore the ForceRefresh flag. Force refresh is meant for data that goes
// stale within a month, like prices, not for yearly data like fund names.
const maxDaysToForceRefresh = 40

// hotCacheSize bounds the in-memory layer of the cache.
const hotCacheSize = 256

// CacheConfig configures the quote cache.
type CacheConfig struct {
	// Dir is the directory holding the cached entries. An empty Dir
	// disables caching entirely.
	Dir string
	// ForceRefresh makes short-lived entries refetch once per session
	// even when still fresh.
	ForceRefresh bool
	// OnMiss, when set, is called on every cache miss. The CLI uses it to
	// drive a progress indicator during slow fetches.
	OnMiss func()
}

type cacheEntry struct {
	data    []byte
	expires time.Time
}

// QuoteCache stores provider responses on disk for a number of days, with an
// in-memory LRU layer on top so repeated lookups in one session do not hit
// the disk again.
//
// Each entry's expiry is part of its file name, so entries cached for
// different durations never collide and a sweep can drop expired files
// without reading them.
type QuoteCache struct {
	dir    string
	force  bool
	onMiss func()

	mu     sync.Mutex
	forced map[string]bool
	hot    *lru.Cache[string, cacheEntry]
}

// NewQuoteCache returns a cache rooted at cfg.Dir, creating the directory if
// needed and sweeping expired entries.
func NewQuoteCache(cfg CacheConfig) (*QuoteCache, error) {
	hot, err := lru.New[string, cacheEntry](hotCacheSize)
	if err != nil {
		return nil, err
	}
	c := &QuoteCache{
		dir:    cfg.Dir,
		force:  cfg.ForceRefresh,
		onMiss: cfg.OnMiss,
		forced: make(map[string]bool),
		hot:    hot,
	}
	if c.dir == "" {
		return c, nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory: %w", err)
	}
	c.sweep()
	return c, nil
}

// filename derives the entry file name from its key and expiry. The day
// count is kept as a prefix so sweep can evaluate expiry from the name.
func (c *QuoteCache) filename(key string, days int) string {
	return fmt.Sprintf("%d_%x.qc", days, md5.Sum([]byte(key)))
}

// sweep deletes entries that outlived the expiry encoded in their name.
func (c *QuoteCache) sweep() {
	files, err := filepath.Glob(filepath.Join(c.dir, "*_*.qc"))
	if err != nil {
		return
	}
	for _, file := range files {
		days, err := strconv.Atoi(strings.SplitN(filepath.Base(file), "_", 2)[0])
		if err != nil {
			continue
		}
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if fileAgeDays(info.ModTime()) >= days {
			os.Remove(file)
		}
	}
}

func fileAgeDays(mtime time.Time) int {
	return int(time.Since(mtime).Hours() / 24)
}

// Get returns the cached value under key if it is younger than days.
func (c *QuoteCache) Get(key string, days int) ([]byte, bool) {
	if c.dir == "" {
		return c.miss()
	}
	name := c.filename(key, days)

	if c.force && days < maxDaysToForceRefresh {
		c.mu.Lock()
		first := !c.forced[name]
		c.forced[name] = true
		c.mu.Unlock()
		if first {
			return c.miss()
		}
	}

	if entry, ok := c.hot.Get(name); ok && time.Now().Before(entry.expires) {
		return entry.data, true
	}

	file := filepath.Join(c.dir, name)
	info, err := os.Stat(file)
	if err != nil || fileAgeDays(info.ModTime()) >= days {
		return c.miss()
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return c.miss()
	}
	c.hot.Add(name, cacheEntry{data: data, expires: info.ModTime().AddDate(0, 0, days)})
	return data, true
}

func (c *QuoteCache) miss() ([]byte, bool) {
	if c.onMiss != nil {
		c.onMiss()
	}
	return nil, false
}

// Put stores value under key for the given number of days.
func (c *QuoteCache) Put(key string, days int, value []byte) error {
	if c.dir == "" {
		return nil
	}
	name := c.filename(key, days)
	if err := os.WriteFile(filepath.Join(c.dir, name), value, 0o644); err != nil {
		return err
	}
	c.hot.Add(name, cacheEntry{data: value, expires: time.Now().AddDate(0, 0, days)})
	return nil
}
