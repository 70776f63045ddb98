package artifact

import (
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/painel-enem/enem-cli/internal/table"
)

// Cache is a read-through snapshot cache keyed by artifact path. An
// entry is valid as long as the file's size and modification time are
// unchanged; a pipeline rerun replaces the file and the next Load
// re-reads it. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	tbl     *table.Table
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// Load returns the decoded snapshot at path, reading it at most once
// per on-disk version. The stat error is returned unwrapped inside the
// eris chain so callers can test for os.ErrNotExist.
func (c *Cache) Load(path string) (*table.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: stat %s", path)
	}

	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok && e.size == info.Size() && e.modTime.Equal(info.ModTime()) {
		zap.L().Debug("artifact cache hit", zap.String("path", path))
		return e.tbl, nil
	}

	tbl, err := ReadSnapshot(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[path] = &cacheEntry{modTime: info.ModTime(), size: info.Size(), tbl: tbl}
	c.mu.Unlock()

	zap.L().Debug("artifact cache fill", zap.String("path", path), zap.Int("rows", tbl.Len()))
	return tbl, nil
}
