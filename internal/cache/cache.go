package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"ticketdash/internal"
	"ticketdash/internal/metrics"
	"ticketdash/internal/storage"
)

// Loader produces a fresh batch for a folder.
type Loader interface {
	Fetch(ctx context.Context, folderID string) (internal.Batch, error)
}

type entry struct {
	batch    internal.Batch
	loadedAt time.Time
}

// BatchCache keeps the last successful batch per folder for a fixed TTL.
// Loads for one folder are serialized; failed loads are not cached.
type BatchCache struct {
	loader  Loader
	ttl     time.Duration
	db      *storage.DB
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]entry
	loading map[string]*sync.Mutex
}

func New(loader Loader, ttl time.Duration, db *storage.DB, log *zap.Logger, m *metrics.Metrics) *BatchCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &BatchCache{
		loader:  loader,
		ttl:     ttl,
		db:      db,
		log:     log,
		metrics: m,
		now:     time.Now,
		entries: map[string]entry{},
		loading: map[string]*sync.Mutex{},
	}
}

// Get returns the cached batch while it is younger than the TTL and
// reloads it otherwise.
func (c *BatchCache) Get(ctx context.Context, folderID string) (internal.Batch, error) {
	if b, ok := c.fresh(folderID); ok {
		if c.metrics != nil {
			c.metrics.CacheHits.Inc()
		}
		return b, nil
	}

	lock := c.folderLock(folderID)
	lock.Lock()
	defer lock.Unlock()

	if b, ok := c.fresh(folderID); ok {
		if c.metrics != nil {
			c.metrics.CacheHits.Inc()
		}
		return b, nil
	}
	if c.metrics != nil {
		c.metrics.CacheMisses.Inc()
	}

	batch, err := c.loader.Fetch(ctx, folderID)
	if err != nil {
		return internal.Batch{}, err
	}

	loadedAt := c.now()
	c.mu.Lock()
	c.entries[folderID] = entry{batch: batch, loadedAt: loadedAt}
	c.mu.Unlock()

	if c.db != nil {
		if err := c.db.RecordFetch(folderID, loadedAt); err != nil {
			c.log.Warn("record fetch time failed", zap.String("folderId", folderID), zap.Error(err))
		}
	}
	return batch, nil
}

// Peek returns the cached batch regardless of age.
func (c *BatchCache) Peek(folderID string) (internal.Batch, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[folderID]
	return e.batch, e.loadedAt, ok
}

func (c *BatchCache) Invalidate(folderID string) {
	c.mu.Lock()
	delete(c.entries, folderID)
	c.mu.Unlock()
}

func (c *BatchCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = map[string]entry{}
	c.mu.Unlock()
}

func (c *BatchCache) fresh(folderID string) (internal.Batch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[folderID]
	if !ok {
		return internal.Batch{}, false
	}
	if c.now().Sub(e.loadedAt) > c.ttl {
		return internal.Batch{}, false
	}
	return e.batch, true
}

func (c *BatchCache) folderLock(folderID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.loading[folderID]
	if !ok {
		l = &sync.Mutex{}
		c.loading[folderID] = l
	}
	return l
}
