package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/telemetry"
)

// System defines the public contract for the enrichment cache.
type System interface {
	Handler() *Handler

	// Get returns the entry for the key, fetching and caching it on miss.
	// Concurrent requests for the same key coalesce into one fetch.
	Get(ctx context.Context, key Key) (*Entry, error)

	// FetchBatch resolves every distinct key before classification starts.
	// Missing keys are fetched at most once under bounded concurrency and
	// the same entry is returned for every record sharing a key. The result
	// map covers every requested key; failed keys carry ErrFetchFailed.
	FetchBatch(ctx context.Context, keys []Key) map[Key]Result

	// Invalidate deletes stored entries matching the command selectors
	// and returns the number removed.
	Invalidate(ctx context.Context, cmd InvalidateCommand) (int64, error)

	Stats() Stats
}

// Cache is the shared mutable enrichment state: a read-through in-memory
// layer over the permanent store, with singleflight deduplication so an
// in-flight fetch is shared by all concurrent requesters of its key.
type Cache struct {
	store       Store
	fetcher     Fetcher
	concurrency int
	logger      *slog.Logger
	metrics     *telemetry.Metrics

	group singleflight.Group

	mu  sync.RWMutex
	mem map[Key]*Entry

	hits        atomic.Int64
	misses      atomic.Int64
	fetches     atomic.Int64
	failures    atomic.Int64
	invalidated atomic.Int64
}

// NewCache creates an enrichment cache over the given store and fetcher.
// concurrency bounds simultaneous external fetches during batch resolution.
func NewCache(
	store Store,
	fetcher Fetcher,
	concurrency int,
	logger *slog.Logger,
	metrics *telemetry.Metrics,
) *Cache {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Cache{
		store:       store,
		fetcher:     fetcher,
		concurrency: concurrency,
		logger:      logger.With("system", "enrichment"),
		metrics:     metrics,
		mem:         make(map[Key]*Entry),
	}
}

func (c *Cache) Handler() *Handler {
	return NewHandler(c, c.logger)
}

func (c *Cache) Get(ctx context.Context, key Key) (*Entry, error) {
	if !key.Valid() {
		return nil, ErrInvalidKey
	}

	c.mu.RLock()
	entry, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		c.recordHit()
		return entry, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		return c.resolve(ctx, key)
	})
	if err != nil {
		return nil, err
	}

	return v.(*Entry), nil
}

// resolve runs inside singleflight: at most one goroutine per key executes
// the store lookup and external fetch; all concurrent requesters share the
// returned entry.
func (c *Cache) resolve(ctx context.Context, key Key) (*Entry, error) {
	// Re-check memory: a previous flight may have completed between the
	// caller's miss and this execution.
	c.mu.RLock()
	entry, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		c.recordHit()
		return entry, nil
	}

	stored, err := c.store.Get(ctx, key)
	if err == nil {
		c.recordHit()
		c.remember(stored)
		return stored, nil
	}
	if !errors.Is(err, ErrEntryNotFound) {
		return nil, fmt.Errorf("enrichment store lookup %s: %w", key, err)
	}

	c.recordMiss()
	c.fetches.Add(1)
	if c.metrics != nil {
		c.metrics.FetchesTotal.Inc()
	}

	doc, err := c.fetcher.Fetch(ctx, key)
	if err != nil {
		c.failures.Add(1)
		if c.metrics != nil {
			c.metrics.FetchFailuresTotal.Inc()
		}
		c.logger.Warn("enrichment fetch failed",
			"source", key.Source,
			"document_id", key.DocumentID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, key, err)
	}

	entry, err = c.store.Put(ctx, Entry{
		Source:     key.Source,
		DocumentID: key.DocumentID,
		Text:       doc.Text,
		Keywords:   doc.Keywords,
		PageCount:  doc.PageCount,
	})
	if err != nil {
		return nil, err
	}

	c.remember(entry)
	c.logger.Info("enrichment entry cached",
		"source", key.Source,
		"document_id", key.DocumentID,
		"chars", len(entry.Text),
	)
	return entry, nil
}

func (c *Cache) FetchBatch(ctx context.Context, keys []Key) map[Key]Result {
	distinct := dedupeKeys(keys)
	results := make(map[Key]Result, len(distinct))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, key := range distinct {
		g.Go(func() error {
			entry, err := c.Get(gctx, key)

			mu.Lock()
			results[key] = Result{Entry: entry, Err: err}
			mu.Unlock()

			// Fetch failures degrade the affected records; they never
			// abort the batch.
			return nil
		})
	}

	g.Wait()
	return results
}

func (c *Cache) Invalidate(ctx context.Context, cmd InvalidateCommand) (int64, error) {
	removed, err := c.store.Invalidate(ctx, cmd)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	for key := range c.mem {
		if cmd.matchesKey(key) {
			delete(c.mem, key)
		}
	}
	c.mu.Unlock()

	c.invalidated.Add(removed)
	if c.metrics != nil {
		c.metrics.InvalidationsTotal.Add(float64(removed))
	}

	c.logger.Info("enrichment entries invalidated", "removed", removed)
	return removed, nil
}

func (c *Cache) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Fetches:     c.fetches.Load(),
		Failures:    c.failures.Load(),
		Invalidated: c.invalidated.Load(),
	}
}

func (c *Cache) remember(entry *Entry) {
	c.mu.Lock()
	c.mem[entry.Key()] = entry
	c.mu.Unlock()
}

func (c *Cache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *Cache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// matchesKey reports whether an in-memory entry's key falls under the
// invalidation selectors. Date-range-only invalidations purge conservatively
// since memory holds no retrieval timestamps worth re-checking against the
// store's authoritative rows.
func (c InvalidateCommand) matchesKey(key Key) bool {
	if c.Source != nil && *c.Source != key.Source {
		return false
	}
	if c.DocumentID != nil && *c.DocumentID != key.DocumentID {
		return false
	}
	return true
}

func dedupeKeys(keys []Key) []Key {
	seen := make(map[Key]struct{}, len(keys))
	distinct := make([]Key, 0, len(keys))
	for _, key := range keys {
		if !key.Valid() {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		distinct = append(distinct, key)
	}

	slices.SortFunc(distinct, func(a, b Key) int {
		if a.Source != b.Source {
			if a.Source < b.Source {
				return -1
			}
			return 1
		}
		if a.DocumentID < b.DocumentID {
			return -1
		}
		if a.DocumentID > b.DocumentID {
			return 1
		}
		return 0
	})

	return distinct
}
