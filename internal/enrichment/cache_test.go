package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type memStore struct {
	mu      sync.Mutex
	entries map[Key]Entry
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[Key]Entry)}
}

func (s *memStore) Get(_ context.Context, key Key) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		return &e, nil
	}
	return nil, ErrEntryNotFound
}

func (s *memStore) Put(_ context.Context, entry Entry) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[entry.Key()]; ok {
		return &existing, nil
	}

	entry.ID = uuid.New()
	entry.RetrievedAt = time.Now().UTC()
	s.entries[entry.Key()] = entry
	return &entry, nil
}

func (s *memStore) Invalidate(_ context.Context, cmd InvalidateCommand) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key := range s.entries {
		if cmd.Source != nil && *cmd.Source != key.Source {
			continue
		}
		if cmd.DocumentID != nil && *cmd.DocumentID != key.DocumentID {
			continue
		}
		delete(s.entries, key)
		removed++
	}
	return removed, nil
}

type countingFetcher struct {
	mu    sync.Mutex
	calls map[Key]int
	fail  map[Key]bool
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{
		calls: make(map[Key]int),
		fail:  make(map[Key]bool),
	}
}

func (f *countingFetcher) Fetch(_ context.Context, key Key) (*Document, error) {
	f.mu.Lock()
	f.calls[key]++
	failed := f.fail[key]
	f.mu.Unlock()

	if failed {
		return nil, fmt.Errorf("document service unavailable")
	}
	return &Document{Text: "solicitation text for " + key.String()}, nil
}

func (f *countingFetcher) count(key Key) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func newTestCache(store Store, fetcher Fetcher) *Cache {
	return NewCache(store, fetcher, 2, slog.New(slog.DiscardHandler), nil)
}

func TestGetFetchesOnce(t *testing.T) {
	fetcher := newCountingFetcher()
	cache := newTestCache(newMemStore(), fetcher)
	key := Key{Source: "sbir", DocumentID: "SOL-1"}

	first, err := cache.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}

	second, err := cache.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}

	if fetcher.count(key) != 1 {
		t.Errorf("fetch count = %d, want 1", fetcher.count(key))
	}
	if first.Text != second.Text {
		t.Error("repeated gets returned different entries")
	}
	if stats := cache.Stats(); stats.Hits == 0 {
		t.Error("second get did not register a cache hit")
	}
}

func TestGetInvalidKey(t *testing.T) {
	cache := newTestCache(newMemStore(), newCountingFetcher())

	if _, err := cache.Get(context.Background(), Key{Source: "sbir"}); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("err = %v, want ErrInvalidKey", err)
	}
}

func TestGetFetchFailure(t *testing.T) {
	fetcher := newCountingFetcher()
	key := Key{Source: "sbir", DocumentID: "SOL-404"}
	fetcher.fail[key] = true

	store := newMemStore()
	cache := newTestCache(store, fetcher)

	_, err := cache.Get(context.Background(), key)
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("err = %v, want ErrFetchFailed", err)
	}

	// Failures are never persisted.
	if _, err := store.Get(context.Background(), key); !errors.Is(err, ErrEntryNotFound) {
		t.Error("failed fetch left an entry in the store")
	}
	if stats := cache.Stats(); stats.Failures != 1 {
		t.Errorf("failure count = %d, want 1", stats.Failures)
	}
}

func TestGetPersistsTextOnlyDocument(t *testing.T) {
	fetcher := newCountingFetcher()
	store := newMemStore()
	cache := newTestCache(store, fetcher)
	key := Key{Source: "sbir", DocumentID: "SOL-TXT"}

	entry, err := cache.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get text-only document: %v", err)
	}
	if entry.PageCount != nil {
		t.Errorf("page count = %d, want nil for a text-only document", *entry.PageCount)
	}

	// Write-through must succeed without a page count.
	stored, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("text-only document not written through: %v", err)
	}
	if stored.PageCount != nil {
		t.Error("stored entry gained a page count")
	}
}

func TestGetSharedAcrossConcurrentRequesters(t *testing.T) {
	fetcher := newCountingFetcher()
	cache := newTestCache(newMemStore(), fetcher)
	key := Key{Source: "sbir", DocumentID: "SOL-2"}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Get(context.Background(), key); err != nil {
				t.Errorf("concurrent get: %v", err)
			}
		}()
	}
	wg.Wait()

	if fetcher.count(key) != 1 {
		t.Errorf("fetch count = %d, want 1 across concurrent requesters", fetcher.count(key))
	}
}

func TestFetchBatchDedupesAndDegrades(t *testing.T) {
	fetcher := newCountingFetcher()
	good := Key{Source: "sbir", DocumentID: "SOL-3"}
	bad := Key{Source: "sbir", DocumentID: "SOL-500"}
	fetcher.fail[bad] = true

	cache := newTestCache(newMemStore(), fetcher)

	keys := []Key{good, good, bad, {Source: "", DocumentID: "skipped"}}
	results := cache.FetchBatch(context.Background(), keys)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 distinct valid keys", len(results))
	}
	if fetcher.count(good) != 1 {
		t.Errorf("duplicate key fetched %d times", fetcher.count(good))
	}
	if results[good].Err != nil {
		t.Errorf("good key failed: %v", results[good].Err)
	}
	if !errors.Is(results[bad].Err, ErrFetchFailed) {
		t.Errorf("bad key err = %v, want ErrFetchFailed", results[bad].Err)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	fetcher := newCountingFetcher()
	cache := newTestCache(newMemStore(), fetcher)
	key := Key{Source: "sbir", DocumentID: "SOL-4"}

	if _, err := cache.Get(context.Background(), key); err != nil {
		t.Fatalf("seed get: %v", err)
	}

	source := "sbir"
	removed, err := cache.Invalidate(context.Background(), InvalidateCommand{Source: &source})
	if err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if _, err := cache.Get(context.Background(), key); err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if fetcher.count(key) != 2 {
		t.Errorf("fetch count = %d, want 2 after invalidation", fetcher.count(key))
	}
}

func TestInvalidateCommandEmpty(t *testing.T) {
	if !(InvalidateCommand{}).Empty() {
		t.Error("zero command not reported empty")
	}

	source := "sbir"
	if (InvalidateCommand{Source: &source}).Empty() {
		t.Error("command with selector reported empty")
	}
}
