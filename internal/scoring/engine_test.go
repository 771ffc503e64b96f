package scoring

import (
	"context"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/enrichment"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/review"
)

type fakeCache struct {
	entries map[enrichment.Key]string
	fail    map[enrichment.Key]bool
}

func (f *fakeCache) Handler() *enrichment.Handler { return nil }

func (f *fakeCache) Get(_ context.Context, key enrichment.Key) (*enrichment.Entry, error) {
	if f.fail[key] {
		return nil, enrichment.ErrFetchFailed
	}
	if text, ok := f.entries[key]; ok {
		return &enrichment.Entry{Source: key.Source, DocumentID: key.DocumentID, Text: text}, nil
	}
	return nil, enrichment.ErrEntryNotFound
}

func (f *fakeCache) FetchBatch(ctx context.Context, keys []enrichment.Key) map[enrichment.Key]enrichment.Result {
	results := make(map[enrichment.Key]enrichment.Result, len(keys))
	for _, key := range keys {
		entry, err := f.Get(ctx, key)
		results[key] = enrichment.Result{Entry: entry, Err: err}
	}
	return results
}

func (f *fakeCache) Invalidate(context.Context, enrichment.InvalidateCommand) (int64, error) {
	return 0, nil
}

func (f *fakeCache) Stats() enrichment.Stats { return enrichment.Stats{} }

type recordingEmitter struct {
	mu      sync.Mutex
	signals []review.Signal
}

func (r *recordingEmitter) Emit(sig review.Signal) {
	r.mu.Lock()
	r.signals = append(r.signals, sig)
	r.mu.Unlock()
}

func (r *recordingEmitter) reasons() []review.Reason {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]review.Reason, 0, len(r.signals))
	for _, sig := range r.signals {
		out = append(out, sig.Reason)
	}
	return out
}

func newTestEngine(t *testing.T, cache enrichment.System, emitter review.Emitter) *Engine {
	t.Helper()

	return NewEngine(
		testConfig(t),
		nil,
		cache,
		nil,
		emitter,
		slog.New(slog.DiscardHandler),
		Options{Workers: 4, ParallelThreshold: 2, ReviewThreshold: 40},
	)
}

func TestClassifyUsesEnrichment(t *testing.T) {
	key := enrichment.Key{Source: "sbir", DocumentID: "SOL-1"}
	cache := &fakeCache{entries: map[enrichment.Key]string{
		key: "topic seeks superconducting qubit control electronics",
	}}

	engine := newTestEngine(t, cache, nil)

	rec := Record{
		AwardID:    uuid.New(),
		Abstract:   "cryogenic control hardware",
		Enrichment: &key,
	}

	res := engine.Classify(context.Background(), rec, testCatalog(t))
	if res.Err != nil {
		t.Fatalf("classify: %v", res.Err)
	}
	if res.EnrichmentFailed {
		t.Error("enrichment marked failed for a cached entry")
	}
	if res.Outcome.Primary != "quantum" {
		t.Errorf("primary = %s, want quantum via solicitation text", res.Outcome.Primary)
	}
}

func TestClassifyDegradesOnFetchFailure(t *testing.T) {
	key := enrichment.Key{Source: "sbir", DocumentID: "SOL-404"}
	cache := &fakeCache{fail: map[enrichment.Key]bool{key: true}}

	engine := newTestEngine(t, cache, nil)

	rec := Record{
		AwardID:    uuid.New(),
		Abstract:   "gene therapy manufacturing scale-up",
		Enrichment: &key,
	}

	res := engine.Classify(context.Background(), rec, testCatalog(t))
	if res.Err != nil {
		t.Fatalf("fetch failure must degrade, not error: %v", res.Err)
	}
	if !res.EnrichmentFailed {
		t.Error("EnrichmentFailed not set")
	}
	if res.Outcome.Primary != "biotech" {
		t.Errorf("primary = %s, want biotech from the abstract alone", res.Outcome.Primary)
	}
}

func TestClassifyReviewReasons(t *testing.T) {
	emitter := &recordingEmitter{}
	engine := newTestEngine(t, nil, emitter)

	res := engine.Classify(context.Background(), Record{AwardID: uuid.New()}, testCatalog(t))

	if !slices.Contains(res.Reviews, review.ReasonMissingText) {
		t.Error("missing_text reason absent")
	}
	if !slices.Contains(res.Reviews, review.ReasonNoSignal) {
		t.Error("no_signal reason absent")
	}
	if len(emitter.reasons()) != len(res.Reviews) {
		t.Errorf("emitted %d signals, want %d", len(emitter.reasons()), len(res.Reviews))
	}
}

func TestClassifyLowConfidenceReview(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	// One related keyword: raw 5, normalized 10, well under the threshold.
	rec := Record{AwardID: uuid.New(), Abstract: "entanglement studies"}

	res := engine.Classify(context.Background(), rec, testCatalog(t))
	if res.Outcome.Primary != "quantum" {
		t.Fatalf("primary = %s, want quantum", res.Outcome.Primary)
	}
	if !slices.Contains(res.Reviews, review.ReasonLowConfidence) {
		t.Error("low_confidence reason absent")
	}
}

func TestClassifyBatchPreservesOrder(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	recs := []Record{
		{AwardID: uuid.New(), Abstract: "gene therapy"},
		{AwardID: uuid.New(), Abstract: "qubit readout"},
		{AwardID: uuid.New(), Abstract: "machine learning"},
		{AwardID: uuid.New()},
	}

	results := engine.ClassifyBatch(context.Background(), recs, testCatalog(t))
	if len(results) != len(recs) {
		t.Fatalf("got %d results, want %d", len(results), len(recs))
	}
	for i, res := range results {
		if res.Record.AwardID != recs[i].AwardID {
			t.Errorf("result %d out of order", i)
		}
	}
}

func TestClassifyBatchDeterministic(t *testing.T) {
	engine := newTestEngine(t, nil, nil)
	catalog := testCatalog(t)

	recs := []Record{
		{AwardID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Abstract: "gene therapy and crispr screening"},
		{AwardID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Abstract: "qubit entanglement network"},
		{AwardID: uuid.MustParse("00000000-0000-0000-0000-000000000003"), Abstract: "implantable device with ai diagnostic"},
	}

	first := engine.ClassifyBatch(context.Background(), recs, catalog)
	second := engine.ClassifyBatch(context.Background(), recs, catalog)

	for i := range first {
		if !reflect.DeepEqual(first[i].Outcome, second[i].Outcome) {
			t.Errorf("record %d resolved differently across runs", i)
		}
	}
}
