package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/enrichment"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/review"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/taxonomy"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/telemetry"
)

// Record is one award as the engine sees it: the classifiable text plus
// an optional reference to solicitation enrichment.
type Record struct {
	AwardID  uuid.UUID
	Agency   string
	Branch   string
	Title    string
	Abstract string
	Keywords []string

	// Enrichment references the record's solicitation document, nil when
	// the award carries none.
	Enrichment *enrichment.Key
}

// Result is the engine's output for one record. Err is set only when the
// record's evaluation itself failed; enrichment trouble degrades into
// EnrichmentFailed instead.
type Result struct {
	Record           Record
	Outcome          Outcome
	EnrichmentFailed bool
	Reviews          []review.Reason
	Err              error
}

// Options tunes engine execution.
type Options struct {
	// Workers bounds parallel evaluation during batch classification.
	Workers int

	// ParallelThreshold is the batch size at which the engine switches
	// from sequential to parallel evaluation.
	ParallelThreshold int

	// ReviewThreshold flags classified records below this primary score
	// for human review.
	ReviewThreshold float64
}

// Engine runs the full scoring pipeline: enrichment lookup, rule and
// statistical scoring, blending, and resolution. Scorer state is
// immutable after construction; the enrichment cache is the only shared
// mutable dependency, so records evaluate safely in parallel.
type Engine struct {
	base    *Config
	model   Model
	cache   enrichment.System
	metrics *telemetry.Metrics
	reviews review.Emitter
	logger  *slog.Logger
	opts    Options

	builder  *FeatureBuilder
	blender  *Blender
	resolver *Resolver

	mu        sync.RWMutex
	sanitized map[string]*Config
}

// NewEngine creates an Engine. model may be nil (rule-only operation);
// cache may be nil when no solicitation archive is configured.
func NewEngine(
	cfg *Config,
	model Model,
	cache enrichment.System,
	metrics *telemetry.Metrics,
	reviews review.Emitter,
	logger *slog.Logger,
	opts Options,
) *Engine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ParallelThreshold < 1 {
		opts.ParallelThreshold = 1
	}

	return &Engine{
		base:      cfg,
		model:     model,
		cache:     cache,
		metrics:   metrics,
		reviews:   reviews,
		logger:    logger.With("system", "scoring"),
		opts:      opts,
		builder:   NewFeatureBuilder(cfg.Vectorizer),
		blender:   NewBlender(cfg),
		resolver:  NewResolver(cfg, model),
		sanitized: make(map[string]*Config),
	}
}

// ConfigVersion returns the scoring configuration version, recorded on
// every persisted assessment.
func (e *Engine) ConfigVersion() string {
	return e.base.Version
}

// ModelVersion returns the statistical model version, empty when the
// engine runs rule-only.
func (e *Engine) ModelVersion() string {
	if e.model == nil {
		return ""
	}
	return e.model.Version()
}

// Classify evaluates a single record against the catalog.
func (e *Engine) Classify(ctx context.Context, rec Record, catalog *taxonomy.Catalog) Result {
	text, failed := e.lookupEnrichment(ctx, rec)
	return e.classifyOne(rec, catalog, text, failed)
}

// ClassifyBatch evaluates records against the catalog. Enrichment for the
// whole batch is resolved up front so parallel workers never race on
// external fetches; evaluation runs sequentially below the parallel
// threshold and on a bounded worker group above it. A record that fails
// carries its error in its Result; it never aborts the batch.
func (e *Engine) ClassifyBatch(ctx context.Context, recs []Record, catalog *taxonomy.Catalog) []Result {
	if e.metrics != nil {
		e.metrics.BatchRecordsTotal.Add(float64(len(recs)))
	}

	entries := e.prefetch(ctx, recs)
	results := make([]Result, len(recs))

	if len(recs) < e.opts.ParallelThreshold {
		for i, rec := range recs {
			text, failed := batchEnrichment(rec, entries)
			results[i] = e.classifySafe(rec, catalog, text, failed)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(e.opts.Workers)
	for i, rec := range recs {
		g.Go(func() error {
			text, failed := batchEnrichment(rec, entries)
			results[i] = e.classifySafe(rec, catalog, text, failed)
			return nil
		})
	}
	g.Wait()

	return results
}

// classifySafe isolates one record's evaluation: a panic becomes that
// record's error instead of taking down the batch.
func (e *Engine) classifySafe(rec Record, catalog *taxonomy.Catalog, text string, failed bool) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			if e.metrics != nil {
				e.metrics.BatchFailuresTotal.Inc()
			}
			e.logger.Error("record classification failed",
				"award_id", rec.AwardID,
				"catalog_version", catalog.Version(),
				"panic", r,
			)
			res = Result{Record: rec, Err: fmt.Errorf("classify award %s: %v", rec.AwardID, r)}
		}
	}()

	return e.classifyOne(rec, catalog, text, failed)
}

func (e *Engine) classifyOne(rec Record, catalog *taxonomy.Catalog, enrichText string, enrichFailed bool) Result {
	cfg := e.sanitizedFor(catalog)

	in := Input{
		AwardID:          rec.AwardID,
		Agency:           rec.Agency,
		Branch:           rec.Branch,
		Title:            rec.Title,
		Abstract:         rec.Abstract,
		Keywords:         rec.Keywords,
		Enrichment:       enrichText,
		EnrichmentFailed: enrichFailed,
	}

	rules := NewRuleScorer(cfg).Score(in, catalog)
	vec := e.builder.Build(in)

	var probs map[string]float64
	if e.model != nil {
		probs = e.model.Score(vec)
	}

	blended := e.blender.Blend(rules, probs)
	outcome := e.resolver.Resolve(blended, rules, vec)

	res := Result{
		Record:           rec,
		Outcome:          outcome,
		EnrichmentFailed: enrichFailed,
		Reviews:          e.reviewReasons(&in, outcome),
	}

	e.record(rec, catalog, rules, outcome, res.Reviews)
	return res
}

func (e *Engine) reviewReasons(in *Input, outcome Outcome) []review.Reason {
	var reasons []review.Reason

	if in.missingText() {
		reasons = append(reasons, review.ReasonMissingText)
	}
	if outcome.Primary == CategoryNone {
		reasons = append(reasons, review.ReasonNoSignal)
	} else if outcome.Score < e.opts.ReviewThreshold {
		reasons = append(reasons, review.ReasonLowConfidence)
	}

	return reasons
}

func (e *Engine) record(
	rec Record,
	catalog *taxonomy.Catalog,
	rules map[string]CategoryScore,
	outcome Outcome,
	reasons []review.Reason,
) {
	if e.metrics != nil {
		e.metrics.AssessmentsTotal.WithLabelValues(string(outcome.Band)).Inc()
		for _, cs := range rules {
			for _, sig := range cs.Signals {
				e.metrics.RuleFiresTotal.WithLabelValues(string(sig.Kind)).Inc()
			}
		}
		for _, reason := range reasons {
			e.metrics.ReviewSignalsTotal.WithLabelValues(string(reason)).Inc()
		}
	}

	if e.reviews != nil {
		for _, reason := range reasons {
			e.reviews.Emit(review.Signal{
				AwardID:        rec.AwardID,
				CatalogVersion: catalog.Version(),
				Reason:         reason,
				Score:          outcome.Score,
				Detail:         string(outcome.Band),
			})
		}
	}
}

func (e *Engine) lookupEnrichment(ctx context.Context, rec Record) (string, bool) {
	if rec.Enrichment == nil || e.cache == nil {
		return "", false
	}

	entry, err := e.cache.Get(ctx, *rec.Enrichment)
	if err != nil {
		e.logger.Warn("classifying without enrichment",
			"award_id", rec.AwardID,
			"source", rec.Enrichment.Source,
			"document_id", rec.Enrichment.DocumentID,
			"error", err,
		)
		return "", true
	}
	return entry.Text, false
}

// prefetch resolves the batch's distinct enrichment keys before workers
// start, so per-record lookups hit memory.
func (e *Engine) prefetch(ctx context.Context, recs []Record) map[enrichment.Key]enrichment.Result {
	if e.cache == nil {
		return nil
	}

	keys := make([]enrichment.Key, 0, len(recs))
	for _, rec := range recs {
		if rec.Enrichment != nil {
			keys = append(keys, *rec.Enrichment)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	return e.cache.FetchBatch(ctx, keys)
}

func batchEnrichment(rec Record, entries map[enrichment.Key]enrichment.Result) (string, bool) {
	if rec.Enrichment == nil || entries == nil {
		return "", false
	}

	res, ok := entries[*rec.Enrichment]
	if !ok || res.Err != nil {
		return "", true
	}
	return res.Entry.Text, false
}

// sanitizedFor returns the scoring configuration sanitized against the
// catalog version, computing and caching it on first use.
func (e *Engine) sanitizedFor(catalog *taxonomy.Catalog) *Config {
	e.mu.RLock()
	cfg, ok := e.sanitized[catalog.Version()]
	e.mu.RUnlock()
	if ok {
		return cfg
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if cfg, ok := e.sanitized[catalog.Version()]; ok {
		return cfg
	}

	cfg = e.base.Sanitize(catalog, e.logger)
	e.sanitized[catalog.Version()] = cfg
	return cfg
}
