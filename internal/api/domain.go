package api

import (
	"fmt"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/assessments"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/awards"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/enrichment"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/export"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/review"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/scoring"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/taxonomy"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/telemetry"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Awards      awards.System
	Taxonomy    taxonomy.System
	Enrichment  enrichment.System
	Assessments assessments.System
	Export      export.System
	Metrics     *telemetry.Metrics
}

// NewDomain creates all domain systems from the API runtime. Scoring
// configuration and the optional statistical model are loaded here so a
// malformed document fails startup instead of the first request.
func NewDomain(runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()
	metrics := telemetry.New()

	taxonomySys := taxonomy.New(db, runtime.Logger, runtime.Engine.CatalogPath)
	if err := taxonomySys.Start(runtime.Lifecycle); err != nil {
		return nil, fmt.Errorf("taxonomy start failed: %w", err)
	}

	awardSys := awards.New(db, runtime.Logger, runtime.Pagination)

	cache := enrichment.NewCache(
		enrichment.NewStore(db),
		enrichment.NewBlobFetcher(runtime.Storage, runtime.Logger),
		runtime.Engine.EnrichmentConcurrency,
		runtime.Logger,
		metrics,
	)

	scoringCfg, err := scoring.LoadConfig(runtime.Engine.ScoringConfigPath)
	if err != nil {
		return nil, fmt.Errorf("scoring config load failed: %w", err)
	}

	var model scoring.Model
	if runtime.Engine.ModelPath != "" {
		linear, err := scoring.LoadModel(runtime.Engine.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("model load failed: %w", err)
		}
		model = linear
	}

	engine := scoring.NewEngine(
		scoringCfg,
		model,
		cache,
		metrics,
		review.NewLogEmitter(runtime.Logger),
		runtime.Logger,
		scoring.Options{
			Workers:           runtime.Engine.Workers,
			ParallelThreshold: runtime.Engine.ParallelThreshold,
			ReviewThreshold:   runtime.Engine.ReviewThreshold,
		},
	)

	assessmentSys := assessments.New(
		db,
		runtime.Logger,
		runtime.Pagination,
		engine,
		awardSys,
		taxonomySys,
	)

	return &Domain{
		Awards:      awardSys,
		Taxonomy:    taxonomySys,
		Enrichment:  cache,
		Assessments: assessmentSys,
		Export:      export.New(db, runtime.Logger, engine, taxonomySys),
		Metrics:     metrics,
	}, nil
}
