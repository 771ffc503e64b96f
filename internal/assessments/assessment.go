// Package assessments implements the classification output domain.
// An assessment links one award and one catalog version to a resolved
// primary category, score, band, supporting categories, and evidence.
// History is append-only across catalog versions: a new catalog version
// produces a new assessment row, never a mutation of the old one.
// Re-running the same (award, catalog version) pair refreshes that row
// in place, which keeps re-classification after config tuning idempotent.
package assessments

import (
	"time"

	"github.com/google/uuid"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/scoring"
)

// Assessment is the persisted classification result for one award under
// one catalog version.
type Assessment struct {
	ID             uuid.UUID `json:"id"`
	AwardID        uuid.UUID `json:"award_id"`
	CatalogVersion string    `json:"catalog_version"`

	Primary    string                       `json:"primary_category"`
	Score      float64                      `json:"score"`
	Band       scoring.Band                 `json:"band"`
	Supporting []scoring.SupportingCategory `json:"supporting"`

	// Weights is the full normalized weight vector over every category
	// carrying signal, summing to 1.0.
	Weights map[string]float64 `json:"weights"`

	Evidence []scoring.EvidenceStatement `json:"evidence"`

	ConfigVersion      string   `json:"config_version"`
	ModelVersion       string   `json:"model_version,omitempty"`
	EnrichmentDegraded bool     `json:"enrichment_degraded"`
	ReviewReasons      []string `json:"review_reasons,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssessCommand requests classification of one award. An empty
// CatalogVersion resolves to the latest stored catalog.
type AssessCommand struct {
	AwardID        uuid.UUID `json:"award_id"`
	CatalogVersion string    `json:"catalog_version"`
}

// BatchCommand requests classification of many awards under one catalog
// version.
type BatchCommand struct {
	AwardIDs       []uuid.UUID `json:"award_ids"`
	CatalogVersion string      `json:"catalog_version"`
}

// BatchFailure records one award that could not be assessed.
type BatchFailure struct {
	AwardID uuid.UUID `json:"award_id"`
	Error   string    `json:"error"`
}

// BatchResult summarizes a batch run. Failures never abort the batch;
// every requested award is accounted for here.
type BatchResult struct {
	CatalogVersion string         `json:"catalog_version"`
	Requested      int            `json:"requested"`
	Assessed       int            `json:"assessed"`
	Failed         int            `json:"failed"`
	Failures       []BatchFailure `json:"failures,omitempty"`
}
