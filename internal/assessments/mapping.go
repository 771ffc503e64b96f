package assessments

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/query"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "assessments", "s").
	Project("id", "ID").
	Project("award_id", "AwardID").
	Project("catalog_version", "CatalogVersion").
	Project("primary_category", "Primary").
	Project("score", "Score").
	Project("band", "Band").
	Project("supporting", "Supporting").
	Project("weights", "Weights").
	Project("evidence", "Evidence").
	Project("config_version", "ConfigVersion").
	Project("model_version", "ModelVersion").
	Project("enrichment_degraded", "EnrichmentDegraded").
	Project("review_reasons", "ReviewReasons").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for assessment queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	AwardID        *uuid.UUID `json:"award_id,omitempty"`
	CatalogVersion *string    `json:"catalog_version,omitempty"`
	Primary        *string    `json:"primary_category,omitempty"`
	Band           *string    `json:"band,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("AwardID", f.AwardID).
		WhereEquals("CatalogVersion", f.CatalogVersion).
		WhereEquals("Primary", f.Primary).
		WhereEquals("Band", f.Band)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if raw := values.Get("award_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			f.AwardID = &id
		}
	}

	if v := values.Get("catalog_version"); v != "" {
		f.CatalogVersion = &v
	}

	if p := values.Get("primary_category"); p != "" {
		f.Primary = &p
	}

	if b := values.Get("band"); b != "" {
		f.Band = &b
	}

	return f
}

func scanAssessment(s repository.Scanner) (Assessment, error) {
	var a Assessment
	var supportingRaw, weightsRaw, evidenceRaw, reasonsRaw []byte

	err := s.Scan(
		&a.ID,
		&a.AwardID,
		&a.CatalogVersion,
		&a.Primary,
		&a.Score,
		&a.Band,
		&supportingRaw,
		&weightsRaw,
		&evidenceRaw,
		&a.ConfigVersion,
		&a.ModelVersion,
		&a.EnrichmentDegraded,
		&reasonsRaw,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if err != nil {
		return a, err
	}

	if err := unmarshalColumn(supportingRaw, &a.Supporting, "supporting"); err != nil {
		return a, err
	}
	if err := unmarshalColumn(weightsRaw, &a.Weights, "weights"); err != nil {
		return a, err
	}
	if err := unmarshalColumn(evidenceRaw, &a.Evidence, "evidence"); err != nil {
		return a, err
	}
	if err := unmarshalColumn(reasonsRaw, &a.ReviewReasons, "review_reasons"); err != nil {
		return a, err
	}

	return a, nil
}

func unmarshalColumn(raw []byte, dst any, column string) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal %s: %w", column, err)
	}
	return nil
}
