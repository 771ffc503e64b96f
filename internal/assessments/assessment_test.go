package assessments

import (
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/awards"
)

func TestRecordFromAward(t *testing.T) {
	source := "sbir"
	docID := "SOL-9"

	award := &awards.Award{
		ID:                 uuid.New(),
		Agency:             "DOD",
		Branch:             "DARPA",
		Title:              "Autonomous Swarm Coordination",
		Abstract:           "multi-agent reinforcement learning",
		Keywords:           []string{"autonomy"},
		SolicitationSource: &source,
		SolicitationID:     &docID,
	}

	rec := recordFromAward(award)

	if rec.AwardID != award.ID || rec.Agency != "DOD" || rec.Branch != "DARPA" {
		t.Error("identity fields not carried over")
	}
	if rec.Enrichment == nil {
		t.Fatal("solicitation reference dropped")
	}
	if rec.Enrichment.Source != "sbir" || rec.Enrichment.DocumentID != "SOL-9" {
		t.Errorf("enrichment key = %+v", rec.Enrichment)
	}
}

func TestRecordFromAwardWithoutSolicitation(t *testing.T) {
	rec := recordFromAward(&awards.Award{ID: uuid.New(), Agency: "NSF"})
	if rec.Enrichment != nil {
		t.Error("enrichment key set for award without solicitation")
	}
}

func TestFiltersFromQuery(t *testing.T) {
	awardID := uuid.New()

	values := url.Values{}
	values.Set("award_id", awardID.String())
	values.Set("catalog_version", "cet-2026.1")
	values.Set("band", "high")

	f := FiltersFromQuery(values)

	if f.AwardID == nil || *f.AwardID != awardID {
		t.Error("award_id filter not extracted")
	}
	if f.CatalogVersion == nil || *f.CatalogVersion != "cet-2026.1" {
		t.Error("catalog_version filter not extracted")
	}
	if f.Band == nil || *f.Band != "high" {
		t.Error("band filter not extracted")
	}
	if f.Primary != nil {
		t.Error("absent parameter produced a filter")
	}
}

func TestFiltersFromQueryIgnoresBadUUID(t *testing.T) {
	values := url.Values{}
	values.Set("award_id", "not-a-uuid")

	if f := FiltersFromQuery(values); f.AwardID != nil {
		t.Error("invalid uuid produced a filter")
	}
}
