package awards

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/query"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "awards", "a").
	Project("id", "ID").
	Project("award_number", "AwardNumber").
	Project("agency", "Agency").
	Project("branch", "Branch").
	Project("title", "Title").
	Project("abstract", "Abstract").
	Project("keywords", "Keywords").
	Project("amount_cents", "AmountCents").
	Project("award_date", "AwardDate").
	Project("controlled", "Controlled").
	Project("solicitation_source", "SolicitationSource").
	Project("solicitation_id", "SolicitationID").
	Project("ingested_at", "IngestedAt")

var defaultSort = query.SortField{
	Field:      "AwardDate",
	Descending: true,
}

// Filters contains optional filtering criteria for award queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	Agency      *string `json:"agency,omitempty"`
	Branch      *string `json:"branch,omitempty"`
	AwardNumber *string `json:"award_number,omitempty"`
	Controlled  *bool   `json:"controlled,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Agency", f.Agency).
		WhereEquals("Branch", f.Branch).
		WhereEquals("AwardNumber", f.AwardNumber).
		WhereEquals("Controlled", f.Controlled)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if a := values.Get("agency"); a != "" {
		f.Agency = &a
	}

	if b := values.Get("branch"); b != "" {
		f.Branch = &b
	}

	if n := values.Get("award_number"); n != "" {
		f.AwardNumber = &n
	}

	switch values.Get("controlled") {
	case "true":
		t := true
		f.Controlled = &t
	case "false":
		fa := false
		f.Controlled = &fa
	}

	return f
}

func scanAward(s repository.Scanner) (Award, error) {
	var a Award
	var keywordsRaw []byte

	err := s.Scan(
		&a.ID,
		&a.AwardNumber,
		&a.Agency,
		&a.Branch,
		&a.Title,
		&a.Abstract,
		&keywordsRaw,
		&a.AmountCents,
		&a.AwardDate,
		&a.Controlled,
		&a.SolicitationSource,
		&a.SolicitationID,
		&a.IngestedAt,
	)

	if err != nil {
		return a, err
	}

	if len(keywordsRaw) > 0 {
		if err := json.Unmarshal(keywordsRaw, &a.Keywords); err != nil {
			return a, fmt.Errorf("unmarshal keywords: %w", err)
		}
	}

	if a.Keywords == nil {
		a.Keywords = []string{}
	}

	return a, nil
}
