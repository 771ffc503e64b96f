// Package awards implements the grant award record domain.
// Awards arrive pre-validated from the ingestion pipeline; this package
// provides storage, querying, and the read surface the classification
// engine consumes. Award fields are immutable once ingested; enrichment
// and assessments link to awards rather than mutating them.
package awards

import (
	"time"

	"github.com/google/uuid"
)

// Award represents an ingested grant-award record.
type Award struct {
	ID                 uuid.UUID `json:"id"`
	AwardNumber        string    `json:"award_number"`
	Agency             string    `json:"agency"`
	Branch             string    `json:"branch"`
	Title              string    `json:"title"`
	Abstract           string    `json:"abstract"`
	Keywords           []string  `json:"keywords"`
	AmountCents        int64     `json:"amount_cents"`
	AwardDate          time.Time `json:"award_date"`
	Controlled         bool      `json:"controlled"`
	SolicitationSource *string   `json:"solicitation_source,omitempty"`
	SolicitationID     *string   `json:"solicitation_id,omitempty"`
	IngestedAt         time.Time `json:"ingested_at"`
}

// HasSolicitation reports whether the award references a solicitation
// document eligible for enrichment.
func (a *Award) HasSolicitation() bool {
	return a.SolicitationSource != nil && *a.SolicitationSource != "" &&
		a.SolicitationID != nil && *a.SolicitationID != ""
}

// CreateCommand carries a validated award supplied by the ingestion
// collaborator. The core performs no raw-field normalization.
type CreateCommand struct {
	AwardNumber        string    `json:"award_number"`
	Agency             string    `json:"agency"`
	Branch             string    `json:"branch"`
	Title              string    `json:"title"`
	Abstract           string    `json:"abstract"`
	Keywords           []string  `json:"keywords"`
	AmountCents        int64     `json:"amount_cents"`
	AwardDate          time.Time `json:"award_date"`
	Controlled         bool      `json:"controlled"`
	SolicitationSource *string   `json:"solicitation_source,omitempty"`
	SolicitationID     *string   `json:"solicitation_id,omitempty"`
}
