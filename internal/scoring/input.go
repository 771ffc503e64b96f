package scoring

import (
	"strings"

	"github.com/google/uuid"
)

// Source tags identify where a matched signal or excerpt came from.
const (
	SourceAbstract      = "abstract"
	SourceKeywords      = "keywords"
	SourceSolicitation  = "solicitation"
	SourceReviewerNotes = "reviewer_notes"
)

// Input is the scorer-facing view of one award record plus any enrichment
// text. Scorers treat it as immutable; building one per record keeps
// parallel evaluation free of shared state.
type Input struct {
	AwardID          uuid.UUID
	Agency           string
	Branch           string
	Title            string
	Abstract         string
	Keywords         []string
	Enrichment       string
	EnrichmentFailed bool
}

// textSource pairs a source tag with its lowercased text for matching.
type textSource struct {
	tag  string
	text string
}

// sources returns the record's matchable text sources in a fixed order.
// Empty sources are included with empty text so indices stay stable.
func (in *Input) sources() []textSource {
	return []textSource{
		{SourceAbstract, strings.ToLower(strings.TrimSpace(in.Title + " " + in.Abstract))},
		{SourceKeywords, strings.ToLower(strings.Join(in.Keywords, " "))},
		{SourceSolicitation, strings.ToLower(in.Enrichment)},
	}
}

// combinedText joins every source for co-occurrence matching.
func (in *Input) combinedText() string {
	srcs := in.sources()
	parts := make([]string, 0, len(srcs))
	for _, s := range srcs {
		if s.text != "" {
			parts = append(parts, s.text)
		}
	}
	return strings.Join(parts, " ")
}

// missingText reports whether the record carries no classifiable text.
func (in *Input) missingText() bool {
	return strings.TrimSpace(in.Abstract) == "" && len(in.Keywords) == 0
}
