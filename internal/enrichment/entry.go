// Package enrichment implements the solicitation enrichment cache: a
// permanent keyed store of supplementary text fetched from external
// sources, with single-record lazy fetch and deduplicated batch fetch
// orchestration. Entries never expire; removal happens only through
// explicit invalidation.
package enrichment

import (
	"time"

	"github.com/google/uuid"
)

// Key identifies an enrichment entry by its external source and document.
// Multiple award records may share one key; the cache guarantees the
// document is fetched at most once and applied to every sharing record.
type Key struct {
	Source     string `json:"source"`
	DocumentID string `json:"document_id"`
}

// Valid reports whether both key components are populated.
func (k Key) Valid() bool {
	return k.Source != "" && k.DocumentID != ""
}

// String renders the key for logging and in-flight deduplication.
func (k Key) String() string {
	return k.Source + "/" + k.DocumentID
}

// Entry holds retrieved supplementary text for a (source, document) key.
// Entries are read-only after creation.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	Source      string    `json:"source"`
	DocumentID  string    `json:"document_id"`
	Text        string    `json:"text"`
	Keywords    []string  `json:"keywords"`
	PageCount   *int      `json:"page_count,omitempty"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// Key returns the entry's cache key.
func (e *Entry) Key() Key {
	return Key{Source: e.Source, DocumentID: e.DocumentID}
}

// Result reports the outcome of one key within a batch fetch.
// Exactly one of Entry or Err is set.
type Result struct {
	Entry *Entry
	Err   error
}

// InvalidateCommand selects entries for explicit deletion. Nil fields
// are ignored; at least one selector must be set.
type InvalidateCommand struct {
	Source     *string    `json:"source,omitempty"`
	DocumentID *string    `json:"document_id,omitempty"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
}

// Empty reports whether no selector is set.
func (c InvalidateCommand) Empty() bool {
	return c.Source == nil && c.DocumentID == nil && c.From == nil && c.To == nil
}

// Stats reports cumulative cache counters for the stats endpoint.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Fetches     int64 `json:"fetches"`
	Failures    int64 `json:"failures"`
	Invalidated int64 `json:"invalidated"`
}
