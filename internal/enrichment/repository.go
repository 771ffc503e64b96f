package enrichment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/repository"
)

// Store persists enrichment entries. The cache layers in-memory
// read-through and fetch deduplication on top of it.
type Store interface {
	Get(ctx context.Context, key Key) (*Entry, error)
	Put(ctx context.Context, entry Entry) (*Entry, error)
	Invalidate(ctx context.Context, cmd InvalidateCommand) (int64, error)
}

type store struct {
	db *sql.DB
}

// NewStore creates a postgres-backed enrichment entry store.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

const entryColumns = `id, source, document_id, text, keywords, page_count, retrieved_at`

func (s *store) Get(ctx context.Context, key Key) (*Entry, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM enrichment_entries WHERE source = $1 AND document_id = $2",
		entryColumns,
	)

	e, err := repository.QueryOne(ctx, s.db, q, []any{key.Source, key.DocumentID}, scanEntry)
	if err != nil {
		return nil, repository.MapError(err, ErrEntryNotFound, ErrEntryNotFound)
	}
	return &e, nil
}

func (s *store) Put(ctx context.Context, entry Entry) (*Entry, error) {
	keywordsJSON, err := json.Marshal(emptyIfNil(entry.Keywords))
	if err != nil {
		return nil, fmt.Errorf("marshal keywords: %w", err)
	}

	// Entries are immutable once fetched: a concurrent writer that lost the
	// race keeps the stored row rather than overwriting it.
	q := fmt.Sprintf(`
		INSERT INTO enrichment_entries (id, source, document_id, text, keywords, page_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source, document_id) DO UPDATE SET source = EXCLUDED.source
		RETURNING %s`, entryColumns)

	args := []any{
		uuid.New(),
		entry.Source,
		entry.DocumentID,
		entry.Text,
		keywordsJSON,
		entry.PageCount,
	}

	stored, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Entry, error) {
		return repository.QueryOne(ctx, tx, q, args, scanEntry)
	})
	if err != nil {
		return nil, fmt.Errorf("store enrichment entry %s: %w", entry.Key(), err)
	}

	return &stored, nil
}

func (s *store) Invalidate(ctx context.Context, cmd InvalidateCommand) (int64, error) {
	if cmd.Empty() {
		return 0, ErrEmptySelector
	}

	var (
		clauses []string
		args    []any
	)

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, clause+" $"+strconv.Itoa(len(args)))
	}

	if cmd.Source != nil {
		add("source =", *cmd.Source)
	}
	if cmd.DocumentID != nil {
		add("document_id =", *cmd.DocumentID)
	}
	if cmd.From != nil {
		add("retrieved_at >=", *cmd.From)
	}
	if cmd.To != nil {
		add("retrieved_at <=", *cmd.To)
	}

	q := "DELETE FROM enrichment_entries WHERE " + strings.Join(clauses, " AND ")

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("invalidate enrichment entries: %w", err)
	}

	return result.RowsAffected()
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var e Entry
	var keywordsRaw []byte

	err := s.Scan(
		&e.ID,
		&e.Source,
		&e.DocumentID,
		&e.Text,
		&keywordsRaw,
		&e.PageCount,
		&e.RetrievedAt,
	)
	if err != nil {
		return e, err
	}

	if len(keywordsRaw) > 0 {
		if err := json.Unmarshal(keywordsRaw, &e.Keywords); err != nil {
			return e, fmt.Errorf("unmarshal keywords: %w", err)
		}
	}

	if e.Keywords == nil {
		e.Keywords = []string{}
	}

	return e, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
