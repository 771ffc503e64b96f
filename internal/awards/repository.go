package awards

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/pagination"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/query"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/repository"
)

const awardColumns = `id, award_number, agency, branch, title, abstract, keywords,
	amount_cents, award_date, controlled, solicitation_source, solicitation_id, ingested_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an award repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "awards"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Award], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Abstract", "AwardNumber")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count awards: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAward)
	if err != nil {
		return nil, fmt.Errorf("query awards: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Award, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAward)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) FindMany(ctx context.Context, ids []uuid.UUID) ([]Award, error) {
	if len(ids) == 0 {
		return []Award{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	q := fmt.Sprintf(
		"SELECT %s FROM awards WHERE id IN (%s) ORDER BY id",
		awardColumns, strings.Join(placeholders, ", "),
	)

	items, err := repository.QueryMany(ctx, r.db, q, args, scanAward)
	if err != nil {
		return nil, fmt.Errorf("query awards by ids: %w", err)
	}
	return items, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Award, error) {
	if err := validateCreate(cmd); err != nil {
		return nil, err
	}

	keywordsJSON, err := json.Marshal(emptyIfNil(cmd.Keywords))
	if err != nil {
		return nil, fmt.Errorf("marshal keywords: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO awards(
			id, award_number, agency, branch, title, abstract, keywords,
			amount_cents, award_date, controlled, solicitation_source, solicitation_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s`, awardColumns)

	insertArgs := []any{
		uuid.New(),
		cmd.AwardNumber,
		cmd.Agency,
		cmd.Branch,
		cmd.Title,
		cmd.Abstract,
		keywordsJSON,
		cmd.AmountCents,
		cmd.AwardDate,
		cmd.Controlled,
		cmd.SolicitationSource,
		cmd.SolicitationID,
	}

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Award, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanAward)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("award ingested",
		"id", a.ID,
		"award_number", a.AwardNumber,
		"agency", a.Agency,
	)
	return &a, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM awards WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("award deleted", "id", id)
	return nil
}

func validateCreate(cmd CreateCommand) error {
	if strings.TrimSpace(cmd.AwardNumber) == "" {
		return fmt.Errorf("%w: award_number required", ErrInvalidAward)
	}
	if strings.TrimSpace(cmd.Agency) == "" {
		return fmt.Errorf("%w: agency required", ErrInvalidAward)
	}
	if strings.TrimSpace(cmd.Title) == "" {
		return fmt.Errorf("%w: title required", ErrInvalidAward)
	}
	if cmd.AmountCents < 0 {
		return fmt.Errorf("%w: amount_cents must be non-negative", ErrInvalidAward)
	}
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
