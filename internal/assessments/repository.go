package assessments

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/awards"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/enrichment"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/scoring"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/taxonomy"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/pagination"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/query"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/repository"
)

const assessmentColumns = `id, award_id, catalog_version, primary_category, score, band,
	supporting, weights, evidence, config_version, model_version,
	enrichment_degraded, review_reasons, created_at, updated_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	engine     *scoring.Engine
	awards     awards.System
	catalogs   taxonomy.System
}

// New creates an assessment repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
	engine *scoring.Engine,
	awardSys awards.System,
	catalogSys taxonomy.System,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "assessments"),
		pagination: pagination,
		engine:     engine,
		awards:     awardSys,
		catalogs:   catalogSys,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Assessment], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Primary", "CatalogVersion")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count assessments: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAssessment)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAssessment)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) History(ctx context.Context, awardID uuid.UUID) ([]Assessment, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM assessments WHERE award_id = $1 ORDER BY created_at DESC, catalog_version DESC",
		assessmentColumns,
	)

	items, err := repository.QueryMany(ctx, r.db, q, []any{awardID}, scanAssessment)
	if err != nil {
		return nil, fmt.Errorf("query assessment history: %w", err)
	}
	return items, nil
}

func (r *repo) Assess(ctx context.Context, cmd AssessCommand) (*Assessment, error) {
	if cmd.AwardID == uuid.Nil {
		return nil, fmt.Errorf("%w: award_id required", ErrInvalidRequest)
	}

	award, err := r.awards.Find(ctx, cmd.AwardID)
	if err != nil {
		return nil, err
	}

	catalog, err := r.catalogs.Resolve(ctx, cmd.CatalogVersion)
	if err != nil {
		return nil, err
	}

	result := r.engine.Classify(ctx, recordFromAward(award), catalog)
	if result.Err != nil {
		return nil, result.Err
	}

	return r.persist(ctx, catalog.Version(), result)
}

func (r *repo) AssessBatch(ctx context.Context, cmd BatchCommand) (*BatchResult, error) {
	if len(cmd.AwardIDs) == 0 {
		return nil, fmt.Errorf("%w: award_ids required", ErrInvalidRequest)
	}

	catalog, err := r.catalogs.Resolve(ctx, cmd.CatalogVersion)
	if err != nil {
		return nil, err
	}

	found, err := r.awards.FindMany(ctx, cmd.AwardIDs)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{
		CatalogVersion: catalog.Version(),
		Requested:      len(cmd.AwardIDs),
	}

	byID := make(map[uuid.UUID]*awards.Award, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	records := make([]scoring.Record, 0, len(found))
	seen := make(map[uuid.UUID]struct{}, len(cmd.AwardIDs))
	for _, id := range cmd.AwardIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		award, ok := byID[id]
		if !ok {
			batch.Failed++
			batch.Failures = append(batch.Failures, BatchFailure{
				AwardID: id,
				Error:   awards.ErrNotFound.Error(),
			})
			continue
		}
		records = append(records, recordFromAward(award))
	}

	for _, result := range r.engine.ClassifyBatch(ctx, records, catalog) {
		if result.Err != nil {
			batch.Failed++
			batch.Failures = append(batch.Failures, BatchFailure{
				AwardID: result.Record.AwardID,
				Error:   result.Err.Error(),
			})
			continue
		}

		if _, err := r.persist(ctx, catalog.Version(), result); err != nil {
			batch.Failed++
			batch.Failures = append(batch.Failures, BatchFailure{
				AwardID: result.Record.AwardID,
				Error:   err.Error(),
			})
			continue
		}
		batch.Assessed++
	}

	r.logger.Info("batch assessed",
		"catalog_version", batch.CatalogVersion,
		"requested", batch.Requested,
		"assessed", batch.Assessed,
		"failed", batch.Failed,
	)
	return batch, nil
}

// persist upserts the classification result. The unique key on
// (award_id, catalog_version) makes re-assessment under the same catalog
// refresh the row while a new catalog version appends.
func (r *repo) persist(ctx context.Context, catalogVersion string, result scoring.Result) (*Assessment, error) {
	supportingJSON, err := json.Marshal(result.Outcome.Supporting)
	if err != nil {
		return nil, fmt.Errorf("marshal supporting: %w", err)
	}
	weightsJSON, err := json.Marshal(result.Outcome.Weights)
	if err != nil {
		return nil, fmt.Errorf("marshal weights: %w", err)
	}
	evidenceJSON, err := json.Marshal(result.Outcome.Evidence)
	if err != nil {
		return nil, fmt.Errorf("marshal evidence: %w", err)
	}

	reasons := make([]string, 0, len(result.Reviews))
	for _, reason := range result.Reviews {
		reasons = append(reasons, string(reason))
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return nil, fmt.Errorf("marshal review_reasons: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO assessments(
			id, award_id, catalog_version, primary_category, score, band,
			supporting, weights, evidence, config_version, model_version,
			enrichment_degraded, review_reasons
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (award_id, catalog_version) DO UPDATE SET
			primary_category = EXCLUDED.primary_category,
			score = EXCLUDED.score,
			band = EXCLUDED.band,
			supporting = EXCLUDED.supporting,
			weights = EXCLUDED.weights,
			evidence = EXCLUDED.evidence,
			config_version = EXCLUDED.config_version,
			model_version = EXCLUDED.model_version,
			enrichment_degraded = EXCLUDED.enrichment_degraded,
			review_reasons = EXCLUDED.review_reasons,
			updated_at = now()
		RETURNING %s`, assessmentColumns)

	insertArgs := []any{
		uuid.New(),
		result.Record.AwardID,
		catalogVersion,
		result.Outcome.Primary,
		result.Outcome.Score,
		string(result.Outcome.Band),
		supportingJSON,
		weightsJSON,
		evidenceJSON,
		r.engine.ConfigVersion(),
		r.engine.ModelVersion(),
		result.EnrichmentFailed,
		reasonsJSON,
	}

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Assessment, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanAssessment)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("award assessed",
		"award_id", a.AwardID,
		"catalog_version", a.CatalogVersion,
		"primary", a.Primary,
		"score", a.Score,
		"band", a.Band,
	)
	return &a, nil
}

func recordFromAward(a *awards.Award) scoring.Record {
	rec := scoring.Record{
		AwardID:  a.ID,
		Agency:   a.Agency,
		Branch:   a.Branch,
		Title:    a.Title,
		Abstract: a.Abstract,
		Keywords: a.Keywords,
	}

	if a.HasSolicitation() {
		rec.Enrichment = &enrichment.Key{
			Source:     *a.SolicitationSource,
			DocumentID: *a.SolicitationID,
		}
	}
	return rec
}
