// Package export renders stored assessments into the downstream reporting
// document: one row per award with the full normalized weight vector,
// plus aggregate totals and a methodology note. Awards flagged as
// controlled are excluded from row-level output but remain counted in
// the aggregates.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/scoring"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/taxonomy"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/repository"
)

// Row is one exportable assessment.
type Row struct {
	AwardID     uuid.UUID          `json:"award_id"`
	AwardNumber string             `json:"award_number"`
	Agency      string             `json:"agency"`
	Primary     string             `json:"primary_category"`
	Score       float64            `json:"score"`
	Band        string             `json:"band"`
	Weights     map[string]float64 `json:"weights"`
}

// Summary aggregates the full assessment set, controlled awards included.
type Summary struct {
	Total      int            `json:"total"`
	Controlled int            `json:"controlled"`
	Bands      map[string]int `json:"bands"`
	Categories map[string]int `json:"categories"`
}

// Document is the complete export payload for one catalog version.
type Document struct {
	CatalogVersion string    `json:"catalog_version"`
	GeneratedAt    time.Time `json:"generated_at"`
	Methodology    string    `json:"methodology"`
	Summary        Summary   `json:"summary"`
	Rows           []Row     `json:"rows"`
}

// System defines the public contract for export generation.
type System interface {
	Handler() *Handler

	// Build assembles the export document for a catalog version. An empty
	// version resolves to the latest stored catalog.
	Build(ctx context.Context, catalogVersion string) (*Document, error)
}

type repo struct {
	db       *sql.DB
	logger   *slog.Logger
	engine   *scoring.Engine
	catalogs taxonomy.System
}

// New creates an export builder implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, engine *scoring.Engine, catalogSys taxonomy.System) System {
	return &repo{
		db:       db,
		logger:   logger.With("system", "export"),
		engine:   engine,
		catalogs: catalogSys,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

// exportRecord carries the controlled flag alongside the row so the
// builder can aggregate before filtering.
type exportRecord struct {
	row        Row
	controlled bool
}

func (r *repo) Build(ctx context.Context, catalogVersion string) (*Document, error) {
	catalog, err := r.catalogs.Resolve(ctx, catalogVersion)
	if err != nil {
		return nil, err
	}

	const q = `
		SELECT s.award_id, a.award_number, a.agency, a.controlled,
			s.primary_category, s.score, s.band, s.weights
		FROM assessments s
		JOIN awards a ON a.id = s.award_id
		WHERE s.catalog_version = $1
		ORDER BY s.award_id`

	records, err := repository.QueryMany(ctx, r.db, q, []any{catalog.Version()}, scanExportRecord)
	if err != nil {
		return nil, fmt.Errorf("query export rows: %w", err)
	}

	doc := &Document{
		CatalogVersion: catalog.Version(),
		GeneratedAt:    time.Now().UTC(),
		Methodology:    r.methodology(catalog.Version()),
		Summary: Summary{
			Bands:      make(map[string]int),
			Categories: make(map[string]int),
		},
		Rows: make([]Row, 0, len(records)),
	}

	for _, rec := range records {
		doc.Summary.Total++
		doc.Summary.Bands[rec.row.Band]++
		doc.Summary.Categories[rec.row.Primary]++

		if rec.controlled {
			doc.Summary.Controlled++
			continue
		}
		doc.Rows = append(doc.Rows, rec.row)
	}

	r.logger.Info("export built",
		"catalog_version", doc.CatalogVersion,
		"total", doc.Summary.Total,
		"rows", len(doc.Rows),
		"controlled", doc.Summary.Controlled,
	)
	return doc, nil
}

func (r *repo) methodology(catalogVersion string) string {
	if modelVersion := r.engine.ModelVersion(); modelVersion != "" {
		return fmt.Sprintf(
			"hybrid rule and statistical classification; catalog %s, scoring config %s, model %s",
			catalogVersion, r.engine.ConfigVersion(), modelVersion,
		)
	}
	return fmt.Sprintf(
		"rule-based classification; catalog %s, scoring config %s",
		catalogVersion, r.engine.ConfigVersion(),
	)
}

func scanExportRecord(s repository.Scanner) (exportRecord, error) {
	var rec exportRecord
	var weightsRaw []byte

	err := s.Scan(
		&rec.row.AwardID,
		&rec.row.AwardNumber,
		&rec.row.Agency,
		&rec.controlled,
		&rec.row.Primary,
		&rec.row.Score,
		&rec.row.Band,
		&weightsRaw,
	)
	if err != nil {
		return rec, err
	}

	if len(weightsRaw) > 0 {
		if err := json.Unmarshal(weightsRaw, &rec.row.Weights); err != nil {
			return rec, fmt.Errorf("unmarshal weights: %w", err)
		}
	}

	return rec, nil
}
