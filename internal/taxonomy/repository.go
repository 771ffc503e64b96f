package taxonomy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/lifecycle"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/repository"
)

type repo struct {
	db       *sql.DB
	logger   *slog.Logger
	seedPath string

	mu    sync.RWMutex
	cache map[string]*Catalog
}

// New creates a catalog version store implementing the System interface.
// seedPath optionally names a YAML catalog document loaded at startup.
func New(db *sql.DB, logger *slog.Logger, seedPath string) System {
	return &repo{
		db:       db,
		logger:   logger.With("system", "taxonomy"),
		seedPath: seedPath,
		cache:    make(map[string]*Catalog),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Versions(ctx context.Context) ([]VersionInfo, error) {
	const q = `
		SELECT v.version, v.effective_date, v.created_at,
			   (SELECT COUNT(*) FROM taxonomy_categories c WHERE c.version = v.version)
		FROM taxonomy_versions v
		ORDER BY v.effective_date DESC, v.version DESC`

	infos, err := repository.QueryMany(ctx, r.db, q, nil, scanVersionInfo)
	if err != nil {
		return nil, fmt.Errorf("query catalog versions: %w", err)
	}
	return infos, nil
}

func (r *repo) Resolve(ctx context.Context, version string) (*Catalog, error) {
	if version == "" {
		latest, err := r.latestVersion(ctx)
		if err != nil {
			return nil, err
		}
		version = latest
	}

	r.mu.RLock()
	if catalog, ok := r.cache[version]; ok {
		r.mu.RUnlock()
		return catalog, nil
	}
	r.mu.RUnlock()

	catalog, err := r.load(ctx, version)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[version] = catalog
	r.mu.Unlock()

	return catalog, nil
}

func (r *repo) Create(ctx context.Context, catalog *Catalog) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		const insertVersion = `
			INSERT INTO taxonomy_versions (version, effective_date)
			VALUES ($1, $2)`

		if _, err := tx.ExecContext(ctx, insertVersion, catalog.Version(), catalog.EffectiveDate()); err != nil {
			return struct{}{}, fmt.Errorf("insert catalog version: %w", err)
		}

		const insertCategory = `
			INSERT INTO taxonomy_categories (
				version, id, name, definition, parent_id, status,
				core_keywords, related_keywords, negative_keywords
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

		for _, cat := range catalog.Categories() {
			core, related, negative, err := marshalKeywords(cat)
			if err != nil {
				return struct{}{}, err
			}

			_, err = tx.ExecContext(ctx, insertCategory,
				catalog.Version(), cat.ID, cat.Name, cat.Definition,
				cat.ParentID, string(cat.Status), core, related, negative,
			)
			if err != nil {
				return struct{}{}, fmt.Errorf("insert category %s: %w", cat.ID, err)
			}
		}

		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrVersionNotFound, ErrVersionExists)
	}

	r.logger.Info("catalog version created",
		"version", catalog.Version(),
		"categories", catalog.Len(),
	)
	return nil
}

func (r *repo) Start(lc *lifecycle.Coordinator) error {
	if r.seedPath == "" {
		return nil
	}

	lc.OnStartup(func() {
		catalog, err := LoadDocument(r.seedPath)
		if err != nil {
			r.logger.Error("catalog seed load failed", "path", r.seedPath, "error", err)
			return
		}

		err = r.Create(lc.Context(), catalog)
		switch {
		case errors.Is(err, ErrVersionExists):
			r.logger.Info("catalog version already stored", "version", catalog.Version())
		case err != nil:
			r.logger.Error("catalog seed failed", "version", catalog.Version(), "error", err)
		default:
			r.logger.Info("catalog version seeded", "version", catalog.Version())
		}
	})

	return nil
}

func (r *repo) latestVersion(ctx context.Context) (string, error) {
	const q = `
		SELECT version FROM taxonomy_versions
		ORDER BY effective_date DESC, version DESC
		LIMIT 1`

	var version string
	if err := r.db.QueryRowContext(ctx, q).Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNoVersions
		}
		return "", fmt.Errorf("query latest catalog version: %w", err)
	}
	return version, nil
}

func (r *repo) load(ctx context.Context, version string) (*Catalog, error) {
	const versionQ = `
		SELECT effective_date FROM taxonomy_versions WHERE version = $1`

	var effective time.Time
	if err := r.db.QueryRowContext(ctx, versionQ, version).Scan(&effective); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVersionNotFound
		}
		return nil, fmt.Errorf("query catalog version %s: %w", version, err)
	}

	const categoriesQ = `
		SELECT id, name, definition, parent_id, status,
			   core_keywords, related_keywords, negative_keywords
		FROM taxonomy_categories
		WHERE version = $1
		ORDER BY id`

	categories, err := repository.QueryMany(ctx, r.db, categoriesQ, []any{version}, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("query categories for %s: %w", version, err)
	}

	return NewCatalog(version, effective, categories)
}

func marshalKeywords(cat Category) (core, related, negative []byte, err error) {
	if core, err = json.Marshal(emptyIfNil(cat.Core)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal core keywords for %s: %w", cat.ID, err)
	}
	if related, err = json.Marshal(emptyIfNil(cat.Related)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal related keywords for %s: %w", cat.ID, err)
	}
	if negative, err = json.Marshal(emptyIfNil(cat.Negative)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal negative keywords for %s: %w", cat.ID, err)
	}
	return core, related, negative, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanVersionInfo(s repository.Scanner) (VersionInfo, error) {
	var info VersionInfo
	err := s.Scan(&info.Version, &info.EffectiveDate, &info.CreatedAt, &info.CategoryCount)
	return info, err
}

func scanCategory(s repository.Scanner) (Category, error) {
	var (
		cat      Category
		status   string
		core     []byte
		related  []byte
		negative []byte
	)

	err := s.Scan(
		&cat.ID, &cat.Name, &cat.Definition, &cat.ParentID, &status,
		&core, &related, &negative,
	)
	if err != nil {
		return cat, err
	}

	cat.Status = CategoryStatus(status)

	if err := json.Unmarshal(core, &cat.Core); err != nil {
		return cat, fmt.Errorf("unmarshal core keywords: %w", err)
	}
	if err := json.Unmarshal(related, &cat.Related); err != nil {
		return cat, fmt.Errorf("unmarshal related keywords: %w", err)
	}
	if err := json.Unmarshal(negative, &cat.Negative); err != nil {
		return cat, fmt.Errorf("unmarshal negative keywords: %w", err)
	}

	return cat, nil
}
