package taxonomy

import (
	"context"
	"time"

	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/lifecycle"
)

// VersionInfo summarizes a stored catalog version.
type VersionInfo struct {
	Version       string    `json:"version"`
	EffectiveDate time.Time `json:"effective_date"`
	CategoryCount int       `json:"category_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// System defines the public contract for the catalog version store.
type System interface {
	Handler() *Handler

	// Versions lists stored catalog versions, newest first.
	Versions(ctx context.Context) ([]VersionInfo, error)

	// Resolve returns the immutable catalog for the given version id.
	// An empty version resolves to the latest version by effective date.
	// Resolved catalogs are cached for the life of the process.
	Resolve(ctx context.Context, version string) (*Catalog, error)

	// Create persists a new catalog version. Existing versions are never
	// modified; creating a duplicate version returns ErrVersionExists.
	Create(ctx context.Context, catalog *Catalog) error

	// Start registers a startup hook that seeds the configured catalog
	// document if its version is not yet stored.
	Start(lc *lifecycle.Coordinator) error
}
