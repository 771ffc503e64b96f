// Package taxonomy implements the versioned technology category catalog.
// Catalog versions are immutable: a new version is appended alongside prior
// versions and consumers pin the version id they score against.
package taxonomy

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// CategoryStatus marks whether a category participates in scoring.
type CategoryStatus string

const (
	StatusActive  CategoryStatus = "active"
	StatusRetired CategoryStatus = "retired"
)

// Category is a single technology area within a catalog version.
type Category struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Definition string         `json:"definition"`
	ParentID   *string        `json:"parent_id,omitempty"`
	Status     CategoryStatus `json:"status"`
	Core       []string       `json:"core"`
	Related    []string       `json:"related"`
	Negative   []string       `json:"negative"`
}

// Catalog is an immutable, versioned set of categories.
type Catalog struct {
	version    string
	effective  time.Time
	categories map[string]Category
	ids        []string
}

// NewCatalog builds a catalog from a category list, validating ids and
// parent references. The category set is copied; callers cannot mutate
// the catalog afterward.
func NewCatalog(version string, effective time.Time, categories []Category) (*Catalog, error) {
	if strings.TrimSpace(version) == "" {
		return nil, fmt.Errorf("%w: empty version", ErrInvalidCatalog)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: version %s has no categories", ErrInvalidCatalog, version)
	}

	byID := make(map[string]Category, len(categories))
	ids := make([]string, 0, len(categories))

	for _, c := range categories {
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("%w: category with empty id", ErrInvalidCatalog)
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate category id %s", ErrInvalidCatalog, c.ID)
		}
		if c.Status == "" {
			c.Status = StatusActive
		}
		if c.Status != StatusActive && c.Status != StatusRetired {
			return nil, fmt.Errorf("%w: category %s has invalid status %q", ErrInvalidCatalog, c.ID, c.Status)
		}
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	for _, c := range byID {
		if c.ParentID != nil {
			if _, ok := byID[*c.ParentID]; !ok {
				return nil, fmt.Errorf("%w: category %s references unknown parent %s", ErrInvalidCatalog, c.ID, *c.ParentID)
			}
		}
	}

	slices.Sort(ids)

	return &Catalog{
		version:    version,
		effective:  effective,
		categories: byID,
		ids:        ids,
	}, nil
}

// Version returns the catalog version id.
func (c *Catalog) Version() string {
	return c.version
}

// EffectiveDate returns when the catalog version took effect.
func (c *Catalog) EffectiveDate() time.Time {
	return c.effective
}

// Category returns the category with the given id.
func (c *Catalog) Category(id string) (Category, bool) {
	cat, ok := c.categories[id]
	return cat, ok
}

// Has reports whether the catalog contains the given category id.
func (c *Catalog) Has(id string) bool {
	_, ok := c.categories[id]
	return ok
}

// IDs returns all category ids in lexicographic order.
func (c *Catalog) IDs() []string {
	return slices.Clone(c.ids)
}

// ActiveIDs returns active category ids in lexicographic order.
// Retired categories remain resolvable for historical assessments
// but are excluded from new scoring runs.
func (c *Catalog) ActiveIDs() []string {
	active := make([]string, 0, len(c.ids))
	for _, id := range c.ids {
		if c.categories[id].Status == StatusActive {
			active = append(active, id)
		}
	}
	return active
}

// Categories returns all categories in id order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.categories[id])
	}
	return out
}

// Len returns the number of categories in the catalog.
func (c *Catalog) Len() int {
	return len(c.ids)
}
