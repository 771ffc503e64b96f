package taxonomy

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// catalogDocument is the YAML representation of a catalog version.
type catalogDocument struct {
	Version       string             `yaml:"version"`
	EffectiveDate string             `yaml:"effective_date"`
	Categories    []categoryDocument `yaml:"categories"`
}

type categoryDocument struct {
	ID         string           `yaml:"id"`
	Name       string           `yaml:"name"`
	Definition string           `yaml:"definition"`
	Parent     string           `yaml:"parent"`
	Status     string           `yaml:"status"`
	Keywords   keywordsDocument `yaml:"keywords"`
}

type keywordsDocument struct {
	Core     []string `yaml:"core"`
	Related  []string `yaml:"related"`
	Negative []string `yaml:"negative"`
}

// ParseDocument parses a YAML catalog document into an immutable Catalog.
func ParseDocument(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	var effective time.Time
	if doc.EffectiveDate != "" {
		parsed, err := time.Parse("2006-01-02", doc.EffectiveDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid effective_date %q", ErrInvalidCatalog, doc.EffectiveDate)
		}
		effective = parsed
	}

	categories := make([]Category, 0, len(doc.Categories))
	for _, c := range doc.Categories {
		cat := Category{
			ID:         c.ID,
			Name:       c.Name,
			Definition: c.Definition,
			Status:     CategoryStatus(c.Status),
			Core:       c.Keywords.Core,
			Related:    c.Keywords.Related,
			Negative:   c.Keywords.Negative,
		}
		if c.Parent != "" {
			parent := c.Parent
			cat.ParentID = &parent
		}
		categories = append(categories, cat)
	}

	return NewCatalog(doc.Version, effective, categories)
}

// LoadDocument reads and parses a YAML catalog document from disk.
func LoadDocument(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog document: %w", err)
	}
	return ParseDocument(data)
}
