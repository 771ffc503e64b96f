// Package scoring implements the applicability scoring engine: a hybrid
// classifier blending a configuration-driven rule interpreter with a
// calibrated statistical model, resolved into auditable assessments.
// All scorers are pure functions over immutable inputs; the engine is the
// only component that touches shared state (the enrichment cache).
package scoring

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/taxonomy"
)

// Config is the externally supplied scoring configuration document.
// Behavior of the rule engine is entirely data-driven: keyword weights,
// context rules, and organizational priors live here, never in code.
type Config struct {
	Version    string           `yaml:"version"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Weights    RuleWeights      `yaml:"weights"`
	Bands      BandThresholds   `yaml:"bands"`

	// SupportingFloor is the minimum blended score for a category to be
	// reported as supporting. Distinct from, and typically below, the
	// band thresholds.
	SupportingFloor float64 `yaml:"supporting_floor"`
	MaxSupporting   int     `yaml:"max_supporting"`

	// RuleCeiling scales raw rule scores to [0,100]: a raw score at or
	// above the ceiling normalizes to 100.
	RuleCeiling float64 `yaml:"rule_ceiling"`

	// HybridRuleWeight is the convex blend weight w in
	// hybrid = w*rule_norm + (1-w)*ml_scaled.
	HybridRuleWeight float64 `yaml:"hybrid_rule_weight"`

	// Categories extends the catalog's per-category keyword lists.
	Categories map[string]KeywordSet `yaml:"categories"`

	ContextRules []ContextRule `yaml:"context_rules"`

	// Priors maps organization (agency, or agency/branch for a finer
	// sub-unit) to per-category boosts. The "*" category key is a
	// wildcard boost applied to every category.
	Priors map[string]map[string]int `yaml:"priors"`
}

// VectorizerConfig controls feature extraction for the statistical path.
type VectorizerConfig struct {
	AbstractWeight   float64  `yaml:"abstract_weight"`
	KeywordWeight    float64  `yaml:"keyword_weight"`
	EnrichmentWeight float64  `yaml:"enrichment_weight"`
	NGramMax         int      `yaml:"ngram_max"`
	StopWords        []string `yaml:"stop_words"`
}

// RuleWeights sets the points awarded per keyword match. NegativePenalty
// must dominate a single core match so one negative phrase suppresses a
// lone false-positive signal.
type RuleWeights struct {
	Core            int `yaml:"core"`
	Related         int `yaml:"related"`
	NegativePenalty int `yaml:"negative_penalty"`
}

// BandThresholds derives the classification band from the primary score:
// High when score >= High, Medium when score >= Medium, otherwise Low.
type BandThresholds struct {
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
}

// KeywordSet augments a category's catalog keyword lists.
type KeywordSet struct {
	Core     []string `yaml:"core"`
	Related  []string `yaml:"related"`
	Negative []string `yaml:"negative"`
}

// ContextRule awards a boost when every keyword in its set co-occurs in
// the record's combined text.
type ContextRule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
	Boost    int      `yaml:"boost"`
}

// LoadConfig reads, parses, and structurally validates a scoring config
// document. Validation failures abort startup with a field-level error
// list; category references are checked later against the pinned catalog.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scoring config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates a YAML scoring config document.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg.loadDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) loadDefaults() {
	if c.Vectorizer.AbstractWeight == 0 {
		c.Vectorizer.AbstractWeight = 0.7
	}
	if c.Vectorizer.KeywordWeight == 0 {
		c.Vectorizer.KeywordWeight = 0.3
	}
	if c.Vectorizer.EnrichmentWeight == 0 {
		c.Vectorizer.EnrichmentWeight = 0.5
	}
	if c.Vectorizer.NGramMax == 0 {
		c.Vectorizer.NGramMax = 3
	}
	if c.Weights.Core == 0 {
		c.Weights.Core = 15
	}
	if c.Weights.Related == 0 {
		c.Weights.Related = 5
	}
	if c.Weights.NegativePenalty == 0 {
		c.Weights.NegativePenalty = 20
	}
	if c.Bands.High == 0 {
		c.Bands.High = 70
	}
	if c.Bands.Medium == 0 {
		c.Bands.Medium = 40
	}
	if c.SupportingFloor == 0 {
		c.SupportingFloor = 25
	}
	if c.MaxSupporting == 0 {
		c.MaxSupporting = 3
	}
	if c.RuleCeiling == 0 {
		c.RuleCeiling = 50
	}
	if c.HybridRuleWeight == 0 {
		c.HybridRuleWeight = 0.6
	}
}

func (c *Config) validate() error {
	verr := &ValidationError{}

	if c.Version == "" {
		verr.add("version", "required")
	}
	if c.Vectorizer.NGramMax < 1 || c.Vectorizer.NGramMax > 5 {
		verr.add("vectorizer.ngram_max", fmt.Sprintf("must be within [1,5]: %d", c.Vectorizer.NGramMax))
	}
	if c.Vectorizer.AbstractWeight < 0 || c.Vectorizer.KeywordWeight < 0 || c.Vectorizer.EnrichmentWeight < 0 {
		verr.add("vectorizer", "source weights must be non-negative")
	}
	if c.Weights.Core <= 0 {
		verr.add("weights.core", "must be positive")
	}
	if c.Weights.Related <= 0 {
		verr.add("weights.related", "must be positive")
	}
	if c.Weights.NegativePenalty <= c.Weights.Core {
		verr.add("weights.negative_penalty", "must exceed the core weight so a negative match suppresses a single core match")
	}
	if c.Bands.High <= c.Bands.Medium {
		verr.add("bands", fmt.Sprintf("high (%g) must exceed medium (%g)", c.Bands.High, c.Bands.Medium))
	}
	if c.Bands.High > 100 || c.Bands.Medium < 0 {
		verr.add("bands", "thresholds must lie within [0,100]")
	}
	if c.SupportingFloor < 0 || c.SupportingFloor > 100 {
		verr.add("supporting_floor", "must lie within [0,100]")
	}
	if c.MaxSupporting < 0 {
		verr.add("max_supporting", "must be non-negative")
	}
	if c.RuleCeiling <= 0 {
		verr.add("rule_ceiling", "must be positive")
	}
	if c.HybridRuleWeight < 0 || c.HybridRuleWeight > 1 {
		verr.add("hybrid_rule_weight", "must lie within [0,1]")
	}

	for i, rule := range c.ContextRules {
		if rule.Category == "" {
			verr.add(fmt.Sprintf("context_rules[%d].category", i), "required")
		}
		if len(rule.Keywords) == 0 {
			verr.add(fmt.Sprintf("context_rules[%d].keywords", i), "requires at least one keyword")
		}
		if rule.Boost <= 0 {
			verr.add(fmt.Sprintf("context_rules[%d].boost", i), "must be positive")
		}
	}

	return verr.orNil()
}

// Sanitize returns a copy of the config with references to category ids
// absent from the catalog removed. Unresolved references are logged as
// warnings, never fatal: configs routinely lead or trail catalog versions.
func (c *Config) Sanitize(catalog *taxonomy.Catalog, logger *slog.Logger) *Config {
	out := *c

	out.Categories = make(map[string]KeywordSet, len(c.Categories))
	for id, set := range c.Categories {
		if !catalog.Has(id) {
			logger.Warn("scoring config references unknown category",
				"category", id,
				"catalog_version", catalog.Version(),
				"section", "categories",
			)
			continue
		}
		out.Categories[id] = set
	}

	out.ContextRules = make([]ContextRule, 0, len(c.ContextRules))
	for _, rule := range c.ContextRules {
		if !catalog.Has(rule.Category) {
			logger.Warn("scoring config references unknown category",
				"category", rule.Category,
				"catalog_version", catalog.Version(),
				"section", "context_rules",
			)
			continue
		}
		out.ContextRules = append(out.ContextRules, rule)
	}

	out.Priors = make(map[string]map[string]int, len(c.Priors))
	for org, boosts := range c.Priors {
		kept := make(map[string]int, len(boosts))
		for id, boost := range boosts {
			if id != PriorWildcard && !catalog.Has(id) {
				logger.Warn("scoring config references unknown category",
					"category", id,
					"catalog_version", catalog.Version(),
					"section", "priors",
					"organization", org,
				)
				continue
			}
			kept[id] = boost
		}
		if len(kept) > 0 {
			out.Priors[org] = kept
		}
	}

	return &out
}
