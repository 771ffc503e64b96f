package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvEngineCatalogPath           = "CETC_ENGINE_CATALOG_PATH"
	EnvEngineCatalogVersion        = "CETC_ENGINE_CATALOG_VERSION"
	EnvEngineScoringConfigPath     = "CETC_ENGINE_SCORING_CONFIG_PATH"
	EnvEngineModelPath             = "CETC_ENGINE_MODEL_PATH"
	EnvEngineWorkers               = "CETC_ENGINE_WORKERS"
	EnvEngineParallelThreshold     = "CETC_ENGINE_PARALLEL_THRESHOLD"
	EnvEngineEnrichmentConcurrency = "CETC_ENGINE_ENRICHMENT_CONCURRENCY"
	EnvEngineReviewThreshold       = "CETC_ENGINE_REVIEW_THRESHOLD"
)

// EngineConfig holds classification engine process parameters: configuration
// document locations and execution knobs. Scoring policy (band thresholds,
// rule weights, blend weight) lives in the scoring config document itself.
type EngineConfig struct {
	CatalogPath           string  `toml:"catalog_path"`
	CatalogVersion        string  `toml:"catalog_version"`
	ScoringConfigPath     string  `toml:"scoring_config_path"`
	ModelPath             string  `toml:"model_path"`
	Workers               int     `toml:"workers"`
	ParallelThreshold     int     `toml:"parallel_threshold"`
	EnrichmentConcurrency int     `toml:"enrichment_concurrency"`
	ReviewThreshold       float64 `toml:"review_threshold"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EngineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *EngineConfig) Merge(overlay *EngineConfig) {
	if overlay.CatalogPath != "" {
		c.CatalogPath = overlay.CatalogPath
	}
	if overlay.CatalogVersion != "" {
		c.CatalogVersion = overlay.CatalogVersion
	}
	if overlay.ScoringConfigPath != "" {
		c.ScoringConfigPath = overlay.ScoringConfigPath
	}
	if overlay.ModelPath != "" {
		c.ModelPath = overlay.ModelPath
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.ParallelThreshold != 0 {
		c.ParallelThreshold = overlay.ParallelThreshold
	}
	if overlay.EnrichmentConcurrency != 0 {
		c.EnrichmentConcurrency = overlay.EnrichmentConcurrency
	}
	if overlay.ReviewThreshold != 0 {
		c.ReviewThreshold = overlay.ReviewThreshold
	}
}

func (c *EngineConfig) loadDefaults() {
	if c.ScoringConfigPath == "" {
		c.ScoringConfigPath = "config/scoring.yaml"
	}
	if c.Workers == 0 {
		c.Workers = 8
	}
	if c.ParallelThreshold == 0 {
		c.ParallelThreshold = 10000
	}
	if c.EnrichmentConcurrency == 0 {
		c.EnrichmentConcurrency = 4
	}
	if c.ReviewThreshold == 0 {
		c.ReviewThreshold = 40
	}
}

func (c *EngineConfig) loadEnv() {
	if v := os.Getenv(EnvEngineCatalogPath); v != "" {
		c.CatalogPath = v
	}
	if v := os.Getenv(EnvEngineCatalogVersion); v != "" {
		c.CatalogVersion = v
	}
	if v := os.Getenv(EnvEngineScoringConfigPath); v != "" {
		c.ScoringConfigPath = v
	}
	if v := os.Getenv(EnvEngineModelPath); v != "" {
		c.ModelPath = v
	}
	if v := os.Getenv(EnvEngineWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv(EnvEngineParallelThreshold); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ParallelThreshold = n
		}
	}
	if v := os.Getenv(EnvEngineEnrichmentConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.EnrichmentConcurrency = n
		}
	}
	if v := os.Getenv(EnvEngineReviewThreshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.ReviewThreshold = f
		}
	}
}

func (c *EngineConfig) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive: %d", c.Workers)
	}
	if c.ParallelThreshold < 1 {
		return fmt.Errorf("parallel_threshold must be positive: %d", c.ParallelThreshold)
	}
	if c.EnrichmentConcurrency < 1 {
		return fmt.Errorf("enrichment_concurrency must be positive: %d", c.EnrichmentConcurrency)
	}
	if c.ReviewThreshold < 0 || c.ReviewThreshold > 100 {
		return fmt.Errorf("review_threshold must be within [0,100]: %g", c.ReviewThreshold)
	}
	return nil
}
