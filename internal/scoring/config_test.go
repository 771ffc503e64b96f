package scoring

import (
	"errors"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`version: "v1"`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Weights.Core != 15 || cfg.Weights.Related != 5 || cfg.Weights.NegativePenalty != 20 {
		t.Errorf("unexpected default weights: %+v", cfg.Weights)
	}
	if cfg.Bands.High != 70 || cfg.Bands.Medium != 40 {
		t.Errorf("unexpected default bands: %+v", cfg.Bands)
	}
	if cfg.RuleCeiling != 50 {
		t.Errorf("rule ceiling = %g, want 50", cfg.RuleCeiling)
	}
	if cfg.HybridRuleWeight != 0.6 {
		t.Errorf("hybrid weight = %g, want 0.6", cfg.HybridRuleWeight)
	}
	if cfg.Vectorizer.NGramMax != 3 {
		t.Errorf("ngram max = %d, want 3", cfg.Vectorizer.NGramMax)
	}
}

func TestParseConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			"missing version",
			`weights: {core: 15}`,
			"version",
		},
		{
			"negative penalty too weak",
			"version: v1\nweights: {core: 15, related: 5, negative_penalty: 10}",
			"weights.negative_penalty",
		},
		{
			"inverted bands",
			"version: v1\nbands: {high: 30, medium: 40}",
			"bands",
		},
		{
			"context rule without keywords",
			"version: v1\ncontext_rules: [{category: x, boost: 5}]",
			"context_rules[0].keywords",
		},
		{
			"hybrid weight out of range",
			"version: v1\nhybrid_rule_weight: 1.5",
			"hybrid_rule_weight",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error does not wrap ErrInvalidConfig: %v", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("error %q does not name field %s", err, tc.field)
			}
		})
	}
}

func TestParseConfigAggregatesFieldErrors(t *testing.T) {
	_, err := ParseConfig([]byte("weights: {core: 15, related: 5, negative_penalty: 10}\nbands: {high: 30, medium: 40}"))
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error is not a ValidationError: %T", err)
	}
	if len(verr.Fields) < 3 {
		t.Errorf("reported %d field errors, want all of them", len(verr.Fields))
	}
}
