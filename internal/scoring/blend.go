package scoring

import "math"

// Blender combines rule and statistical scores into the blended
// per-category score on the [0,100] scale.
type Blender struct {
	ceiling    float64
	ruleWeight float64
}

// NewBlender creates a Blender from the configured rule ceiling and
// hybrid weight.
func NewBlender(cfg *Config) *Blender {
	return &Blender{
		ceiling:    cfg.RuleCeiling,
		ruleWeight: cfg.HybridRuleWeight,
	}
}

// Blend produces the final per-category scores. Rule scores normalize
// against a fixed ceiling so a raw score at or above it maps to 100;
// model probabilities scale by 100. When the model carries no opinion
// on a category (or no model is configured), the rule score stands
// alone, and vice versa.
func (b *Blender) Blend(rules map[string]CategoryScore, probs map[string]float64) map[string]float64 {
	blended := make(map[string]float64, len(rules))

	for id, rs := range rules {
		ruleNorm := b.normalizeRule(rs.Raw)

		prob, modeled := probs[id]
		if !modeled {
			blended[id] = round4(ruleNorm)
			continue
		}

		blended[id] = round4(b.ruleWeight*ruleNorm + (1-b.ruleWeight)*prob*100)
	}

	// Categories only the model knows about fall back to the scaled
	// probability alone, mirroring the rule-only fallback above.
	for id, prob := range probs {
		if _, ok := rules[id]; ok {
			continue
		}
		blended[id] = round4(prob * 100)
	}

	return blended
}

func (b *Blender) normalizeRule(raw int) float64 {
	norm := float64(raw) / b.ceiling * 100
	if norm > 100 {
		return 100
	}
	return norm
}

// round4 fixes scores to four decimal places so persisted values compare
// exactly across runs.
func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
