package scoring

import (
	"math"
	"testing"
)

func TestBlendRuleNormalization(t *testing.T) {
	b := NewBlender(testConfig(t))

	tests := []struct {
		name string
		raw  int
		want float64
	}{
		{"half ceiling", 25, 50},
		{"at ceiling", 50, 100},
		{"above ceiling caps", 80, 100},
		{"zero", 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			blended := b.Blend(map[string]CategoryScore{"x": {Raw: tc.raw}}, nil)
			if blended["x"] != tc.want {
				t.Errorf("blend = %g, want %g", blended["x"], tc.want)
			}
		})
	}
}

func TestBlendConvexCombination(t *testing.T) {
	b := NewBlender(testConfig(t))

	blended := b.Blend(
		map[string]CategoryScore{"x": {Raw: 25}},
		map[string]float64{"x": 0.9},
	)

	// 0.6*50 + 0.4*90
	want := 66.0
	if math.Abs(blended["x"]-want) > 1e-9 {
		t.Errorf("blend = %g, want %g", blended["x"], want)
	}
}

func TestBlendSingleScorerFallback(t *testing.T) {
	b := NewBlender(testConfig(t))

	blended := b.Blend(
		map[string]CategoryScore{"rules_only": {Raw: 25}},
		map[string]float64{"model_only": 0.5},
	)

	if blended["rules_only"] != 50 {
		t.Errorf("rule-only category = %g, want full rule score 50", blended["rules_only"])
	}
	if blended["model_only"] != 50 {
		t.Errorf("model-only category = %g, want full scaled probability 50", blended["model_only"])
	}
}

func TestBlendStableRounding(t *testing.T) {
	b := NewBlender(testConfig(t))

	rules := map[string]CategoryScore{"x": {Raw: 17}}
	probs := map[string]float64{"x": 1.0 / 3.0}

	first := b.Blend(rules, probs)
	second := b.Blend(rules, probs)
	if first["x"] != second["x"] {
		t.Error("identical inputs blended to different scores")
	}
	if first["x"] != round4(first["x"]) {
		t.Errorf("score %g not fixed to four decimals", first["x"])
	}
}
