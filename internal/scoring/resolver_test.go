package scoring

import (
	"math"
	"strings"
	"testing"
)

func TestResolveTieBreak(t *testing.T) {
	r := NewResolver(testConfig(t), nil)

	tests := []struct {
		name    string
		blended map[string]float64
		rules   map[string]CategoryScore
		want    string
	}{
		{
			"higher score wins",
			map[string]float64{"a": 60, "b": 80},
			nil,
			"b",
		},
		{
			"prior breaks score tie",
			map[string]float64{"alpha": 83, "beta": 83},
			map[string]CategoryScore{"beta": {Prior: 5}},
			"beta",
		},
		{
			"lexicographic id breaks remaining tie",
			map[string]float64{"beta": 83, "alpha": 83},
			nil,
			"alpha",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := r.Resolve(tc.blended, tc.rules, FeatureVector{})
			if out.Primary != tc.want {
				t.Errorf("primary = %s, want %s", out.Primary, tc.want)
			}
		})
	}
}

func TestResolveBands(t *testing.T) {
	r := NewResolver(testConfig(t), nil)

	tests := []struct {
		score float64
		want  Band
	}{
		{90, BandHigh},
		{70, BandHigh},
		{55, BandMedium},
		{40, BandMedium},
		{10, BandLow},
	}

	for _, tc := range tests {
		out := r.Resolve(map[string]float64{"x": tc.score}, nil, FeatureVector{})
		if out.Band != tc.want {
			t.Errorf("score %g: band = %s, want %s", tc.score, out.Band, tc.want)
		}
	}
}

func TestResolveNoneSentinel(t *testing.T) {
	r := NewResolver(testConfig(t), nil)

	out := r.Resolve(map[string]float64{"x": 0, "y": 0}, nil, FeatureVector{})

	if out.Primary != CategoryNone {
		t.Errorf("primary = %s, want %s", out.Primary, CategoryNone)
	}
	if out.Band != BandNone {
		t.Errorf("band = %s, want %s", out.Band, BandNone)
	}
	if out.Weights[CategoryNone] != 1 {
		t.Errorf("none weight = %g, want 1", out.Weights[CategoryNone])
	}
}

func TestResolveWeightConservation(t *testing.T) {
	r := NewResolver(testConfig(t), nil)

	out := r.Resolve(map[string]float64{
		"a": 80,
		"b": 45,
		"c": 30,
		"d": 10,
	}, nil, FeatureVector{})

	var total float64
	for _, w := range out.Weights {
		total += w
	}
	if math.Abs(total-1) > 1e-3 {
		t.Errorf("full weight vector sums to %g, want 1", total)
	}

	// Reported weights: the primary's implicit share plus the supporting
	// weights must also conserve.
	reported := 80.0 / (80 + 45 + 30)
	for _, sc := range out.Supporting {
		reported += sc.Weight
	}
	if math.Abs(reported-1) > 1e-3 {
		t.Errorf("reported weights sum to %g, want 1", reported)
	}
}

func TestResolveSupportingFloorAndCap(t *testing.T) {
	cfg := testConfig(t)
	r := NewResolver(cfg, nil)

	out := r.Resolve(map[string]float64{
		"primary": 90,
		"s1":      60,
		"s2":      50,
		"s3":      40,
		"s4":      30,
		"below":   10,
	}, nil, FeatureVector{})

	if len(out.Supporting) != cfg.MaxSupporting {
		t.Fatalf("supporting count = %d, want %d", len(out.Supporting), cfg.MaxSupporting)
	}
	for _, sc := range out.Supporting {
		if sc.Category == "below" {
			t.Error("category below the supporting floor was reported")
		}
	}
	if out.Supporting[0].Category != "s1" {
		t.Errorf("supporting not ordered by score: first = %s", out.Supporting[0].Category)
	}
}

func TestEvidenceLimitsAndTruncation(t *testing.T) {
	r := NewResolver(testConfig(t), nil)

	longTerm := strings.Repeat("polymer ", 80)
	cs := CategoryScore{
		Signals: []Signal{
			{Kind: SignalCoreKeyword, Term: longTerm, Source: SourceAbstract, Points: 15},
			{Kind: SignalCoreKeyword, Term: "b", Source: SourceAbstract, Points: 15},
			{Kind: SignalRelatedKeyword, Term: "c", Source: SourceKeywords, Points: 5},
			{Kind: SignalRelatedKeyword, Term: "d", Source: SourceKeywords, Points: 5},
		},
	}

	out := r.Resolve(
		map[string]float64{"x": 90},
		map[string]CategoryScore{"x": cs},
		FeatureVector{},
	)

	if len(out.Evidence) != maxEvidencePerCategory {
		t.Fatalf("evidence count = %d, want %d", len(out.Evidence), maxEvidencePerCategory)
	}
	for _, ev := range out.Evidence {
		if n := len(strings.Fields(ev.Statement)); n > maxStatementWords {
			t.Errorf("statement has %d words, cap is %d", n, maxStatementWords)
		}
	}
}

func TestEvidenceExcludesNegativeSignals(t *testing.T) {
	r := NewResolver(testConfig(t), nil)

	cs := CategoryScore{
		Signals: []Signal{
			{Kind: SignalCoreKeyword, Term: "core", Source: SourceAbstract, Points: 15},
			{Kind: SignalNegativeKeyword, Term: "neg", Source: SourceAbstract, Points: -20},
		},
	}

	out := r.Resolve(
		map[string]float64{"x": 50},
		map[string]CategoryScore{"x": cs},
		FeatureVector{},
	)

	for _, ev := range out.Evidence {
		if ev.Rationale == string(SignalNegativeKeyword) {
			t.Error("negative signal rendered as supporting evidence")
		}
	}
}
