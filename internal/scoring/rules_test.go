package scoring

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/taxonomy"
)

const testConfigYAML = `
version: "test.1"
weights:
  core: 15
  related: 5
  negative_penalty: 20
bands:
  high: 70
  medium: 40
supporting_floor: 25
max_supporting: 3
rule_ceiling: 50
hybrid_rule_weight: 0.6
context_rules:
  - category: medical_devices
    keywords: ["ai", "diagnostic"]
    boost: 20
priors:
  DOD:
    quantum: 5
  DOD/DARPA:
    artificial_intelligence: 10
    "*": 2
`

func testConfig(t *testing.T) *Config {
	t.Helper()

	cfg, err := ParseConfig([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func testCatalog(t *testing.T) *taxonomy.Catalog {
	t.Helper()

	parent := "biotech"
	catalog, err := taxonomy.NewCatalog(
		"cet-test.1",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		[]taxonomy.Category{
			{
				ID:   "artificial_intelligence",
				Name: "Artificial Intelligence",
				Core: []string{"machine learning"},
			},
			{
				ID:   "biotech",
				Name: "Biotechnology",
				Core: []string{"gene therapy"},
			},
			{
				ID:       "medical_devices",
				Name:     "Medical Devices",
				ParentID: &parent,
				Core:     []string{"implantable device"},
				Negative: []string{"veterinary"},
			},
			{
				ID:      "quantum",
				Name:    "Quantum Information Science",
				Core:    []string{"qubit"},
				Related: []string{"entanglement"},
			},
		},
	)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return catalog
}

func TestRuleScorerKeywordAndContext(t *testing.T) {
	scorer := NewRuleScorer(testConfig(t))
	catalog := testCatalog(t)

	in := Input{
		Title:    "Gene Therapy Delivery Platform",
		Abstract: "A gene therapy vector paired with an ai diagnostic tool.",
	}

	scores := scorer.Score(in, catalog)

	if got := scores["biotech"].Raw; got < 15 {
		t.Errorf("biotech raw = %d, want >= 15", got)
	}
	if got := scores["medical_devices"].Context; got != 20 {
		t.Errorf("medical_devices context = %d, want 20", got)
	}

	fired := false
	for _, sig := range scores["medical_devices"].Signals {
		if sig.Kind == SignalContextRule {
			fired = true
		}
	}
	if !fired {
		t.Error("medical_devices missing context rule signal")
	}
}

func TestRuleScorerNegativeSuppression(t *testing.T) {
	scorer := NewRuleScorer(testConfig(t))
	catalog := testCatalog(t)

	in := Input{Abstract: "An implantable device for veterinary practices."}

	scores := scorer.Score(in, catalog)
	if got := scores["medical_devices"].Keyword; got != 0 {
		t.Errorf("keyword subtotal = %d, want 0 after negative suppression", got)
	}
}

func TestRuleScorerNegativeDoesNotUndercutContext(t *testing.T) {
	scorer := NewRuleScorer(testConfig(t))
	catalog := testCatalog(t)

	// Keyword subtotal clamps to zero before context boosts apply: the
	// negative match must not drag a fired context rule below its boost.
	in := Input{Abstract: "veterinary ai diagnostic screening"}

	scores := scorer.Score(in, catalog)
	if got := scores["medical_devices"].Raw; got != 20 {
		t.Errorf("raw = %d, want 20 from the context rule alone", got)
	}
}

func TestRuleScorerContextRuleMonotonic(t *testing.T) {
	catalog := testCatalog(t)
	cfg := testConfig(t)

	without := *cfg
	without.ContextRules = nil

	in := Input{
		Title:    "Implantable Cardiac Monitor",
		Abstract: "An implantable device with an ai diagnostic companion.",
	}

	withRule := NewRuleScorer(cfg).Score(in, catalog)
	base := NewRuleScorer(&without).Score(in, catalog)

	for _, id := range catalog.ActiveIDs() {
		if withRule[id].Raw < base[id].Raw {
			t.Errorf("category %s raw dropped from %d to %d with the context rule configured",
				id, base[id].Raw, withRule[id].Raw)
		}
	}

	boost := cfg.ContextRules[0].Boost
	if got, want := withRule["medical_devices"].Raw, base["medical_devices"].Raw+boost; got != want {
		t.Errorf("medical_devices raw = %d, want %d (base %d plus fired boost %d)",
			got, want, base["medical_devices"].Raw, boost)
	}
}

func TestRuleScorerPriorPrecedence(t *testing.T) {
	scorer := NewRuleScorer(testConfig(t))
	catalog := testCatalog(t)

	tests := []struct {
		name     string
		agency   string
		branch   string
		category string
		want     int
	}{
		{"branch-qualified prior plus wildcard", "DOD", "DARPA", "artificial_intelligence", 12},
		{"wildcard shadows the agency prior", "DOD", "DARPA", "quantum", 2},
		{"agency prior without branch", "DOD", "", "quantum", 5},
		{"unknown organization", "NSF", "", "quantum", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := Input{Agency: tc.agency, Branch: tc.branch}
			scores := scorer.Score(in, catalog)
			if got := scores[tc.category].Prior; got != tc.want {
				t.Errorf("prior = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRuleScorerDeterministic(t *testing.T) {
	scorer := NewRuleScorer(testConfig(t))
	catalog := testCatalog(t)

	in := Input{
		Agency:   "DOD",
		Branch:   "DARPA",
		Title:    "Qubit Control",
		Abstract: "Superconducting qubit arrays with entanglement distribution and machine learning calibration.",
		Keywords: []string{"quantum computing", "machine learning"},
	}

	first := scorer.Score(in, catalog)
	second := scorer.Score(in, catalog)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different score maps")
	}
}

func TestRuleScorerCoversEveryActiveCategory(t *testing.T) {
	scorer := NewRuleScorer(testConfig(t))
	catalog := testCatalog(t)

	scores := scorer.Score(Input{Abstract: "unrelated agricultural study"}, catalog)
	if len(scores) != len(catalog.ActiveIDs()) {
		t.Fatalf("scored %d categories, want %d", len(scores), len(catalog.ActiveIDs()))
	}
	for id, cs := range scores {
		if cs.Raw != 0 {
			t.Errorf("category %s raw = %d, want 0", id, cs.Raw)
		}
	}
}

func TestSanitizeDropsUnknownReferences(t *testing.T) {
	cfg := testConfig(t)
	cfg.ContextRules = append(cfg.ContextRules, ContextRule{
		Category: "hypersonics",
		Keywords: []string{"scramjet"},
		Boost:    10,
	})
	cfg.Priors["NASA"] = map[string]int{"hypersonics": 5}

	clean := cfg.Sanitize(testCatalog(t), slog.New(slog.DiscardHandler))

	for _, rule := range clean.ContextRules {
		if rule.Category == "hypersonics" {
			t.Error("unknown context rule category survived sanitize")
		}
	}
	if _, ok := clean.Priors["NASA"]; ok {
		t.Error("prior map with only unknown categories survived sanitize")
	}
	if clean.Priors["DOD/DARPA"][PriorWildcard] != 2 {
		t.Error("wildcard prior dropped by sanitize")
	}
}
