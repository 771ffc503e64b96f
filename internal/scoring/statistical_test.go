package scoring

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const testModelYAML = `
version: "model-test.1"
classes:
  biotech:
    intercept: -1.0
    weights:
      "gene therapy": 4.0
      "crispr": 2.0
  quantum:
    intercept: -2.0
    weights:
      "qubit": 5.0
`

func testModel(t *testing.T) *LinearModel {
	t.Helper()

	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(path, []byte(testModelYAML), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}

	model, err := LoadModel(path)
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	return model
}

func TestLinearModelScore(t *testing.T) {
	model := testModel(t)

	vec := FeatureVector{Terms: map[string]float64{
		"gene therapy": 0.8,
		"vector":       0.6,
	}}

	probs := model.Score(vec)

	// z = -1 + 4*0.8 = 2.2
	want := 1 / (1 + math.Exp(-2.2))
	if math.Abs(probs["biotech"]-want) > 1e-9 {
		t.Errorf("biotech prob = %g, want %g", probs["biotech"], want)
	}

	// No matching terms: probability collapses to sigmoid(intercept).
	wantQuantum := 1 / (1 + math.Exp(2.0))
	if math.Abs(probs["quantum"]-wantQuantum) > 1e-9 {
		t.Errorf("quantum prob = %g, want %g", probs["quantum"], wantQuantum)
	}
}

func TestLinearModelTopFeature(t *testing.T) {
	model := testModel(t)

	vec := FeatureVector{Terms: map[string]float64{
		"gene therapy": 0.3,
		"crispr":       0.9,
	}}

	term, contribution, ok := model.TopFeature("biotech", vec)
	if !ok {
		t.Fatal("expected a top feature")
	}
	// crispr: 2.0*0.9 = 1.8 beats gene therapy: 4.0*0.3 = 1.2
	if term != "crispr" {
		t.Errorf("top feature = %s, want crispr", term)
	}
	if math.Abs(contribution-1.8) > 1e-9 {
		t.Errorf("contribution = %g, want 1.8", contribution)
	}
}

func TestLinearModelTopFeatureUnknownCategory(t *testing.T) {
	model := testModel(t)

	if _, _, ok := model.TopFeature("hypersonics", FeatureVector{}); ok {
		t.Error("unknown category returned a feature")
	}
}

func TestLoadModelRequiresVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(path, []byte("classes: {}\n"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}

	if _, err := LoadModel(path); err == nil {
		t.Error("expected error for model without version")
	}
}
