package export

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/scoring"
)

func loadTestModel(t *testing.T, yaml string) *scoring.LinearModel {
	t.Helper()

	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}

	model, err := scoring.LoadModel(path)
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	return model
}

func testEngine(t *testing.T, modelYAML string) *scoring.Engine {
	t.Helper()

	cfg, err := scoring.ParseConfig([]byte(`version: "2026.08"`))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}

	var model scoring.Model
	if modelYAML != "" {
		model = loadTestModel(t, modelYAML)
	}

	return scoring.NewEngine(cfg, model, nil, nil, nil, slog.New(slog.DiscardHandler), scoring.Options{})
}

func TestMethodologyRuleOnly(t *testing.T) {
	r := &repo{engine: testEngine(t, "")}

	note := r.methodology("cet-2026.1")
	if !strings.Contains(note, "rule-based") {
		t.Errorf("note = %q, want rule-based wording without a model", note)
	}
	if !strings.Contains(note, "cet-2026.1") || !strings.Contains(note, "2026.08") {
		t.Errorf("note = %q, missing versions", note)
	}
}

func TestMethodologyHybrid(t *testing.T) {
	r := &repo{engine: testEngine(t, "version: m1\nclasses: {}\n")}

	note := r.methodology("cet-2026.1")
	if !strings.Contains(note, "hybrid") || !strings.Contains(note, "m1") {
		t.Errorf("note = %q, want hybrid wording with model version", note)
	}
}
