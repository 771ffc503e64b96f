package scoring

import (
	"fmt"
	"math"
	"os"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// Model is the statistical scorer contract: a calibrated per-category
// probability over the shared feature vector. Implementations must be
// deterministic for a fixed model version and vector; anything satisfying
// that is pluggable here.
type Model interface {
	Version() string

	// Score returns a probability in [0,1] for each category the model
	// was trained on. Categories outside the model are simply absent.
	Score(v FeatureVector) map[string]float64

	// TopFeature returns the vector term contributing the most positive
	// weight to the category's score, for evidence generation.
	TopFeature(category string, v FeatureVector) (term string, contribution float64, ok bool)
}

// classParams holds one category's fitted coefficients. Calibration
// follows Platt scaling: probability = sigmoid(a*z + b) over the raw
// linear score z.
type classParams struct {
	Intercept    float64            `yaml:"intercept"`
	Weights      map[string]float64 `yaml:"weights"`
	CalibrationA float64            `yaml:"calibration_a"`
	CalibrationB float64            `yaml:"calibration_b"`
}

// LinearModel is a file-backed calibrated linear classifier fit offline
// on historical labeled records.
type LinearModel struct {
	version string
	classes map[string]classParams
	ids     []string
}

type modelDocument struct {
	Version string                 `yaml:"version"`
	Classes map[string]classParams `yaml:"classes"`
}

// LoadModel reads a fitted model document from disk.
func LoadModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	var doc modelDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if doc.Version == "" {
		return nil, fmt.Errorf("%w: model document missing version", ErrInvalidConfig)
	}

	ids := make([]string, 0, len(doc.Classes))
	for id := range doc.Classes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return &LinearModel{
		version: doc.Version,
		classes: doc.Classes,
		ids:     ids,
	}, nil
}

func (m *LinearModel) Version() string {
	return m.version
}

func (m *LinearModel) Score(v FeatureVector) map[string]float64 {
	probs := make(map[string]float64, len(m.ids))
	terms := v.SortedTerms()

	for _, id := range m.ids {
		params := m.classes[id]

		// Gather aligned weight/value slices in sorted-term order so the
		// dot product is reproducible across runs.
		xs := make([]float64, 0, len(terms))
		ws := make([]float64, 0, len(terms))
		for _, t := range terms {
			w, ok := params.Weights[t]
			if !ok {
				continue
			}
			xs = append(xs, v.Terms[t])
			ws = append(ws, w)
		}

		z := params.Intercept + floats.Dot(xs, ws)
		probs[id] = clamp01(sigmoid(params.calibrate(z)))
	}

	return probs
}

func (m *LinearModel) TopFeature(category string, v FeatureVector) (string, float64, bool) {
	params, ok := m.classes[category]
	if !ok {
		return "", 0, false
	}

	var (
		best             string
		bestContribution float64
	)

	for _, t := range v.SortedTerms() {
		w, ok := params.Weights[t]
		if !ok {
			continue
		}
		if contribution := w * v.Terms[t]; contribution > bestContribution {
			best = t
			bestContribution = contribution
		}
	}

	return best, bestContribution, best != ""
}

func (p classParams) calibrate(z float64) float64 {
	if p.CalibrationA == 0 {
		return z
	}
	return p.CalibrationA*z + p.CalibrationB
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func clamp01(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
