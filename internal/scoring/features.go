package scoring

import (
	"slices"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
)

// FeatureVector is a sparse weighted term vector over word n-grams.
type FeatureVector struct {
	Terms map[string]float64
}

// SortedTerms returns the vector's terms in lexicographic order, giving
// downstream consumers a deterministic iteration order.
func (v FeatureVector) SortedTerms() []string {
	terms := make([]string, 0, len(v.Terms))
	for t := range v.Terms {
		terms = append(terms, t)
	}
	slices.Sort(terms)
	return terms
}

// FeatureBuilder combines weighted text sources into a single normalized
// sparse vector. Building is deterministic: identical inputs always yield
// identical vectors, independent of catalog version.
type FeatureBuilder struct {
	cfg  VectorizerConfig
	stop map[string]struct{}
}

// NewFeatureBuilder creates a FeatureBuilder from vectorizer configuration.
func NewFeatureBuilder(cfg VectorizerConfig) *FeatureBuilder {
	stop := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &FeatureBuilder{cfg: cfg, stop: stop}
}

// Build extracts unigram through n-gram terms from each text source,
// accumulating per-source weights, then L2-normalizes the result.
// Missing sources contribute zero weight rather than erroring.
func (b *FeatureBuilder) Build(in Input) FeatureVector {
	terms := make(map[string]float64)

	b.accumulate(terms, in.Title+" "+in.Abstract, b.cfg.AbstractWeight)
	b.accumulate(terms, strings.Join(in.Keywords, " "), b.cfg.KeywordWeight)
	b.accumulate(terms, in.Enrichment, b.cfg.EnrichmentWeight)

	normalize(terms)
	return FeatureVector{Terms: terms}
}

func (b *FeatureBuilder) accumulate(terms map[string]float64, text string, weight float64) {
	if weight <= 0 {
		return
	}

	tokens := b.tokenize(text)
	for n := 1; n <= b.cfg.NGramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms[strings.Join(tokens[i:i+n], " ")] += weight
		}
	}
}

// tokenize lowercases, splits on non-alphanumeric runes, and drops
// stop words and single-character fragments.
func (b *FeatureBuilder) tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stopped := b.stop[f]; stopped {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// normalize scales the vector to unit L2 norm. Values are gathered in
// sorted-term order so floating-point accumulation is reproducible.
func normalize(terms map[string]float64) {
	if len(terms) == 0 {
		return
	}

	sorted := make([]string, 0, len(terms))
	for t := range terms {
		sorted = append(sorted, t)
	}
	slices.Sort(sorted)

	values := make([]float64, len(sorted))
	for i, t := range sorted {
		values[i] = terms[t]
	}

	norm := floats.Norm(values, 2)
	if norm == 0 {
		return
	}

	for _, t := range sorted {
		terms[t] /= norm
	}
}
