package scoring

import (
	"math"
	"reflect"
	"testing"
)

func testVectorizer() VectorizerConfig {
	return VectorizerConfig{
		AbstractWeight:   0.7,
		KeywordWeight:    0.3,
		EnrichmentWeight: 0.5,
		NGramMax:         2,
		StopWords:        []string{"the", "and", "for"},
	}
}

func TestTokenizeFiltersStopWordsAndFragments(t *testing.T) {
	b := NewFeatureBuilder(testVectorizer())

	got := b.tokenize("The quantum-ready sensor, and a 5G link for DOD")
	want := []string{"quantum", "ready", "sensor", "5g", "link", "dod"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokenize = %v, want %v", got, want)
	}
}

func TestBuildUnitNorm(t *testing.T) {
	b := NewFeatureBuilder(testVectorizer())

	vec := b.Build(Input{
		Abstract: "gene therapy vector design",
		Keywords: []string{"gene therapy"},
	})

	var sumSquares float64
	for _, v := range vec.Terms {
		sumSquares += v * v
	}
	if math.Abs(sumSquares-1) > 1e-9 {
		t.Errorf("squared norm = %g, want 1", sumSquares)
	}
}

func TestBuildDeterministic(t *testing.T) {
	b := NewFeatureBuilder(testVectorizer())
	in := Input{
		Title:      "Autonomous Navigation",
		Abstract:   "machine learning guidance for orbital rendezvous",
		Keywords:   []string{"machine learning", "guidance"},
		Enrichment: "solicitation seeks autonomous navigation systems",
	}

	first := b.Build(in)
	second := b.Build(in)
	if !reflect.DeepEqual(first.Terms, second.Terms) {
		t.Error("identical inputs produced different vectors")
	}
}

func TestBuildMissingSources(t *testing.T) {
	b := NewFeatureBuilder(testVectorizer())

	vec := b.Build(Input{})
	if len(vec.Terms) != 0 {
		t.Errorf("empty input produced %d terms, want 0", len(vec.Terms))
	}
}

func TestBuildEnrichmentContributes(t *testing.T) {
	b := NewFeatureBuilder(testVectorizer())

	bare := b.Build(Input{Abstract: "sensor platform"})
	enriched := b.Build(Input{Abstract: "sensor platform", Enrichment: "hyperspectral imaging"})

	if _, ok := enriched.Terms["hyperspectral"]; !ok {
		t.Error("enrichment term missing from vector")
	}
	if _, ok := bare.Terms["hyperspectral"]; ok {
		t.Error("term appeared without enrichment text")
	}
}
