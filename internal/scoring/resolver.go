package scoring

import (
	"fmt"
	"slices"
	"strings"
)

// CategoryNone is the sentinel primary category for a record that was
// evaluated but matched nothing. Distinct from "not evaluated".
const CategoryNone = "none"

// Band is the classification band derived from the primary score.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
	BandNone   Band = "none"
)

// SupportingCategory is a non-primary category reported above the
// supporting floor, with its share of the reported weight.
type SupportingCategory struct {
	Category string  `json:"category"`
	Weight   float64 `json:"weight"`
}

// EvidenceStatement is one rendered justification for a reported
// category. Statement is hard-capped at fifty words.
type EvidenceStatement struct {
	Category  string `json:"category"`
	Source    string `json:"source"`
	Rationale string `json:"rationale"`
	Location  string `json:"location"`
	Statement string `json:"statement"`
}

// Outcome is the resolved classification for one record under one
// catalog version.
type Outcome struct {
	Primary    string
	Score      float64
	Band       Band
	Supporting []SupportingCategory

	// Weights is the full normalized weight vector over every category
	// carrying signal, summing to 1.0. A record with no signal carries
	// the none sentinel at full weight so the vector still conserves.
	Weights map[string]float64

	Evidence []EvidenceStatement
}

const (
	maxEvidencePerCategory = 3
	maxStatementWords      = 50
)

// Resolver turns blended scores into an Outcome: primary selection with
// deterministic tie-breaking, supporting categories, bands, normalized
// weights, and evidence statements.
type Resolver struct {
	cfg   *Config
	model Model
}

// NewResolver creates a Resolver. model may be nil when no statistical
// model is configured; evidence then draws from rule signals alone.
func NewResolver(cfg *Config, model Model) *Resolver {
	return &Resolver{cfg: cfg, model: model}
}

// Resolve selects the primary and supporting categories from the blended
// score map. Ties break by blended score, then raw organizational-prior
// contribution, then lexicographically smallest category id, so identical
// inputs always resolve identically.
func (r *Resolver) Resolve(
	blended map[string]float64,
	rules map[string]CategoryScore,
	vec FeatureVector,
) Outcome {
	ranked := r.rank(blended, rules)
	if len(ranked) == 0 {
		return Outcome{
			Primary: CategoryNone,
			Band:    BandNone,
			Weights: map[string]float64{CategoryNone: 1},
		}
	}

	primary := ranked[0]
	out := Outcome{
		Primary: primary,
		Score:   blended[primary],
		Band:    r.band(blended[primary]),
		Weights: normalizedWeights(blended, ranked),
	}

	reported := []string{primary}
	for _, id := range ranked[1:] {
		if len(reported) > r.cfg.MaxSupporting {
			break
		}
		if blended[id] < r.cfg.SupportingFloor {
			break
		}
		reported = append(reported, id)
	}

	// Reported weights renormalize over the primary + supporting set so
	// they sum to 1.0 independently of the full vector.
	reportedTotal := 0.0
	for _, id := range reported {
		reportedTotal += blended[id]
	}
	for _, id := range reported[1:] {
		out.Supporting = append(out.Supporting, SupportingCategory{
			Category: id,
			Weight:   round4(blended[id] / reportedTotal),
		})
	}

	for _, id := range reported {
		out.Evidence = append(out.Evidence, r.evidence(id, rules[id], vec)...)
	}

	return out
}

// rank returns category ids carrying positive blended score, ordered by
// the tie-break chain.
func (r *Resolver) rank(blended map[string]float64, rules map[string]CategoryScore) []string {
	ids := make([]string, 0, len(blended))
	for id, score := range blended {
		if score > 0 {
			ids = append(ids, id)
		}
	}

	slices.SortFunc(ids, func(a, b string) int {
		if blended[a] != blended[b] {
			if blended[a] > blended[b] {
				return -1
			}
			return 1
		}
		if pa, pb := rules[a].Prior, rules[b].Prior; pa != pb {
			if pa > pb {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})

	return ids
}

func (r *Resolver) band(score float64) Band {
	switch {
	case score >= r.cfg.Bands.High:
		return BandHigh
	case score >= r.cfg.Bands.Medium:
		return BandMedium
	default:
		return BandLow
	}
}

// normalizedWeights spreads the blended mass across every scored category
// so the full vector sums to 1.0.
func normalizedWeights(blended map[string]float64, ranked []string) map[string]float64 {
	total := 0.0
	for _, id := range ranked {
		total += blended[id]
	}

	weights := make(map[string]float64, len(ranked))
	for _, id := range ranked {
		weights[id] = round4(blended[id] / total)
	}
	return weights
}

// evidence renders up to three statements for a reported category: the
// strongest rule signals first, then the dominant model feature if slots
// remain.
func (r *Resolver) evidence(id string, cs CategoryScore, vec FeatureVector) []EvidenceStatement {
	signals := make([]Signal, 0, len(cs.Signals))
	for _, sig := range cs.Signals {
		if sig.Kind == SignalNegativeKeyword {
			continue
		}
		signals = append(signals, sig)
	}
	slices.SortStableFunc(signals, func(a, b Signal) int {
		return b.Points - a.Points
	})

	statements := make([]EvidenceStatement, 0, maxEvidencePerCategory)
	for _, sig := range signals {
		if len(statements) == maxEvidencePerCategory {
			return statements
		}
		statements = append(statements, EvidenceStatement{
			Category:  id,
			Source:    sig.Source,
			Rationale: string(sig.Kind),
			Location:  sig.Location,
			Statement: truncateWords(renderSignal(sig), maxStatementWords),
		})
	}

	if r.model != nil && len(statements) < maxEvidencePerCategory {
		if term, contribution, ok := r.model.TopFeature(id, vec); ok {
			statements = append(statements, EvidenceStatement{
				Category:  id,
				Source:    SourceAbstract,
				Rationale: string(SignalModelFeature),
				Location:  "model",
				Statement: truncateWords(
					fmt.Sprintf("statistical model feature %q contributed %.4f toward this category", term, contribution),
					maxStatementWords,
				),
			})
		}
	}

	return statements
}

func renderSignal(sig Signal) string {
	switch sig.Kind {
	case SignalCoreKeyword:
		return fmt.Sprintf("core keyword %q matched in %s (+%d)", sig.Term, sig.Source, sig.Points)
	case SignalRelatedKeyword:
		return fmt.Sprintf("related keyword %q matched in %s (+%d)", sig.Term, sig.Source, sig.Points)
	case SignalContextRule:
		return fmt.Sprintf("context rule %q fired across the record text (+%d)", sig.Term, sig.Points)
	case SignalPrior:
		return fmt.Sprintf("organizational prior for %s (+%d)", sig.Term, sig.Points)
	default:
		return fmt.Sprintf("%s %q (+%d)", sig.Kind, sig.Term, sig.Points)
	}
}

// truncateWords enforces the statement word cap.
func truncateWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) <= max {
		return s
	}
	return strings.Join(words[:max], " ")
}
