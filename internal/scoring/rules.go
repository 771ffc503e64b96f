package scoring

import (
	"fmt"
	"strings"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/taxonomy"
)

// PriorWildcard is the prior-map category key whose boost applies to
// every category scored for the organization.
const PriorWildcard = "*"

// SignalKind tags the rule or feature that contributed to a score.
type SignalKind string

const (
	SignalCoreKeyword     SignalKind = "core_keyword"
	SignalRelatedKeyword  SignalKind = "related_keyword"
	SignalNegativeKeyword SignalKind = "negative_keyword"
	SignalContextRule     SignalKind = "context_rule"
	SignalPrior           SignalKind = "org_prior"
	SignalModelFeature    SignalKind = "model_feature"
)

// Signal records one triggered scoring contribution, retained for
// evidence generation and audit.
type Signal struct {
	Kind     SignalKind
	Term     string
	Source   string
	Points   int
	Location string
}

// CategoryScore is the rule engine's per-category result. Raw is the
// clamped total; the component fields preserve the breakdown the
// resolver needs for tie-breaking and evidence.
type CategoryScore struct {
	Raw     int
	Keyword int
	Context int
	Prior   int
	Signals []Signal
}

// RuleScorer evaluates keyword, context, and prior rules from the scoring
// configuration against a record. It is a pure function of its inputs:
// the same (record, config, catalog version) always yields the same
// raw-score map.
type RuleScorer struct {
	cfg *Config
}

// NewRuleScorer creates a RuleScorer over a sanitized configuration.
func NewRuleScorer(cfg *Config) *RuleScorer {
	return &RuleScorer{cfg: cfg}
}

// Score produces a raw score for every active category in the catalog.
// Categories without any signal score zero; they are still present in
// the map so downstream stages can distinguish "evaluated, no match"
// from "not evaluated".
func (s *RuleScorer) Score(in Input, catalog *taxonomy.Catalog) map[string]CategoryScore {
	sources := in.sources()
	combined := in.combinedText()
	scores := make(map[string]CategoryScore)

	for _, id := range catalog.ActiveIDs() {
		category, _ := catalog.Category(id)
		scores[id] = s.scoreCategory(id, category, sources, combined, in)
	}

	return scores
}

func (s *RuleScorer) scoreCategory(
	id string,
	category taxonomy.Category,
	sources []textSource,
	combined string,
	in Input,
) CategoryScore {
	var cs CategoryScore

	core, related, negative := s.effectiveKeywords(id, category)

	// Step 1: keyword matching. Negative matches subtract before the
	// zero clamp so they suppress weak positives without pushing the
	// category into debt against later context or prior boosts.
	keyword := 0
	keyword += s.matchPhrases(&cs, core, sources, SignalCoreKeyword, s.cfg.Weights.Core)
	keyword += s.matchPhrases(&cs, related, sources, SignalRelatedKeyword, s.cfg.Weights.Related)
	keyword -= s.matchPhrases(&cs, negative, sources, SignalNegativeKeyword, -s.cfg.Weights.NegativePenalty)
	if keyword < 0 {
		keyword = 0
	}
	cs.Keyword = keyword

	// Step 2: context rules. A rule fires only when every keyword in its
	// set is present in the combined text; fired boosts accumulate.
	for _, rule := range s.cfg.ContextRules {
		if rule.Category != id {
			continue
		}
		if !allPresent(combined, rule.Keywords) {
			continue
		}
		cs.Context += rule.Boost
		cs.Signals = append(cs.Signals, Signal{
			Kind:     SignalContextRule,
			Term:     strings.Join(rule.Keywords, " + "),
			Source:   SourceAbstract,
			Points:   rule.Boost,
			Location: "combined",
		})
	}

	// Step 3: organizational priors, most specific organization first.
	if boost, term := s.priorBoost(in, id); boost != 0 {
		cs.Prior = boost
		cs.Signals = append(cs.Signals, Signal{
			Kind:     SignalPrior,
			Term:     term,
			Source:   SourceReviewerNotes,
			Points:   boost,
			Location: "config",
		})
	}

	raw := cs.Keyword + cs.Context + cs.Prior
	if raw < 0 {
		raw = 0
	}
	cs.Raw = raw

	return cs
}

// matchPhrases counts case-insensitive substring occurrences of each
// phrase across the record's sources and records a signal per matched
// phrase. The returned value is the absolute keyword contribution.
func (s *RuleScorer) matchPhrases(
	cs *CategoryScore,
	phrases []string,
	sources []textSource,
	kind SignalKind,
	pointsPerMatch int,
) int {
	total := 0

	for _, phrase := range phrases {
		needle := strings.ToLower(strings.TrimSpace(phrase))
		if needle == "" {
			continue
		}

		for _, src := range sources {
			count := strings.Count(src.text, needle)
			if count == 0 {
				continue
			}

			points := count * pointsPerMatch
			total += count
			cs.Signals = append(cs.Signals, Signal{
				Kind:     kind,
				Term:     phrase,
				Source:   src.tag,
				Points:   points,
				Location: fmt.Sprintf("%s:%d", src.tag, strings.Index(src.text, needle)),
			})
		}
	}

	if pointsPerMatch < 0 {
		return total * -pointsPerMatch
	}
	return total * pointsPerMatch
}

// effectiveKeywords merges the catalog's keyword lists with any
// config-supplied extensions for the category.
func (s *RuleScorer) effectiveKeywords(id string, category taxonomy.Category) (core, related, negative []string) {
	core = category.Core
	related = category.Related
	negative = category.Negative

	if ext, ok := s.cfg.Categories[id]; ok {
		core = append(append([]string{}, core...), ext.Core...)
		related = append(append([]string{}, related...), ext.Related...)
		negative = append(append([]string{}, negative...), ext.Negative...)
	}

	return core, related, negative
}

// priorBoost resolves the organizational boost for a category. The finer
// sub-unit key (agency/branch) takes precedence over the agency key; the
// chosen organization contributes its category boost plus any wildcard.
func (s *RuleScorer) priorBoost(in Input, category string) (int, string) {
	for _, org := range orgKeys(in) {
		boosts, ok := s.cfg.Priors[org]
		if !ok {
			continue
		}

		boost := boosts[category] + boosts[PriorWildcard]
		if boost != 0 {
			return boost, org
		}
	}
	return 0, ""
}

func orgKeys(in Input) []string {
	if in.Branch != "" {
		return []string{in.Agency + "/" + in.Branch, in.Agency}
	}
	return []string{in.Agency}
}

// allPresent reports whether every keyword appears in the text
// (case-insensitive substring containment).
func allPresent(text string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(text, strings.ToLower(kw)) {
			return false
		}
	}
	return len(keywords) > 0
}
