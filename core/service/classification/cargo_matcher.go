package classification

import "strings"

// =============================================================================
// Marker Rule Evaluator
// =============================================================================

// Confidence scale and rule evaluation constants. Thresholds are tunable
// configuration, not algorithmic invariants.
const (
	// MinConfidence is the floor a rule match must clear to count.
	MinConfidence = 70

	// optionalBoost is added per present optional marker.
	optionalBoost = 5

	// maxOptionalBoost caps the total optional contribution.
	maxOptionalBoost = 15

	// MaxConfidence is the ceiling for any match.
	MaxConfidence = 100
)

// markerRule is one tagged pattern entry. Rules are plain data evaluated by
// a single evaluator, so rule sets stay independently diffable and testable.
type markerRule[T ~string] struct {
	result         T
	required       []string // all must be present
	optional       []string // each present one boosts confidence
	exclude        []string // any present one vetoes the rule
	baseConfidence int
}

// matchOutcome is a scored rule hit.
type matchOutcome[T ~string] struct {
	result     T
	confidence int
}

// evalRules returns the single highest-confidence match across all rules
// clearing MinConfidence, or nil. Text is case-normalized once by the caller.
func evalRules[T ~string](rules []markerRule[T], text string) *matchOutcome[T] {
	var best *matchOutcome[T]

	for i := range rules {
		conf, ok := evalRule(&rules[i], text)
		if !ok || conf < MinConfidence {
			continue
		}
		if best == nil || conf > best.confidence {
			best = &matchOutcome[T]{result: rules[i].result, confidence: conf}
		}
	}
	return best
}

// evalRule scores a single rule against normalized text.
func evalRule[T ~string](rule *markerRule[T], text string) (int, bool) {
	for _, marker := range rule.required {
		if !strings.Contains(text, marker) {
			return 0, false
		}
	}
	for _, marker := range rule.exclude {
		if strings.Contains(text, marker) {
			return 0, false
		}
	}

	conf := rule.baseConfidence
	boost := 0
	for _, marker := range rule.optional {
		if strings.Contains(text, marker) {
			boost += optionalBoost
		}
	}
	if boost > maxOptionalBoost {
		boost = maxOptionalBoost
	}
	conf += boost
	if conf > MaxConfidence {
		conf = MaxConfidence
	}
	return conf, true
}

// normalize lowercases and collapses runs of whitespace so marker matching is
// insensitive to formatting.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
