package workflow

import (
	"strings"

	"cargo_server/core/domain"
)

// =============================================================================
// Workflow State Machine
// =============================================================================

// IsSenderAuthorized reports whether the classified sender category may
// trigger the given state. States without an allow-list accept any sender.
// The check runs against the derived category, never the raw address.
func IsSenderAuthorized(state domain.WorkflowState, sender domain.SenderCategory) bool {
	rule := ruleFor(state)
	if rule == nil {
		return false
	}
	if len(rule.AllowedFrom) == 0 {
		return true
	}
	for _, s := range rule.AllowedFrom {
		if s == sender {
			return true
		}
	}
	return false
}

// Transition is a proposed workflow advance.
type Transition struct {
	State                domain.WorkflowState   `json:"state"`
	Phase                domain.WorkflowPhase   `json:"phase"`
	TriggeredByDocument  bool                   `json:"triggered_by_document"`
	TriggeredByEmailType bool                   `json:"triggered_by_email_type"`
	MissingPrerequisites []domain.WorkflowState `json:"missing_prerequisites,omitempty"`
}

// DetermineTransition evaluates the rule table against one classification
// and the email's clean subject, returning the transition to apply, or nil
// when no rule triggers or the sender lacks authority. Prerequisites are
// informational: late or missing evidence never blocks recording a later
// state, it is only reported on the result.
func DetermineTransition(result *domain.ClassificationResult, subject string, current domain.WorkflowState, recorded []domain.WorkflowState) *Transition {
	for i := range transitionRules {
		rule := &transitionRules[i]

		if rule.Direction != result.Direction {
			continue
		}
		if !triggered(rule, result, subject) {
			continue
		}
		if !IsSenderAuthorized(rule.State, result.SenderCategory) {
			continue
		}
		// Skip states already at or behind the current one unless the rule
		// allows parallel recording at the same rank.
		if current != "" && rankOf(rule.State) <= rankOf(current) && !(rule.Parallel && rankOf(rule.State) == rankOf(current)) {
			continue
		}

		return &Transition{
			State:                rule.State,
			Phase:                rule.Phase,
			TriggeredByDocument:  matchesDocument(rule, result.DocumentType),
			TriggeredByEmailType: matchesEmailType(rule, result, subject),
			MissingPrerequisites: missingPrereqs(rule, recorded),
		}
	}
	return nil
}

// triggered applies the dual-trigger rule: a qualifying document type OR a
// qualifying email type (with subject hints, when the rule requires them) is
// sufficient evidence.
func triggered(rule *domain.WorkflowTransitionRule, result *domain.ClassificationResult, subject string) bool {
	return matchesDocument(rule, result.DocumentType) || matchesEmailType(rule, result, subject)
}

func matchesDocument(rule *domain.WorkflowTransitionRule, doc domain.DocumentType) bool {
	for _, d := range rule.DocumentTypes {
		if d == doc {
			return true
		}
	}
	return false
}

func matchesEmailType(rule *domain.WorkflowTransitionRule, result *domain.ClassificationResult, subject string) bool {
	matched := false
	for _, e := range rule.EmailTypes {
		if e == result.EmailType {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	if len(rule.SubjectHints) == 0 {
		return true
	}
	lower := strings.ToLower(subject)
	for _, h := range rule.SubjectHints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

func missingPrereqs(rule *domain.WorkflowTransitionRule, recorded []domain.WorkflowState) []domain.WorkflowState {
	var missing []domain.WorkflowState
	for _, p := range rule.Prerequisites {
		found := false
		for _, r := range recorded {
			if r == p {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, p)
		}
	}
	return missing
}
