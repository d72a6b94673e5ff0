package classification

import "cargo_server/core/domain"

// =============================================================================
// Document Matchers
// =============================================================================

// DocumentMatch is a scored document-type classification with its source.
type DocumentMatch struct {
	Type       domain.DocumentType
	Confidence int
	Source     domain.ClassificationSource
}

// MatchDocumentContent classifies from extracted document text. Returns nil
// when no rule clears the minimum confidence or there is no text.
func MatchDocumentContent(documentText string) *DocumentMatch {
	if documentText == "" {
		return nil
	}

	outcome := evalRules(documentContentRules, normalize(documentText))
	if outcome == nil {
		return nil
	}
	return &DocumentMatch{
		Type:       outcome.result,
		Confidence: outcome.confidence,
		Source:     domain.SourceDocumentContent,
	}
}

// MatchEmailContent is the fallback when no document text is available. It
// tries attachment filenames, then subject, then body, in that priority
// order. For replies and forwards the subject is skipped entirely: a reply
// subject is inherited from the thread and says nothing about the reply's
// own content.
func MatchEmailContent(email *domain.Email, tc *domain.ThreadContext) *DocumentMatch {
	for _, name := range email.AttachmentFilenames {
		if outcome := evalRules(emailContentRules, normalize(name)); outcome != nil {
			return &DocumentMatch{
				Type:       outcome.result,
				Confidence: outcome.confidence,
				Source:     domain.SourceAttachmentName,
			}
		}
	}

	if !tc.IsThreaded() {
		if outcome := evalRules(emailContentRules, normalize(tc.CleanSubject)); outcome != nil {
			return &DocumentMatch{
				Type:       outcome.result,
				Confidence: outcome.confidence,
				Source:     domain.SourceSubject,
			}
		}
	}

	// Threaded emails classify from fresh text only; quoted content belongs
	// to earlier messages in the thread.
	body := tc.FreshBody
	if body == "" && !tc.IsThreaded() {
		body = email.BodyText
	}
	if outcome := evalRules(emailContentRules, normalize(body)); outcome != nil {
		return &DocumentMatch{
			Type:       outcome.result,
			Confidence: outcome.confidence,
			Source:     domain.SourceBody,
		}
	}

	return nil
}
