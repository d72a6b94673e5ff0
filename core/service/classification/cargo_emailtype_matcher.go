package classification

import "cargo_server/core/domain"

// =============================================================================
// Email-Type Matcher
// =============================================================================

// replySubjectPenalty reduces confidence for subject-only matches on replies
// and forwards, where the subject may reflect inherited thread context.
const replySubjectPenalty = 15

// emailTypeRule couples a marker rule with an optional sender allow-list.
type emailTypeRule struct {
	rule    markerRule[domain.EmailType]
	senders []domain.SenderCategory // empty = any sender
}

var emailTypeRules = []emailTypeRule{
	{
		rule: markerRule[domain.EmailType]{
			result:         domain.EmailBookingRequest,
			required:       []string{"booking request"},
			optional:       []string{"please book", "space", "vessel"},
			baseConfidence: 85,
		},
		senders: []domain.SenderCategory{domain.SenderShipper, domain.SenderInternal},
	},
	{
		rule: markerRule[domain.EmailType]{
			result:         domain.EmailApprovalGranted,
			required:       []string{"approved"},
			optional:       []string{"confirm", "accepted", "no further changes"},
			exclude:        []string{"not approved", "rejected"},
			baseConfidence: 80,
		},
	},
	{
		rule: markerRule[domain.EmailType]{
			result:         domain.EmailApprovalRejected,
			required:       []string{"rejected"},
			optional:       []string{"please amend", "resubmit", "discrepancy"},
			baseConfidence: 82,
		},
	},
	{
		rule: markerRule[domain.EmailType]{
			result:         domain.EmailScheduleInquiry,
			required:       []string{"schedule"},
			optional:       []string{"eta", "etd", "when", "sailing"},
			exclude:        []string{"schedule change", "schedule update"},
			baseConfidence: 72,
		},
	},
	{
		rule: markerRule[domain.EmailType]{
			result:         domain.EmailStatusUpdate,
			required:       []string{"update"},
			optional:       []string{"status", "departed", "arrived", "delayed", "schedule change"},
			baseConfidence: 72,
		},
	},
	{
		rule: markerRule[domain.EmailType]{
			result:         domain.EmailStatusUpdate,
			required:       []string{"vessel", "departed"},
			optional:       []string{"sailed", "etd"},
			baseConfidence: 82,
		},
		senders: []domain.SenderCategory{domain.SenderCarrier},
	},
	{
		rule: markerRule[domain.EmailType]{
			result:         domain.EmailDocumentRequest,
			required:       []string{"please send"},
			optional:       []string{"document", "copy", "draft", "invoice", "packing list"},
			baseConfidence: 75,
		},
	},
	{
		rule: markerRule[domain.EmailType]{
			result:         domain.EmailDocumentRequest,
			required:       []string{"kindly provide"},
			optional:       []string{"document", "copy"},
			baseConfidence: 75,
		},
	},
	{
		rule: markerRule[domain.EmailType]{
			result:         domain.EmailAmendmentRequest,
			required:       []string{"amend"},
			optional:       []string{"correction", "revise", "change"},
			baseConfidence: 78,
		},
	},
	{
		rule: markerRule[domain.EmailType]{
			result:         domain.EmailUrgentAction,
			required:       []string{"urgent"},
			optional:       []string{"immediately", "asap", "action required", "cutoff"},
			baseConfidence: 82,
		},
	},
	{
		rule: markerRule[domain.EmailType]{
			result:         domain.EmailEscalation,
			required:       []string{"escalat"},
			optional:       []string{"manager", "unacceptable", "complaint"},
			baseConfidence: 82,
		},
	},
	{
		rule: markerRule[domain.EmailType]{
			result:         domain.EmailGeneralInquiry,
			required:       []string{"inquiry"},
			optional:       []string{"question", "quotation", "rate"},
			baseConfidence: 70,
		},
	},
}

// EmailTypeMatch is a scored email-type classification.
type EmailTypeMatch struct {
	Type       domain.EmailType
	Confidence int
	Source     domain.ClassificationSource
}

// MatchEmailType determines communicative intent. Original emails check the
// subject before the body; replies and forwards check the body first and any
// subject-only match is penalized since it may reflect inherited context.
func MatchEmailType(tc *domain.ThreadContext, sender domain.SenderCategory) *EmailTypeMatch {
	rules := rulesForSender(sender)

	subject := normalize(tc.CleanSubject)
	body := normalize(tc.FreshBody)

	if !tc.IsThreaded() {
		if outcome := evalRules(rules, subject); outcome != nil {
			return &EmailTypeMatch{Type: outcome.result, Confidence: outcome.confidence, Source: domain.SourceSubject}
		}
		if outcome := evalRules(rules, body); outcome != nil {
			return &EmailTypeMatch{Type: outcome.result, Confidence: outcome.confidence, Source: domain.SourceBody}
		}
		return nil
	}

	if outcome := evalRules(rules, body); outcome != nil {
		return &EmailTypeMatch{Type: outcome.result, Confidence: outcome.confidence, Source: domain.SourceBody}
	}
	if outcome := evalRules(rules, subject); outcome != nil {
		conf := outcome.confidence - replySubjectPenalty
		if conf < MinConfidence {
			return nil
		}
		return &EmailTypeMatch{Type: outcome.result, Confidence: conf, Source: domain.SourceSubject}
	}
	return nil
}

// rulesForSender filters the rule table down to rules whose allow-list admits
// the sender. Rules without an allow-list always apply; an unknown sender
// only sees unrestricted rules.
func rulesForSender(sender domain.SenderCategory) []markerRule[domain.EmailType] {
	rules := make([]markerRule[domain.EmailType], 0, len(emailTypeRules))
	for _, r := range emailTypeRules {
		if len(r.senders) == 0 {
			rules = append(rules, r.rule)
			continue
		}
		for _, s := range r.senders {
			if s == sender {
				rules = append(rules, r.rule)
				break
			}
		}
	}
	return rules
}
