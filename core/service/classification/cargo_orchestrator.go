package classification

import (
	"context"

	"cargo_server/core/domain"
	"cargo_server/core/port/out"

	"github.com/rs/zerolog"
)

// =============================================================================
// Classification Orchestrator
// =============================================================================

// downgradedConfidence is the confidence assigned when a classification is
// downgraded to general correspondence (thread duplicate or unauthorized
// issuer).
const downgradedConfidence = 50

// bodyPreviewLen bounds the body excerpt sent to the AI fallback.
const bodyPreviewLen = 1500

// Config holds orchestrator thresholds. Tunable, not load-bearing.
type Config struct {
	// ReviewThreshold: manual review is flagged only when BOTH document and
	// email-type confidence fall below it.
	ReviewThreshold int

	// AIFallbackThreshold: AI assist triggers when email-type confidence is
	// below it (or the type/sender is unknown).
	AIFallbackThreshold int
}

// DefaultConfig returns the default orchestrator thresholds.
func DefaultConfig() *Config {
	return &Config{
		ReviewThreshold:     MinConfidence,
		AIFallbackThreshold: MinConfidence,
	}
}

// Orchestrator composes the matchers into the full classification pipeline.
type Orchestrator struct {
	config    *Config
	senders   *SenderMatcher
	direction out.DirectionDetector
	bodies    out.EmailBodyRepository
	results   out.ClassificationRepository
	ai        out.AIClassifier
	log       zerolog.Logger
}

// Deps holds collaborators for the orchestrator. AI may be nil; Classify
// works without it and ClassifyWithAI degrades to the pattern-only result.
type Deps struct {
	Senders   *SenderMatcher
	Direction out.DirectionDetector
	Bodies    out.EmailBodyRepository
	Results   out.ClassificationRepository
	AI        out.AIClassifier
	Logger    zerolog.Logger
}

// NewOrchestrator wires the classification pipeline.
func NewOrchestrator(deps *Deps, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Orchestrator{
		config:    config,
		senders:   deps.Senders,
		direction: deps.Direction,
		bodies:    deps.Bodies,
		results:   deps.Results,
		ai:        deps.AI,
		log:       deps.Logger,
	}
}

// Classify runs the pattern-only pipeline.
func (o *Orchestrator) Classify(ctx context.Context, email *domain.Email) (*domain.ClassificationResult, error) {
	return o.classify(ctx, email, false)
}

// ClassifyWithAI runs the pipeline with the AI fallback armed for
// low-confidence outcomes.
func (o *Orchestrator) ClassifyWithAI(ctx context.Context, email *domain.Email) (*domain.ClassificationResult, error) {
	return o.classify(ctx, email, true)
}

func (o *Orchestrator) classify(ctx context.Context, email *domain.Email, useAI bool) (*domain.ClassificationResult, error) {
	tc := ExtractThreadContext(&ThreadInput{
		Subject:     email.Subject,
		BodyText:    email.BodyText,
		SenderEmail: email.FromEmail,
		SenderName:  email.FromName,
		Headers:     email.Headers,
	})

	result := &domain.ClassificationResult{
		EmailID:        email.ID,
		DocumentType:   domain.DocUnknown,
		DocumentSource: domain.SourceNone,
		EmailType:      domain.EmailUnknown,
		Direction:      domain.DirectionInbound,
	}

	// Direction detection resolves inbound/outbound and the true sender
	// behind any forwarding wrapper.
	senderAddr := email.FromEmail
	if dir, err := o.direction.Detect(ctx, &out.DirectionInput{
		SenderEmail:     email.FromEmail,
		SenderName:      email.FromName,
		TrueSenderEmail: email.TrueSenderEmail,
		Subject:         email.Subject,
		Headers:         email.Headers,
	}); err == nil && dir != nil {
		result.Direction = dir.Direction
		if dir.TrueSender != "" {
			senderAddr = dir.TrueSender
		}
	} else if err != nil {
		o.log.Warn().Err(err).Str("email_id", email.ID.String()).Msg("direction detection failed, defaulting inbound")
	}

	result.SenderCategory = o.senders.Match(senderAddr)

	// Document classification: extracted document text first, the covering
	// email second.
	doc := o.matchDocument(ctx, email, tc)
	if doc != nil {
		doc = o.applyThreadDuplicateGuard(ctx, email, tc, doc)
		doc = applyIssuerGuard(doc, result.SenderCategory)
		result.DocumentType = doc.Type
		result.DocumentConfidence = doc.Confidence
		result.DocumentSource = doc.Source
	}

	// Email-type classification runs independently: one email can carry both
	// a document (what is attached) and an intent (why it was sent).
	if et := MatchEmailType(tc, result.SenderCategory); et != nil {
		result.EmailType = et.Type
		result.EmailTypeConfidence = et.Confidence
	}

	sentiment := MatchSentiment(tc.CleanSubject, tc.FreshBody)
	result.Sentiment = sentiment.Sentiment
	result.SentimentScore = sentiment.Score

	o.combine(result)

	if useAI && o.shouldFallback(result) {
		o.mergeAIFallback(ctx, email, result)
	}

	return result, nil
}

func (o *Orchestrator) matchDocument(ctx context.Context, email *domain.Email, tc *domain.ThreadContext) *DocumentMatch {
	if o.bodies != nil {
		if text, err := o.bodies.GetDocumentText(ctx, email.ID); err == nil && text != "" {
			if m := MatchDocumentContent(text); m != nil {
				return m
			}
		}
	}
	return MatchEmailContent(email, tc)
}

// applyThreadDuplicateGuard downgrades a reply/forward whose document type
// already occurred earlier in the same thread. One logical event repeated
// across a thread must not trigger duplicate downstream transitions.
func (o *Orchestrator) applyThreadDuplicateGuard(ctx context.Context, email *domain.Email, tc *domain.ThreadContext, doc *DocumentMatch) *DocumentMatch {
	if !tc.IsThreaded() || o.results == nil {
		return doc
	}

	earlier, err := o.results.ListThreadDocumentTypes(ctx, tc.CleanSubject, email.ID)
	if err != nil {
		o.log.Warn().Err(err).Msg("thread duplicate lookup failed, keeping classification")
		return doc
	}
	for _, t := range earlier {
		if t == doc.Type {
			o.log.Debug().
				Str("email_id", email.ID.String()).
				Str("document_type", string(doc.Type)).
				Msg("duplicate document type in thread, downgrading")
			return &DocumentMatch{
				Type:       domain.DocGeneralCorrespondence,
				Confidence: downgradedConfidence,
				Source:     doc.Source,
			}
		}
	}
	return doc
}

// docIssuers lists the sender categories authorized to issue each document
// type. Document types absent from the map may come from anyone.
var docIssuers = map[domain.DocumentType][]domain.SenderCategory{
	domain.DocBookingConfirmation: {domain.SenderCarrier, domain.SenderInternal},
	domain.DocBookingAmendment:    {domain.SenderCarrier, domain.SenderInternal},
	domain.DocSIConfirmation:      {domain.SenderCarrier},
	domain.DocBillOfLading:        {domain.SenderCarrier, domain.SenderInternal},
	domain.DocArrivalNotice:       {domain.SenderCarrier, domain.SenderInternal},
	domain.DocDeliveryOrder:       {domain.SenderCarrier, domain.SenderInternal},
	domain.DocContainerRelease:    {domain.SenderCarrier, domain.SenderTrucker},
	domain.DocCustomsClearance:    {domain.SenderCustomsAgent, domain.SenderInternal},
	domain.DocProofOfDelivery:     {domain.SenderTrucker, domain.SenderCarrier, domain.SenderInternal},
}

// applyIssuerGuard downgrades (never rejects) a document classification when
// the classified sender cannot plausibly issue that document: a shipper
// cannot issue a carrier bill of lading. Unknown senders pass: authority is
// about positive misattribution, not missing data.
func applyIssuerGuard(doc *DocumentMatch, sender domain.SenderCategory) *DocumentMatch {
	issuers, restricted := docIssuers[doc.Type]
	if !restricted || sender == domain.SenderUnknown {
		return doc
	}
	for _, s := range issuers {
		if s == sender {
			return doc
		}
	}
	return &DocumentMatch{
		Type:       domain.DocGeneralCorrespondence,
		Confidence: downgradedConfidence,
		Source:     doc.Source,
	}
}

// combine derives the cross-cutting fields from the individual matcher
// outputs.
func (o *Orchestrator) combine(result *domain.ClassificationResult) {
	result.EmailCategory = domain.WorkflowHint(result.DocumentType)

	result.IsUrgent = result.Sentiment == domain.SentimentUrgent ||
		result.Sentiment == domain.SentimentEscalated ||
		result.EmailType == domain.EmailUrgentAction ||
		result.EmailType == domain.EmailEscalation

	result.NeedsManualReview = result.DocumentConfidence < o.config.ReviewThreshold &&
		result.EmailTypeConfidence < o.config.ReviewThreshold
}

func (o *Orchestrator) shouldFallback(result *domain.ClassificationResult) bool {
	return result.SenderCategory == domain.SenderUnknown ||
		result.EmailType == domain.EmailUnknown ||
		result.EmailTypeConfidence < o.config.AIFallbackThreshold
}

// mergeAIFallback calls the AI capability once and merges only the fields it
// improves: a field pattern matching already resolved with higher confidence
// is never downgraded. Any AI error degrades silently to the pattern result.
func (o *Orchestrator) mergeAIFallback(ctx context.Context, email *domain.Email, result *domain.ClassificationResult) {
	if o.ai == nil {
		return
	}

	preview := email.BodyText
	if len(preview) > bodyPreviewLen {
		preview = preview[:bodyPreviewLen]
	}

	aiResult, err := o.ai.ClassifyFallback(ctx, &out.AIClassifyInput{
		Subject:             email.Subject,
		Sender:              email.FromEmail,
		TrueSender:          email.TrueSenderEmail,
		BodyPreview:         preview,
		AttachmentFilenames: email.AttachmentFilenames,
	})
	if err != nil || aiResult == nil {
		o.log.Warn().Err(err).Str("email_id", email.ID.String()).Msg("AI fallback unavailable, keeping pattern result")
		return
	}

	if result.SenderCategory == domain.SenderUnknown && aiResult.SenderCategory != domain.SenderUnknown {
		result.SenderCategory = aiResult.SenderCategory
	}
	if aiResult.EmailType != domain.EmailUnknown &&
		(result.EmailType == domain.EmailUnknown || aiResult.Confidence > result.EmailTypeConfidence) {
		result.EmailType = aiResult.EmailType
		result.EmailTypeConfidence = aiResult.Confidence
	}
	if result.Sentiment == domain.SentimentNeutral && aiResult.Sentiment != "" {
		result.Sentiment = aiResult.Sentiment
	}

	result.UsedAIFallback = true
	result.AIReasoning = aiResult.Reasoning

	// Re-derive combined fields from the merged values.
	o.combine(result)
}
