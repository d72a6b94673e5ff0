package linking

import (
	"context"
	"fmt"
	"time"

	"cargo_server/core/domain"
	"cargo_server/core/port/out"
	"cargo_server/core/service/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// =============================================================================
// Shipment Resolution & Linking Service
// =============================================================================

// Config holds the linking gates. Tunable configuration, not algorithmic
// invariants.
type Config struct {
	AutoLinkThreshold int // persist the link and run side effects
	SuggestThreshold  int // create a reviewable suggestion, no mutation
	CarrierDomains    []string
	InternalDomains   []string
}

// DefaultConfig returns the default linking gates.
func DefaultConfig() *Config {
	return &Config{
		AutoLinkThreshold: 85,
		SuggestThreshold:  60,
	}
}

// Service resolves which shipment an email concerns and attaches it. It
// never creates shipments: the ShipmentReader port is read-only and creation
// belongs to the upstream booking collaborator.
type Service struct {
	config    *Config
	scorer    *Scorer
	emails    out.EmailRepository
	entities  out.EntityExtractionRepository
	shipments out.ShipmentReader
	enricher  out.ShipmentEnricher
	results   out.ClassificationRepository
	links     out.LinkRepository
	audit     out.AuditLogRepository
	log       zerolog.Logger
	now       func() time.Time
}

// ServiceDeps holds collaborators for the linking service.
type ServiceDeps struct {
	Emails    out.EmailRepository
	Entities  out.EntityExtractionRepository
	Shipments out.ShipmentReader
	Enricher  out.ShipmentEnricher
	Results   out.ClassificationRepository
	Links     out.LinkRepository
	Audit     out.AuditLogRepository
	Logger    zerolog.Logger
}

// NewService wires the linking service.
func NewService(deps *ServiceDeps, config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	return &Service{
		config:    config,
		scorer:    NewScorer(config.CarrierDomains, config.InternalDomains),
		emails:    deps.Emails,
		entities:  deps.Entities,
		shipments: deps.Shipments,
		enricher:  deps.Enricher,
		results:   deps.Results,
		links:     deps.Links,
		audit:     deps.Audit,
		log:       deps.Logger,
		now:       time.Now,
	}
}

// candidate accumulates the identifiers that resolved to one shipment.
type candidate struct {
	shipment *domain.Shipment
	matched  []domain.MatchedIdentifier
}

// ProcessEmail resolves and (confidence permitting) links one email.
// Failures in the primary resolution path are reported via Matched=false
// plus Reasoning, never returned as errors, so batch callers continue
// safely. The returned error covers only collaborator reads needed before
// any decision could be made.
func (s *Service) ProcessEmail(ctx context.Context, emailID uuid.UUID) (*domain.LinkResult, error) {
	email, err := s.emails.GetByID(ctx, emailID)
	if err != nil {
		return nil, fmt.Errorf("failed to load email: %w", err)
	}

	entities, err := s.entities.ListByEmail(ctx, emailID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entity extractions: %w", err)
	}

	keys := BuildLinkingKeys(entities)
	result := &domain.LinkResult{EmailID: emailID}

	// Zero identifiers: terminal non-match, and no lookup may be performed.
	if keys.IsEmpty() {
		result.Reasoning = "no shipment identifiers extracted from email"
		return result, nil
	}

	candidates, ordered := s.resolveCandidates(ctx, keys)
	if len(ordered) == 0 {
		// Entities persist for later resolution; this service never
		// originates a shipment.
		result.Reasoning = fmt.Sprintf("no shipment matched %d extracted identifier(s)", keys.Count())
		return result, nil
	}

	chosen := candidates[ordered[0]]
	if len(ordered) > 1 {
		// Conflict: log it, pick deterministically by identifier-type
		// priority, never merge.
		result.Conflict = true
		s.logConflict(ctx, emailID, candidates, ordered, chosen.shipment.ID)
	}

	confidence, reasoning := s.scorer.Score(&ScoreInput{
		Matched:      chosen.matched,
		SenderEmail:  senderFor(email),
		DocumentType: s.documentTypeFor(ctx, emailID),
		ReceivedAt:   email.ReceivedAt,
		ShipmentAge:  chosen.shipment.CreatedAt,
	})

	result.ConfidenceScore = confidence
	result.MatchedIdents = chosen.matched
	shipmentID := chosen.shipment.ID

	switch {
	case confidence >= s.config.AutoLinkThreshold:
		result.Matched = true
		result.ShipmentID = &shipmentID
		result.LinkType = domain.LinkActionAuto
		result.Reasoning = reasoning
		s.applyAutoLink(ctx, email, entities, chosen, confidence, reasoning)

	case confidence >= s.config.SuggestThreshold:
		result.ShipmentID = &shipmentID
		result.LinkType = domain.LinkActionSuggested
		result.Reasoning = "suggested for review: " + reasoning
		s.createSuggestion(ctx, emailID, shipmentID, confidence, result.Reasoning)

	default:
		result.LinkType = domain.LinkActionRejected
		result.Reasoning = "confidence too low: " + reasoning
	}

	return result, nil
}

// resolveCandidates looks up every identifier value of every type, not just
// the first per type, and accumulates matched identifiers per shipment. The
// returned order is deterministic: identifier-type priority first, then
// encounter order.
func (s *Service) resolveCandidates(ctx context.Context, keys *domain.LinkingKeys) (map[uuid.UUID]*candidate, []uuid.UUID) {
	candidates := make(map[uuid.UUID]*candidate)
	var ordered []uuid.UUID

	lookup := func(identType domain.IdentifierType, values []string, find func(context.Context, string) (*domain.Shipment, error)) {
		for _, value := range values {
			shipment, err := find(ctx, value)
			if err != nil {
				s.log.Warn().Err(err).Str("identifier", value).Msg("shipment lookup failed")
				continue
			}
			if shipment == nil {
				continue
			}
			c, ok := candidates[shipment.ID]
			if !ok {
				c = &candidate{shipment: shipment}
				candidates[shipment.ID] = c
				ordered = append(ordered, shipment.ID)
			}
			c.matched = append(c.matched, domain.MatchedIdentifier{Type: identType, Value: value})
		}
	}

	// Lookup order is the tie-break priority order.
	lookup(domain.IdentBookingNumber, keys.BookingNumbers, s.shipments.FindByBookingNumber)
	lookup(domain.IdentBLNumber, keys.BLNumbers, s.shipments.FindByBLNumber)
	lookup(domain.IdentContainerNumber, keys.ContainerNumbers, s.shipments.FindByContainerNumber)

	return candidates, ordered
}

func (s *Service) logConflict(ctx context.Context, emailID uuid.UUID, candidates map[uuid.UUID]*candidate, ordered []uuid.UUID, chosen uuid.UUID) {
	ids := make([]string, 0, len(ordered))
	for _, id := range ordered {
		ids = append(ids, id.String())
	}

	s.log.Warn().
		Str("email_id", emailID.String()).
		Strs("shipment_ids", ids).
		Str("chosen", chosen.String()).
		Msg("link conflict: multiple shipments matched, resolved by identifier priority")

	if err := s.audit.Append(ctx, &domain.AuditEvent{
		EmailID: &emailID,
		Kind:    domain.AuditLinkConflict,
		Detail: map[string]any{
			"shipment_ids": ids,
			"chosen":       chosen.String(),
		},
	}); err != nil {
		s.log.Error().Err(err).Msg("failed to record conflict audit event")
	}
}

// documentTypeFor reads the stored classification for document-fit scoring.
// Missing classifications just weaken the score.
func (s *Service) documentTypeFor(ctx context.Context, emailID uuid.UUID) domain.DocumentType {
	if s.results == nil {
		return domain.DocUnknown
	}
	result, err := s.results.GetByEmail(ctx, emailID)
	if err != nil || result == nil {
		return domain.DocUnknown
	}
	return result.DocumentType
}

func senderFor(email *domain.Email) string {
	if email.TrueSenderEmail != "" {
		return email.TrueSenderEmail
	}
	return email.FromEmail
}

// applyAutoLink persists the link and runs enrichment side effects. Side
// effect failures are caught and logged: the primary link result stands
// regardless.
func (s *Service) applyAutoLink(ctx context.Context, email *domain.Email, entities []*domain.EntityExtraction, chosen *candidate, confidence int, reasoning string) {
	shipmentID := chosen.shipment.ID

	if err := s.links.CreateLink(ctx, &domain.EmailLink{
		EmailID:    email.ID,
		ShipmentID: shipmentID,
		LinkType:   domain.LinkActionAuto,
		Confidence: confidence,
		Reasoning:  reasoning,
	}); err != nil {
		s.log.Error().Err(err).Str("email_id", email.ID.String()).Msg("failed to persist link")
		return
	}

	if err := s.emails.MarkLinked(ctx, email.ID, shipmentID); err != nil {
		s.log.Error().Err(err).Msg("failed to mark email linked")
	}

	// Enrichment side effects below are best-effort.
	update := BuildFieldUpdate(s.log, entities)
	if !update.IsEmpty() {
		if err := s.enricher.FillEmptyFields(ctx, shipmentID, update); err != nil {
			s.log.Warn().Err(err).Str("shipment_id", shipmentID.String()).Msg("field propagation failed, link stands")
		}
	}

	s.advanceShipment(ctx, email, chosen.shipment)

	if err := s.audit.Append(ctx, &domain.AuditEvent{
		EmailID:  &email.ID,
		Shipment: &shipmentID,
		Kind:     domain.AuditAutoLink,
		Detail:   map[string]any{"confidence": confidence},
	}); err != nil {
		s.log.Warn().Err(err).Msg("failed to record auto-link audit event")
	}
}

// advanceShipment runs status inference and the workflow transition for a
// freshly linked email. All failures here are non-fatal.
func (s *Service) advanceShipment(ctx context.Context, email *domain.Email, shipment *domain.Shipment) {
	classification, err := s.results.GetByEmail(ctx, email.ID)
	if err != nil || classification == nil {
		s.log.Debug().Str("email_id", email.ID.String()).Msg("no classification for linked email, skipping workflow advance")
		return
	}

	inferred := workflow.InferStatus(classification.DocumentType, shipment, s.now())
	next := domain.MaxStatus(shipment.Status, inferred)
	if next != shipment.Status {
		if err := s.enricher.UpgradeStatus(ctx, shipment.ID, next); err != nil {
			s.log.Warn().Err(err).Msg("status upgrade failed, link stands")
		} else {
			s.auditQuiet(ctx, email.ID, shipment.ID, domain.AuditStatusUpgrade, map[string]any{
				"from": string(shipment.Status), "to": string(next),
			})
		}
	}

	transition := workflow.DetermineTransition(classification, email.Subject, shipment.WorkflowState, nil)
	if transition == nil {
		return
	}
	if err := s.enricher.SetWorkflowState(ctx, shipment.ID, transition.State); err != nil {
		s.log.Warn().Err(err).Msg("workflow state update failed, link stands")
		return
	}
	if err := s.enricher.RecordMilestone(ctx, shipment.ID, transition.State, email.ID); err != nil {
		s.log.Warn().Err(err).Msg("milestone recording failed, link stands")
	}
	s.auditQuiet(ctx, email.ID, shipment.ID, domain.AuditWorkflowAdvance, map[string]any{
		"state": string(transition.State),
	})
}

func (s *Service) createSuggestion(ctx context.Context, emailID, shipmentID uuid.UUID, confidence int, reasoning string) {
	if err := s.links.CreateSuggestion(ctx, &domain.LinkSuggestion{
		EmailID:    emailID,
		ShipmentID: shipmentID,
		Confidence: confidence,
		Reasoning:  reasoning,
	}); err != nil {
		s.log.Error().Err(err).Msg("failed to persist link suggestion")
		return
	}
	s.auditQuiet(ctx, emailID, shipmentID, domain.AuditLinkSuggestion, map[string]any{"confidence": confidence})
}

func (s *Service) auditQuiet(ctx context.Context, emailID, shipmentID uuid.UUID, kind string, detail map[string]any) {
	if err := s.audit.Append(ctx, &domain.AuditEvent{
		EmailID:  &emailID,
		Shipment: &shipmentID,
		Kind:     kind,
		Detail:   detail,
	}); err != nil {
		s.log.Warn().Err(err).Str("kind", kind).Msg("failed to record audit event")
	}
}
