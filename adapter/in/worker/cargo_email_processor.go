package worker

import (
	"context"
	"fmt"

	"cargo_server/core/port/out"
	"cargo_server/core/service/classification"
	"cargo_server/core/service/linking"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// =============================================================================
// Email Processor
// =============================================================================

// EmailProcessor runs the decision pipeline for newly ingested emails:
// classification first, then shipment linking.
type EmailProcessor struct {
	emailRepo    out.EmailRepository
	orchestrator *classification.Orchestrator
	linking      *linking.Service
	log          zerolog.Logger
}

// NewEmailProcessor creates a new email processor.
func NewEmailProcessor(
	emailRepo out.EmailRepository,
	orchestrator *classification.Orchestrator,
	linkingService *linking.Service,
	log zerolog.Logger,
) *EmailProcessor {
	return &EmailProcessor{
		emailRepo:    emailRepo,
		orchestrator: orchestrator,
		linking:      linkingService,
		log:          log.With().Str("component", "email_processor").Logger(),
	}
}

// ProcessReceived classifies one email and attempts to link it to a shipment.
// Linking failures do not fail the job; classification alone is still useful.
func (p *EmailProcessor) ProcessReceived(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[EmailReceivedPayload](msg)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	emailID, err := uuid.Parse(payload.EmailID)
	if err != nil {
		return fmt.Errorf("invalid email id %q: %w", payload.EmailID, err)
	}

	email, err := p.emailRepo.GetByID(ctx, emailID)
	if err != nil {
		return fmt.Errorf("failed to load email: %w", err)
	}
	if email == nil {
		p.log.Warn().Str("email_id", payload.EmailID).Msg("email not found, skipping")
		return nil
	}

	var classifyErr error
	if payload.UseAI {
		_, classifyErr = p.orchestrator.ClassifyWithAI(ctx, email)
	} else {
		_, classifyErr = p.orchestrator.Classify(ctx, email)
	}
	if classifyErr != nil {
		return fmt.Errorf("failed to classify email: %w", classifyErr)
	}

	result, err := p.linking.ProcessEmail(ctx, emailID)
	if err != nil {
		p.log.Error().Err(err).Str("email_id", payload.EmailID).Msg("linking failed")
		return nil
	}

	p.log.Info().
		Str("email_id", payload.EmailID).
		Bool("matched", result.Matched).
		Int("confidence", result.ConfidenceScore).
		Str("link_type", string(result.LinkType)).
		Msg("email processed")
	return nil
}
