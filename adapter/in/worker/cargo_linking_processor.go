package worker

import (
	"context"
	"fmt"

	"cargo_server/core/service/linking"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// =============================================================================
// Linking Processor
// =============================================================================

// LinkingProcessor handles batch linking and shipment resync jobs.
type LinkingProcessor struct {
	linking *linking.Service
	log     zerolog.Logger
}

// NewLinkingProcessor creates a new linking processor.
func NewLinkingProcessor(linkingService *linking.Service, log zerolog.Logger) *LinkingProcessor {
	return &LinkingProcessor{
		linking: linkingService,
		log:     log.With().Str("component", "linking_processor").Logger(),
	}
}

// ProcessBatchLink runs a linking pass over all unlinked emails.
func (p *LinkingProcessor) ProcessBatchLink(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[BatchLinkPayload](msg)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	summary, err := p.linking.ProcessUnlinkedEmails(ctx, &linking.BatchOptions{
		PageSize: payload.PageSize,
		MaxPages: payload.MaxPages,
	})
	if err != nil {
		return fmt.Errorf("failed to run batch linking: %w", err)
	}

	p.log.Info().
		Int("processed", summary.Processed).
		Int("linked", summary.Linked).
		Int("candidates", summary.Candidates).
		Int("errors", summary.Errors).
		Msg("batch linking finished")
	return nil
}

// ProcessResync re-derives shipment fields from all linked emails.
func (p *LinkingProcessor) ProcessResync(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[ShipmentResyncPayload](msg)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	shipmentID, err := uuid.Parse(payload.ShipmentID)
	if err != nil {
		return fmt.Errorf("invalid shipment id %q: %w", payload.ShipmentID, err)
	}

	if err := p.linking.ResyncShipmentFromLinkedEmails(ctx, shipmentID); err != nil {
		return fmt.Errorf("failed to resync shipment: %w", err)
	}

	return nil
}
