package linking

import (
	"context"
	"fmt"

	"cargo_server/core/domain"
	"cargo_server/core/service/workflow"

	"github.com/google/uuid"
)

// =============================================================================
// Batch Linking & Resync
// =============================================================================

const batchPageSize = 100

// BatchOptions bounds a batch linking pass. Zero values mean the default
// page size and an unbounded number of page fetches.
type BatchOptions struct {
	PageSize int
	MaxPages int
}

// ProcessUnlinkedEmails walks every email that has entity extractions but no
// shipment link yet and runs the resolution pipeline on each. One email
// failing never stops the batch.
func (s *Service) ProcessUnlinkedEmails(ctx context.Context, opts *BatchOptions) (*domain.BatchLinkSummary, error) {
	pageSize := batchPageSize
	maxPages := 0
	if opts != nil {
		if opts.PageSize > 0 {
			pageSize = opts.PageSize
		}
		maxPages = opts.MaxPages
	}

	summary := &domain.BatchLinkSummary{}
	seen := make(map[uuid.UUID]bool)
	page := 1
	fetches := 0

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if maxPages > 0 && fetches >= maxPages {
			break
		}
		fetches++

		emails, _, err := s.emails.ListUnlinkedWithEntities(ctx, &domain.PageRequest{
			Page: page, PageSize: pageSize,
		})
		if err != nil {
			return summary, fmt.Errorf("failed to list unlinked emails: %w", err)
		}
		if len(emails) == 0 {
			break
		}

		linkedThisPage := false
		for _, email := range emails {
			if seen[email.ID] {
				continue
			}
			seen[email.ID] = true

			summary.Processed++
			result, err := s.ProcessEmail(ctx, email.ID)
			if err != nil {
				summary.Errors++
				s.log.Error().Err(err).Str("email_id", email.ID.String()).Msg("batch link failed for email")
				continue
			}
			switch result.LinkType {
			case domain.LinkActionAuto:
				summary.Linked++
				linkedThisPage = true
			case domain.LinkActionSuggested:
				summary.Candidates++
			}
		}

		// Auto-linked emails drop out of the unlinked set and shift the
		// pages underneath us; restarting from the first page after any
		// link avoids skipping rows, and the seen set keeps each email
		// to a single pass.
		if linkedThisPage {
			page = 1
			continue
		}
		page++
	}

	s.log.Info().
		Int("processed", summary.Processed).
		Int("linked", summary.Linked).
		Int("candidates", summary.Candidates).
		Int("errors", summary.Errors).
		Msg("batch linking pass complete")

	return summary, nil
}

// ResyncShipmentFromLinkedEmails rebuilds a shipment's derivable fields from
// the union of entities across all of its linked emails. The same enrichment
// rules apply as at link time: empty fields only, status forward only.
func (s *Service) ResyncShipmentFromLinkedEmails(ctx context.Context, shipmentID uuid.UUID) error {
	shipment, err := s.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return fmt.Errorf("failed to load shipment: %w", err)
	}
	if shipment == nil {
		return fmt.Errorf("shipment %s not found", shipmentID)
	}

	emails, err := s.emails.ListByShipment(ctx, shipmentID)
	if err != nil {
		return fmt.Errorf("failed to list linked emails: %w", err)
	}

	var all []*domain.EntityExtraction
	for _, email := range emails {
		entities, err := s.entities.ListByEmail(ctx, email.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("email_id", email.ID.String()).Msg("skipping email entities during resync")
			continue
		}
		all = append(all, entities...)
	}

	update := BuildFieldUpdate(s.log, all)
	if !update.IsEmpty() {
		if err := s.enricher.FillEmptyFields(ctx, shipmentID, update); err != nil {
			return fmt.Errorf("failed to backfill shipment fields: %w", err)
		}
	}

	status := shipment.Status
	for _, email := range emails {
		classification, err := s.results.GetByEmail(ctx, email.ID)
		if err != nil || classification == nil {
			continue
		}
		inferred := workflow.InferStatus(classification.DocumentType, shipment, s.now())
		status = domain.MaxStatus(status, inferred)
	}
	if status != shipment.Status {
		if err := s.enricher.UpgradeStatus(ctx, shipmentID, status); err != nil {
			return fmt.Errorf("failed to upgrade shipment status: %w", err)
		}
	}

	if err := s.audit.Append(ctx, &domain.AuditEvent{
		Shipment: &shipmentID,
		Kind:     domain.AuditResync,
		Detail: map[string]any{
			"emails": len(emails),
			"status": string(status),
		},
	}); err != nil {
		s.log.Warn().Err(err).Msg("failed to record resync audit event")
	}

	s.log.Info().
		Str("shipment_id", shipmentID.String()).
		Int("emails", len(emails)).
		Msg("shipment resynced from linked emails")

	return nil
}
