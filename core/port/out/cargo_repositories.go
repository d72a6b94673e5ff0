// Package out defines outbound ports (driven ports) for the application.
// These interfaces represent dependencies that the application needs.
package out

import (
	"context"

	"cargo_server/core/domain"

	"github.com/google/uuid"
)

// =============================================================================
// Shipment Ports
// =============================================================================

// ShipmentReader is the read-only port for shipment lookup. The linking
// service never creates shipments; creation belongs to the upstream booking
// collaborator, so write access is split out of this interface.
type ShipmentReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Shipment, error)
	FindByBookingNumber(ctx context.Context, value string) (*domain.Shipment, error)
	FindByBLNumber(ctx context.Context, value string) (*domain.Shipment, error)
	FindByContainerNumber(ctx context.Context, value string) (*domain.Shipment, error)

	// ListMilestones returns the recorded workflow states for a shipment
	// in the order they were reached.
	ListMilestones(ctx context.Context, id uuid.UUID) ([]domain.WorkflowState, error)
}

// ShipmentEnricher updates shipments under the enrichment rules: only empty
// fields are filled, status only moves forward.
type ShipmentEnricher interface {
	// FillEmptyFields writes only those update fields that are currently
	// empty on the shipment. Non-empty values are never overwritten.
	FillEmptyFields(ctx context.Context, id uuid.UUID, update *domain.ShipmentFieldUpdate) error

	// UpgradeStatus sets the status only if the new value is further along
	// in the priority order (or cancelled).
	UpgradeStatus(ctx context.Context, id uuid.UUID, status domain.ShipmentStatus) error

	// SetWorkflowState records a workflow milestone.
	SetWorkflowState(ctx context.Context, id uuid.UUID, state domain.WorkflowState) error

	// RecordMilestone appends a milestone event for the shipment timeline.
	RecordMilestone(ctx context.Context, id uuid.UUID, state domain.WorkflowState, sourceEmail uuid.UUID) error
}

// =============================================================================
// Email / Entity Ports
// =============================================================================

// EmailRepository provides read access to ingested emails.
type EmailRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Email, error)

	// ListUnlinkedWithEntities pages over emails that have entity
	// extractions but no shipment link yet.
	ListUnlinkedWithEntities(ctx context.Context, req *domain.PageRequest) ([]*domain.Email, int64, error)

	// ListByShipment returns all emails already linked to a shipment.
	ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*domain.Email, error)

	// MarkLinked sets the shipment reference on the email row.
	MarkLinked(ctx context.Context, emailID, shipmentID uuid.UUID) error
}

// EntityExtractionRepository provides the extractions attached to an email.
type EntityExtractionRepository interface {
	ListByEmail(ctx context.Context, emailID uuid.UUID) ([]*domain.EntityExtraction, error)
}

// EmailBodyRepository serves extracted document text (OCR/parsed attachment
// content), stored out-of-band from the relational metadata.
type EmailBodyRepository interface {
	GetDocumentText(ctx context.Context, emailID uuid.UUID) (string, error)
}

// =============================================================================
// Classification / Link / Audit Ports
// =============================================================================

// ClassificationRepository persists classification results.
type ClassificationRepository interface {
	Save(ctx context.Context, result *domain.ClassificationResult) error
	GetByEmail(ctx context.Context, emailID uuid.UUID) (*domain.ClassificationResult, error)

	// ListThreadDocumentTypes returns the document types already recorded
	// for earlier emails whose clean subject matches the given one. Used to
	// downgrade duplicate classifications within a thread.
	ListThreadDocumentTypes(ctx context.Context, cleanSubject string, before uuid.UUID) ([]domain.DocumentType, error)
}

// LinkRepository persists email-shipment links and reviewable suggestions.
type LinkRepository interface {
	CreateLink(ctx context.Context, link *domain.EmailLink) error
	CreateSuggestion(ctx context.Context, s *domain.LinkSuggestion) error
	GetLinkByEmail(ctx context.Context, emailID uuid.UUID) (*domain.EmailLink, error)
	ListPendingSuggestions(ctx context.Context, req *domain.PageRequest) ([]*domain.LinkSuggestion, int64, error)
	MarkSuggestionReviewed(ctx context.Context, id int64) error
}

// AuditLogRepository appends operational audit events.
type AuditLogRepository interface {
	Append(ctx context.Context, event *domain.AuditEvent) error
}
