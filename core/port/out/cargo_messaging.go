package out

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Messaging Port (Redis Streams)
// =============================================================================

// EmailReceivedJob announces a newly ingested email to the worker side.
type EmailReceivedJob struct {
	EmailID    uuid.UUID `json:"email_id"`
	ReceivedAt time.Time `json:"received_at"`
	UseAI      bool      `json:"use_ai"`
}

// ShipmentResyncJob asks the worker to re-derive shipment fields from all
// linked emails.
type ShipmentResyncJob struct {
	ShipmentID uuid.UUID `json:"shipment_id"`
}

// BatchLinkJob triggers a pass over not-yet-linked emails.
type BatchLinkJob struct {
	PageSize int `json:"page_size"`
	MaxPages int `json:"max_pages"`
}

// MessageProducer publishes jobs to the stream for worker consumption.
type MessageProducer interface {
	PublishEmailReceived(ctx context.Context, job *EmailReceivedJob) error
	PublishShipmentResync(ctx context.Context, job *ShipmentResyncJob) error
	PublishBatchLink(ctx context.Context, job *BatchLinkJob) error
}

// =============================================================================
// Cache Port
// =============================================================================

// Cache is a small TTL cache used for hot lookups (classification reads,
// workflow rule snapshots).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
