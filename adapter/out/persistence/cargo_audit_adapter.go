package persistence

import (
	"context"
	"fmt"

	"cargo_server/core/domain"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
)

// =============================================================================
// Audit Adapter (PostgreSQL)
// =============================================================================

// AuditAdapter implements out.AuditLogRepository. Events are append-only;
// there is no update or delete path.
type AuditAdapter struct {
	db *sqlx.DB
}

// NewAuditAdapter creates a new AuditAdapter.
func NewAuditAdapter(db *sqlx.DB) *AuditAdapter {
	return &AuditAdapter{db: db}
}

// Append writes one audit event. Detail is stored as JSONB.
func (a *AuditAdapter) Append(ctx context.Context, event *domain.AuditEvent) error {
	var detail []byte
	if event.Detail != nil {
		b, err := json.Marshal(event.Detail)
		if err != nil {
			return fmt.Errorf("failed to marshal audit detail: %w", err)
		}
		detail = b
	}

	query := `
		INSERT INTO audit_events (email_id, shipment_id, kind, detail, created_at)
		VALUES ($1, $2, $3, $4, NOW())`

	if _, err := a.db.ExecContext(ctx, query, event.EmailID, event.Shipment, event.Kind, detail); err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}
