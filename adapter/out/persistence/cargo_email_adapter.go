package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"cargo_server/core/domain"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// =============================================================================
// Email Adapter (PostgreSQL)
// =============================================================================

// EmailAdapter implements out.EmailRepository. Emails are ingested upstream;
// the only write this core performs is attaching the shipment reference.
type EmailAdapter struct {
	db *sqlx.DB
}

// NewEmailAdapter creates a new EmailAdapter.
func NewEmailAdapter(db *sqlx.DB) *EmailAdapter {
	return &EmailAdapter{db: db}
}

const emailSelectColumns = `
	e.id, e.subject, e.clean_subject, e.body_text, e.from_email, e.from_name,
	e.true_sender_email, e.headers, e.attachment_filenames,
	e.received_at, e.shipment_id`

// emailRow represents the database row for emails.
type emailRow struct {
	ID                  uuid.UUID       `db:"id"`
	Subject             string          `db:"subject"`
	CleanSubject        sql.NullString  `db:"clean_subject"`
	BodyText            string          `db:"body_text"`
	FromEmail           string          `db:"from_email"`
	FromName            sql.NullString  `db:"from_name"`
	TrueSenderEmail     sql.NullString  `db:"true_sender_email"`
	Headers             json.RawMessage `db:"headers"`
	AttachmentFilenames pq.StringArray  `db:"attachment_filenames"`
	ReceivedAt          sql.NullTime    `db:"received_at"`
	ShipmentID          *uuid.UUID      `db:"shipment_id"`
}

func (r *emailRow) toEntity() *domain.Email {
	e := &domain.Email{
		ID:                  r.ID,
		Subject:             r.Subject,
		BodyText:            r.BodyText,
		FromEmail:           r.FromEmail,
		FromName:            r.FromName.String,
		TrueSenderEmail:     r.TrueSenderEmail.String,
		AttachmentFilenames: r.AttachmentFilenames,
		ShipmentID:          r.ShipmentID,
	}
	if r.ReceivedAt.Valid {
		e.ReceivedAt = r.ReceivedAt.Time
	}
	if len(r.Headers) > 0 {
		// Malformed header blobs degrade to no headers rather than failing
		// the read.
		_ = json.Unmarshal(r.Headers, &e.Headers)
	}
	return e
}

// GetByID retrieves an email by ID.
func (a *EmailAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Email, error) {
	var row emailRow
	query := fmt.Sprintf(`SELECT %s FROM emails e WHERE e.id = $1`, emailSelectColumns)

	if err := a.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get email: %w", err)
	}
	return row.toEntity(), nil
}

// ListUnlinkedWithEntities pages over emails that have entity extractions but
// no shipment link yet, oldest first.
func (a *EmailAdapter) ListUnlinkedWithEntities(ctx context.Context, req *domain.PageRequest) ([]*domain.Email, int64, error) {
	var total int64
	countQuery := `
		SELECT COUNT(DISTINCT e.id)
		FROM emails e
		JOIN entity_extractions x ON x.email_id = e.id
		WHERE e.shipment_id IS NULL`
	if err := a.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, fmt.Errorf("failed to count unlinked emails: %w", err)
	}

	var rows []emailRow
	query := fmt.Sprintf(`
		SELECT DISTINCT %s
		FROM emails e
		JOIN entity_extractions x ON x.email_id = e.id
		WHERE e.shipment_id IS NULL
		ORDER BY e.received_at
		LIMIT $1 OFFSET $2`, emailSelectColumns)

	if err := a.db.SelectContext(ctx, &rows, query, req.Limit(), req.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list unlinked emails: %w", err)
	}

	emails := make([]*domain.Email, len(rows))
	for i := range rows {
		emails[i] = rows[i].toEntity()
	}
	return emails, total, nil
}

// ListByShipment returns all emails linked to a shipment, oldest first.
func (a *EmailAdapter) ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*domain.Email, error) {
	var rows []emailRow
	query := fmt.Sprintf(`
		SELECT %s FROM emails e
		WHERE e.shipment_id = $1
		ORDER BY e.received_at`, emailSelectColumns)

	if err := a.db.SelectContext(ctx, &rows, query, shipmentID); err != nil {
		return nil, fmt.Errorf("failed to list emails by shipment: %w", err)
	}

	emails := make([]*domain.Email, len(rows))
	for i := range rows {
		emails[i] = rows[i].toEntity()
	}
	return emails, nil
}

// MarkLinked sets the shipment reference on the email row.
func (a *EmailAdapter) MarkLinked(ctx context.Context, emailID, shipmentID uuid.UUID) error {
	result, err := a.db.ExecContext(ctx,
		`UPDATE emails SET shipment_id = $2 WHERE id = $1`, emailID, shipmentID)
	if err != nil {
		return fmt.Errorf("failed to mark email linked: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// Entity Extraction Adapter (PostgreSQL)
// =============================================================================

// EntityExtractionAdapter implements out.EntityExtractionRepository.
type EntityExtractionAdapter struct {
	db *sqlx.DB
}

// NewEntityExtractionAdapter creates a new EntityExtractionAdapter.
func NewEntityExtractionAdapter(db *sqlx.DB) *EntityExtractionAdapter {
	return &EntityExtractionAdapter{db: db}
}

// entityRow represents the database row for entity extractions.
type entityRow struct {
	ID        int64        `db:"id"`
	EmailID   uuid.UUID    `db:"email_id"`
	Type      string       `db:"type"`
	Value     string       `db:"value"`
	CreatedAt sql.NullTime `db:"created_at"`
}

func (r *entityRow) toEntity() *domain.EntityExtraction {
	e := &domain.EntityExtraction{
		ID:      r.ID,
		EmailID: r.EmailID,
		Type:    domain.EntityType(r.Type),
		Value:   r.Value,
	}
	if r.CreatedAt.Valid {
		e.CreatedAt = r.CreatedAt.Time
	}
	return e
}

// ListByEmail returns the extractions attached to an email in insertion order.
func (a *EntityExtractionAdapter) ListByEmail(ctx context.Context, emailID uuid.UUID) ([]*domain.EntityExtraction, error) {
	var rows []entityRow
	query := `SELECT id, email_id, type, value, created_at FROM entity_extractions WHERE email_id = $1 ORDER BY id`

	if err := a.db.SelectContext(ctx, &rows, query, emailID); err != nil {
		return nil, fmt.Errorf("failed to list entity extractions: %w", err)
	}

	entities := make([]*domain.EntityExtraction, len(rows))
	for i := range rows {
		entities[i] = rows[i].toEntity()
	}
	return entities, nil
}
