package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cargo_server/core/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// =============================================================================
// Link Adapter (PostgreSQL)
// =============================================================================

// LinkAdapter implements out.LinkRepository for email-shipment links and
// reviewable suggestions.
type LinkAdapter struct {
	db *sqlx.DB
}

// NewLinkAdapter creates a new LinkAdapter.
func NewLinkAdapter(db *sqlx.DB) *LinkAdapter {
	return &LinkAdapter{db: db}
}

// linkRow represents the database row for links.
type linkRow struct {
	ID         int64          `db:"id"`
	EmailID    uuid.UUID      `db:"email_id"`
	ShipmentID uuid.UUID      `db:"shipment_id"`
	LinkType   string         `db:"link_type"`
	Confidence int            `db:"confidence"`
	Reasoning  sql.NullString `db:"reasoning"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r *linkRow) toEntity() *domain.EmailLink {
	return &domain.EmailLink{
		ID:         r.ID,
		EmailID:    r.EmailID,
		ShipmentID: r.ShipmentID,
		LinkType:   domain.LinkAction(r.LinkType),
		Confidence: r.Confidence,
		Reasoning:  r.Reasoning.String,
		CreatedAt:  r.CreatedAt,
	}
}

// CreateLink persists a confirmed email-shipment link. One link per email.
func (a *LinkAdapter) CreateLink(ctx context.Context, link *domain.EmailLink) error {
	query := `
		INSERT INTO email_shipment_links (email_id, shipment_id, link_type, confidence, reasoning, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (email_id) DO UPDATE SET
			shipment_id = EXCLUDED.shipment_id,
			link_type = EXCLUDED.link_type,
			confidence = EXCLUDED.confidence,
			reasoning = EXCLUDED.reasoning`

	_, err := a.db.ExecContext(ctx, query,
		link.EmailID, link.ShipmentID, string(link.LinkType), link.Confidence, nullStr(link.Reasoning))
	if err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// CreateSuggestion persists a reviewable link candidate.
func (a *LinkAdapter) CreateSuggestion(ctx context.Context, s *domain.LinkSuggestion) error {
	query := `
		INSERT INTO link_suggestions (email_id, shipment_id, confidence, reasoning, reviewed, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		ON CONFLICT (email_id, shipment_id) DO UPDATE SET
			confidence = EXCLUDED.confidence,
			reasoning = EXCLUDED.reasoning`

	_, err := a.db.ExecContext(ctx, query, s.EmailID, s.ShipmentID, s.Confidence, s.Reasoning)
	if err != nil {
		return fmt.Errorf("failed to create link suggestion: %w", err)
	}
	return nil
}

// GetLinkByEmail retrieves the link for an email, if any.
func (a *LinkAdapter) GetLinkByEmail(ctx context.Context, emailID uuid.UUID) (*domain.EmailLink, error) {
	var row linkRow
	query := `SELECT * FROM email_shipment_links WHERE email_id = $1`

	if err := a.db.GetContext(ctx, &row, query, emailID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return row.toEntity(), nil
}

// suggestionRow represents the database row for link suggestions.
type suggestionRow struct {
	ID         int64     `db:"id"`
	EmailID    uuid.UUID `db:"email_id"`
	ShipmentID uuid.UUID `db:"shipment_id"`
	Confidence int       `db:"confidence"`
	Reasoning  string    `db:"reasoning"`
	Reviewed   bool      `db:"reviewed"`
	CreatedAt  time.Time `db:"created_at"`
}

// ListPendingSuggestions returns unreviewed suggestions, newest first.
func (a *LinkAdapter) ListPendingSuggestions(ctx context.Context, req *domain.PageRequest) ([]*domain.LinkSuggestion, int64, error) {
	var total int64
	if err := a.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM link_suggestions WHERE reviewed = FALSE`); err != nil {
		return nil, 0, fmt.Errorf("failed to count suggestions: %w", err)
	}

	var rows []suggestionRow
	query := `
		SELECT * FROM link_suggestions
		WHERE reviewed = FALSE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	if err := a.db.SelectContext(ctx, &rows, query, req.Limit(), req.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list suggestions: %w", err)
	}

	out := make([]*domain.LinkSuggestion, len(rows))
	for i, r := range rows {
		out[i] = &domain.LinkSuggestion{
			ID:         r.ID,
			EmailID:    r.EmailID,
			ShipmentID: r.ShipmentID,
			Confidence: r.Confidence,
			Reasoning:  r.Reasoning,
			Reviewed:   r.Reviewed,
			CreatedAt:  r.CreatedAt,
		}
	}
	return out, total, nil
}

// MarkSuggestionReviewed flags one suggestion as handled by an operator.
func (a *LinkAdapter) MarkSuggestionReviewed(ctx context.Context, id int64) error {
	result, err := a.db.ExecContext(ctx,
		`UPDATE link_suggestions SET reviewed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark suggestion reviewed: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
