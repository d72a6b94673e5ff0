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
// Classification Adapter (PostgreSQL)
// =============================================================================

// ClassificationAdapter implements out.ClassificationRepository.
type ClassificationAdapter struct {
	db *sqlx.DB
}

// NewClassificationAdapter creates a new ClassificationAdapter.
func NewClassificationAdapter(db *sqlx.DB) *ClassificationAdapter {
	return &ClassificationAdapter{db: db}
}

// classificationRow represents the database row.
type classificationRow struct {
	ID                  int64          `db:"id"`
	EmailID             uuid.UUID      `db:"email_id"`
	DocumentType        string         `db:"document_type"`
	DocumentConfidence  int            `db:"document_confidence"`
	DocumentSource      string         `db:"document_source"`
	EmailType           string         `db:"email_type"`
	EmailCategory       string         `db:"email_category"`
	EmailTypeConfidence int            `db:"email_type_confidence"`
	SenderCategory      string         `db:"sender_category"`
	Sentiment           string         `db:"sentiment"`
	SentimentScore      int            `db:"sentiment_score"`
	Direction           string         `db:"direction"`
	IsUrgent            bool           `db:"is_urgent"`
	NeedsManualReview   bool           `db:"needs_manual_review"`
	UsedAIFallback      bool           `db:"used_ai_fallback"`
	AIReasoning         sql.NullString `db:"ai_reasoning"`
	CreatedAt           time.Time      `db:"created_at"`
}

func (r *classificationRow) toEntity() *domain.ClassificationResult {
	return &domain.ClassificationResult{
		ID:                  r.ID,
		EmailID:             r.EmailID,
		DocumentType:        domain.DocumentType(r.DocumentType),
		DocumentConfidence:  r.DocumentConfidence,
		DocumentSource:      domain.ClassificationSource(r.DocumentSource),
		EmailType:           domain.EmailType(r.EmailType),
		EmailCategory:       domain.EmailCategory(r.EmailCategory),
		EmailTypeConfidence: r.EmailTypeConfidence,
		SenderCategory:      domain.SenderCategory(r.SenderCategory),
		Sentiment:           domain.Sentiment(r.Sentiment),
		SentimentScore:      r.SentimentScore,
		Direction:           domain.Direction(r.Direction),
		IsUrgent:            r.IsUrgent,
		NeedsManualReview:   r.NeedsManualReview,
		UsedAIFallback:      r.UsedAIFallback,
		AIReasoning:         r.AIReasoning.String,
		CreatedAt:           r.CreatedAt,
	}
}

// Save upserts the classification for an email. Reclassification replaces the
// previous result; one row per email.
func (a *ClassificationAdapter) Save(ctx context.Context, result *domain.ClassificationResult) error {
	query := `
		INSERT INTO email_classifications (
			email_id, document_type, document_confidence, document_source,
			email_type, email_category, email_type_confidence,
			sender_category, sentiment, sentiment_score, direction,
			is_urgent, needs_manual_review, used_ai_fallback, ai_reasoning,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
		ON CONFLICT (email_id) DO UPDATE SET
			document_type = EXCLUDED.document_type,
			document_confidence = EXCLUDED.document_confidence,
			document_source = EXCLUDED.document_source,
			email_type = EXCLUDED.email_type,
			email_category = EXCLUDED.email_category,
			email_type_confidence = EXCLUDED.email_type_confidence,
			sender_category = EXCLUDED.sender_category,
			sentiment = EXCLUDED.sentiment,
			sentiment_score = EXCLUDED.sentiment_score,
			direction = EXCLUDED.direction,
			is_urgent = EXCLUDED.is_urgent,
			needs_manual_review = EXCLUDED.needs_manual_review,
			used_ai_fallback = EXCLUDED.used_ai_fallback,
			ai_reasoning = EXCLUDED.ai_reasoning`

	_, err := a.db.ExecContext(ctx, query,
		result.EmailID,
		string(result.DocumentType), result.DocumentConfidence, string(result.DocumentSource),
		string(result.EmailType), string(result.EmailCategory), result.EmailTypeConfidence,
		string(result.SenderCategory), string(result.Sentiment), result.SentimentScore,
		string(result.Direction),
		result.IsUrgent, result.NeedsManualReview, result.UsedAIFallback,
		nullStr(result.AIReasoning))
	if err != nil {
		return fmt.Errorf("failed to save classification: %w", err)
	}
	return nil
}

// GetByEmail retrieves the classification for an email.
func (a *ClassificationAdapter) GetByEmail(ctx context.Context, emailID uuid.UUID) (*domain.ClassificationResult, error) {
	var row classificationRow
	query := `SELECT * FROM email_classifications WHERE email_id = $1`

	if err := a.db.GetContext(ctx, &row, query, emailID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get classification: %w", err)
	}
	return row.toEntity(), nil
}

// ListThreadDocumentTypes returns the distinct document types recorded for
// earlier emails sharing the given clean subject.
func (a *ClassificationAdapter) ListThreadDocumentTypes(ctx context.Context, cleanSubject string, before uuid.UUID) ([]domain.DocumentType, error) {
	var types []string
	query := `
		SELECT DISTINCT c.document_type
		FROM email_classifications c
		JOIN emails e ON e.id = c.email_id
		WHERE e.clean_subject = $1 AND c.email_id <> $2`

	if err := a.db.SelectContext(ctx, &types, query, cleanSubject, before); err != nil {
		return nil, fmt.Errorf("failed to list thread document types: %w", err)
	}

	out := make([]domain.DocumentType, len(types))
	for i, t := range types {
		out[i] = domain.DocumentType(t)
	}
	return out, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
