package out

import (
	"context"

	"cargo_server/core/domain"
)

// =============================================================================
// AI Classification Port
// =============================================================================

// AIClassifyInput is the compact email view sent to the AI fallback.
type AIClassifyInput struct {
	Subject             string   `json:"subject"`
	Sender              string   `json:"sender"`
	TrueSender          string   `json:"true_sender,omitempty"`
	BodyPreview         string   `json:"body_preview"`
	AttachmentFilenames []string `json:"attachment_filenames,omitempty"`
}

// AIClassifyResult is what the AI fallback returns. Confidence is 0-100 on
// the same scale as the pattern matchers so results merge directly.
type AIClassifyResult struct {
	SenderCategory domain.SenderCategory `json:"sender_category"`
	EmailType      domain.EmailType      `json:"email_type"`
	EmailCategory  domain.EmailCategory  `json:"email_category"`
	Sentiment      domain.Sentiment      `json:"sentiment"`
	Confidence     int                   `json:"confidence"`
	Reasoning      string                `json:"reasoning"`
}

// AIClassifier is the external AI capability used when pattern matching is
// not confident. A single blocking call per email; no timeout or retry is
// built in: callers impose their own cancellation via ctx and treat any
// error as "AI unavailable".
type AIClassifier interface {
	ClassifyFallback(ctx context.Context, input *AIClassifyInput) (*AIClassifyResult, error)
}

// =============================================================================
// Direction Detection Port
// =============================================================================

// DirectionInput describes the sender side of an email for direction
// resolution.
type DirectionInput struct {
	SenderEmail     string            `json:"sender_email"`
	SenderName      string            `json:"sender_name,omitempty"`
	TrueSenderEmail string            `json:"true_sender_email,omitempty"`
	Subject         string            `json:"subject"`
	Headers         map[string]string `json:"headers,omitempty"`
}

// DirectionResult resolves inbound/outbound and the true sender after
// unwrapping forwarding.
type DirectionResult struct {
	Direction  domain.Direction `json:"direction"`
	TrueSender string           `json:"true_sender"`
	Confidence int              `json:"confidence"`
}

// DirectionDetector resolves email direction relative to the forwarding
// organization.
type DirectionDetector interface {
	Detect(ctx context.Context, input *DirectionInput) (*DirectionResult, error)
}
