package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"cargo_server/core/domain"
	"cargo_server/core/port/out"
)

// fallbackResponse mirrors the JSON the model is instructed to emit.
type fallbackResponse struct {
	SenderCategory string `json:"sender_category"`
	EmailType      string `json:"email_type"`
	EmailCategory  string `json:"email_category"`
	Sentiment      string `json:"sentiment"`
	Confidence     int    `json:"confidence"`
	Reasoning      string `json:"reasoning"`
}

const classifySystemPrompt = `You are a freight-forwarding email classification AI. Analyze the email and respond with JSON only.

sender_category (pick ONE): carrier, customs_agent, shipper, consignee, trucker, internal, unknown
email_type (pick ONE): booking_request, approval_granted, approval_rejected, schedule_inquiry, status_update, document_request, amendment_request, urgent_action, escalation, general_inquiry, unknown
email_category (pick ONE): booking, documentation, transit, arrival, delivery, billing, general
sentiment (pick ONE): urgent, escalated, negative, positive, neutral
confidence: 0-100, how certain you are overall

Respond with this exact JSON format:
{
  "sender_category": "...",
  "email_type": "...",
  "email_category": "...",
  "sentiment": "...",
  "confidence": 0,
  "reasoning": "one short sentence"
}`

// ClassifyFallback implements the AI classification port. A single blocking
// call; any transport or parse failure surfaces as an error and the caller
// degrades to its pattern result.
func (c *Client) ClassifyFallback(ctx context.Context, input *out.AIClassifyInput) (*out.AIClassifyResult, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\n", input.Sender)
	if input.TrueSender != "" && input.TrueSender != input.Sender {
		fmt.Fprintf(&sb, "Original sender: %s\n", input.TrueSender)
	}
	fmt.Fprintf(&sb, "Subject: %s\n", input.Subject)
	if len(input.AttachmentFilenames) > 0 {
		fmt.Fprintf(&sb, "Attachments: %s\n", strings.Join(input.AttachmentFilenames, ", "))
	}
	fmt.Fprintf(&sb, "\nBody:\n%s", input.BodyPreview)

	resp, err := c.CompleteWithSystem(ctx, classifySystemPrompt, sb.String())
	if err != nil {
		return nil, err
	}

	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimSuffix(resp, "```")
	resp = strings.TrimSpace(resp)

	var parsed fallbackResponse
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse classification response: %w", err)
	}

	result := &out.AIClassifyResult{
		SenderCategory: domain.SenderCategory(parsed.SenderCategory),
		EmailType:      domain.EmailType(parsed.EmailType),
		EmailCategory:  domain.EmailCategory(parsed.EmailCategory),
		Sentiment:      domain.Sentiment(parsed.Sentiment),
		Confidence:     parsed.Confidence,
		Reasoning:      parsed.Reasoning,
	}
	if result.SenderCategory == "" {
		result.SenderCategory = domain.SenderUnknown
	}
	if result.EmailType == "" {
		result.EmailType = domain.EmailUnknown
	}
	return result, nil
}
