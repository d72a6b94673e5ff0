package ai

import (
	"context"
	"strings"

	"cargo_server/core/domain"
	"cargo_server/core/port/out"
)

// =============================================================================
// Direction Detection Adapter
// =============================================================================

// DirectionAdapter resolves email direction against the configured internal
// domains, unwrapping forwarded mail to find the true external sender.
type DirectionAdapter struct {
	internalDomains []string
}

// NewDirectionAdapter creates the adapter from the forwarding organization's
// own domains.
func NewDirectionAdapter(internalDomains []string) *DirectionAdapter {
	domains := make([]string, 0, len(internalDomains))
	for _, d := range internalDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains = append(domains, d)
		}
	}
	return &DirectionAdapter{internalDomains: domains}
}

// Detect implements out.DirectionDetector. An internal sender forwarding
// external mail resolves to the wrapped sender's direction: the forward
// carries the original party's communication, not ours.
func (a *DirectionAdapter) Detect(ctx context.Context, input *out.DirectionInput) (*out.DirectionResult, error) {
	trueSender := strings.ToLower(strings.TrimSpace(input.SenderEmail))
	confidence := 90

	if input.TrueSenderEmail != "" {
		trueSender = strings.ToLower(strings.TrimSpace(input.TrueSenderEmail))
	} else if a.isInternal(trueSender) && looksForwarded(input.Subject) {
		// Internal forward without a resolved original sender: direction is
		// uncertain, keep the internal address but lower confidence.
		confidence = 60
	}

	direction := domain.DirectionInbound
	if a.isInternal(trueSender) {
		direction = domain.DirectionOutbound
	}

	return &out.DirectionResult{
		Direction:  direction,
		TrueSender: trueSender,
		Confidence: confidence,
	}, nil
}

func (a *DirectionAdapter) isInternal(addr string) bool {
	for _, d := range a.internalDomains {
		if strings.HasSuffix(addr, "@"+d) {
			return true
		}
	}
	return false
}

func looksForwarded(subject string) bool {
	lower := strings.ToLower(strings.TrimSpace(subject))
	return strings.HasPrefix(lower, "fw:") || strings.HasPrefix(lower, "fwd:")
}
