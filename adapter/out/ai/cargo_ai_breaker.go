// Package ai provides outbound adapters for the AI classification and
// direction detection ports.
package ai

import (
	"context"
	"time"

	"cargo_server/core/port/out"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// =============================================================================
// Circuit-Broken AI Classifier
// =============================================================================

// BreakerClassifier wraps an AIClassifier with a circuit breaker. An open
// breaker fails fast, which the orchestrator treats the same as any other AI
// failure: degrade to the pattern-only result.
type BreakerClassifier struct {
	inner out.AIClassifier
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerClassifier wraps the given classifier.
func NewBreakerClassifier(inner out.AIClassifier, log zerolog.Logger) *BreakerClassifier {
	blog := log.With().Str("component", "ai_breaker").Logger()
	settings := gobreaker.Settings{
		Name:        "ai-classify",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			blog.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &BreakerClassifier{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker(settings),
	}
}

// ClassifyFallback runs the wrapped call through the breaker.
func (b *BreakerClassifier) ClassifyFallback(ctx context.Context, input *out.AIClassifyInput) (*out.AIClassifyResult, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.ClassifyFallback(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	return result.(*out.AIClassifyResult), nil
}

// IsOpen reports whether the breaker is currently rejecting calls.
func (b *BreakerClassifier) IsOpen() bool {
	return b.cb.State() == gobreaker.StateOpen
}
