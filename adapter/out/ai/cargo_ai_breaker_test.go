package ai

import (
	"context"
	"errors"
	"testing"

	"cargo_server/core/port/out"

	"github.com/rs/zerolog"
)

type scriptedClassifier struct {
	err   error
	calls int
}

func (s *scriptedClassifier) ClassifyFallback(_ context.Context, _ *out.AIClassifyInput) (*out.AIClassifyResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &out.AIClassifyResult{Confidence: 80}, nil
}

func TestBreakerPassesThroughWhileClosed(t *testing.T) {
	inner := &scriptedClassifier{}
	b := NewBreakerClassifier(inner, zerolog.Nop())

	result, err := b.ClassifyFallback(context.Background(), &out.AIClassifyInput{Subject: "arrival notice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Confidence != 80 {
		t.Errorf("confidence = %d, want 80", result.Confidence)
	}
	if b.IsOpen() {
		t.Error("breaker open after a successful call")
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &scriptedClassifier{err: errors.New("upstream down")}
	b := NewBreakerClassifier(inner, zerolog.Nop())

	for i := 0; i < 5; i++ {
		if _, err := b.ClassifyFallback(context.Background(), &out.AIClassifyInput{}); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	if !b.IsOpen() {
		t.Fatal("breaker still closed after 5 consecutive failures")
	}

	callsBefore := inner.calls
	if _, err := b.ClassifyFallback(context.Background(), &out.AIClassifyInput{}); err == nil {
		t.Fatal("expected fail-fast error while open")
	}
	if inner.calls != callsBefore {
		t.Errorf("inner classifier called while breaker open (%d -> %d)", callsBefore, inner.calls)
	}
}
