package classification

import (
	"testing"

	"cargo_server/core/domain"
)

// TestMatchSentiment tests threshold mapping over the keyword score.
func TestMatchSentiment(t *testing.T) {
	tests := []struct {
		name          string
		subject       string
		body          string
		wantSentiment domain.Sentiment
		wantMinScore  int
	}{
		{
			name:          "stacked urgency signals map to urgent",
			subject:       "URGENT: cutoff today",
			body:          "Action required immediately, this is critical.",
			wantSentiment: domain.SentimentUrgent,
			wantMinScore:  8,
		},
		{
			name:          "escalation wording at mid score maps to escalated",
			subject:       "Service issue",
			body:          "Please escalate this to your manager.",
			wantSentiment: domain.SentimentEscalated,
			wantMinScore:  5,
		},
		{
			name:          "damage and dispute map to negative",
			subject:       "Cargo claim",
			body:          "The container arrived damaged and we dispute the charges.",
			wantSentiment: domain.SentimentNegative,
		},
		{
			name:          "appreciation maps to positive",
			subject:       "Thank you",
			body:          "We appreciate the great service this quarter.",
			wantSentiment: domain.SentimentPositive,
			wantMinScore:  4,
		},
		{
			name:          "plain operational email is neutral",
			subject:       "Schedule for week 37",
			body:          "Vessel calls as planned.",
			wantSentiment: domain.SentimentNeutral,
		},
		{
			name:          "single mild negative stays neutral",
			subject:       "Slight delay",
			body:          "Berthing pushed by a few hours.",
			wantSentiment: domain.SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := MatchSentiment(tt.subject, tt.body)

			if match.Sentiment != tt.wantSentiment {
				t.Errorf("sentiment = %v (score=%d), want %v", match.Sentiment, match.Score, tt.wantSentiment)
			}
			if tt.wantMinScore != 0 && match.Score < tt.wantMinScore {
				t.Errorf("score = %d, want >= %d", match.Score, tt.wantMinScore)
			}
		})
	}
}

// TestEscalationRequiresEscalationHit verifies that a mid-band score without
// escalation wording never maps to escalated.
func TestEscalationRequiresEscalationHit(t *testing.T) {
	// "asap" + "deadline" score 5 with no escalation keyword.
	match := MatchSentiment("Reminder", "Need this asap, deadline is near.")

	if match.Score < sentimentEscalatedMin || match.Score >= sentimentUrgentMin {
		t.Fatalf("score = %d, expected mid band [%d,%d)", match.Score, sentimentEscalatedMin, sentimentUrgentMin)
	}
	if match.Sentiment == domain.SentimentEscalated {
		t.Errorf("sentiment = escalated without escalation wording")
	}
}
