package linking

import (
	"testing"
	"time"

	"cargo_server/core/domain"
)

func testScorer() *Scorer {
	return NewScorer([]string{"carrier.example"}, []string{"forwardco.example"})
}

// TestScore tests the additive evidence weighting against the link gates.
func TestScore(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		input     *ScoreInput
		wantScore int
	}{
		{
			name: "booking number from carrier with fitting document clears auto-link",
			input: &ScoreInput{
				Matched:      []domain.MatchedIdentifier{{Type: domain.IdentBookingNumber, Value: "999999999"}},
				SenderEmail:  "noreply@carrier.example",
				DocumentType: domain.DocBookingConfirmation,
				ReceivedAt:   now,
				ShipmentAge:  now.Add(-2 * 24 * time.Hour),
			},
			wantScore: 95, // 55 + 20 + 10 + 10
		},
		{
			name: "container number from third party lands below suggestion",
			input: &ScoreInput{
				Matched:     []domain.MatchedIdentifier{{Type: domain.IdentContainerNumber, Value: "MSCU1234567"}},
				SenderEmail: "someone@nowhere.example",
				ReceivedAt:  now,
				ShipmentAge: now.Add(-120 * 24 * time.Hour),
			},
			wantScore: 43, // 38 + 5 + 0 + 0
		},
		{
			name: "container number from carrier within a month suggests",
			input: &ScoreInput{
				Matched:      []domain.MatchedIdentifier{{Type: domain.IdentContainerNumber, Value: "MSCU1234567"}},
				SenderEmail:  "notices@carrier.example",
				DocumentType: domain.DocArrivalNotice,
				ReceivedAt:   now,
				ShipmentAge:  now.Add(-20 * 24 * time.Hour),
			},
			wantScore: 74, // 38 + 20 + 10 + 6
		},
		{
			name: "three identifier types cap the corroboration bonus",
			input: &ScoreInput{
				Matched: []domain.MatchedIdentifier{
					{Type: domain.IdentBookingNumber, Value: "999999999"},
					{Type: domain.IdentBLNumber, Value: "ABCD1234567"},
					{Type: domain.IdentContainerNumber, Value: "MSCU1234567"},
				},
				SenderEmail:  "noreply@carrier.example",
				DocumentType: domain.DocBillOfLading,
				ReceivedAt:   now,
				ShipmentAge:  now.Add(-3 * 24 * time.Hour),
			},
			wantScore: 100, // 55+10 + 20 + 10 + 10 = 105, capped
		},
		{
			name: "no identifiers scores only ambient evidence",
			input: &ScoreInput{
				SenderEmail: "noreply@carrier.example",
				ReceivedAt:  now,
				ShipmentAge: now.Add(-1 * 24 * time.Hour),
			},
			wantScore: 30, // 0 + 20 + 0 + 10
		},
	}

	s := testScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reasoning := s.Score(tt.input)

			if score != tt.wantScore {
				t.Errorf("score = %d, want %d (reasoning: %s)", score, tt.wantScore, reasoning)
			}
			if reasoning == "" {
				t.Error("reasoning is empty")
			}
		})
	}
}

// TestScoreMonotonicInIdentifierTypes verifies that matching via additional
// identifier types never lowers the score.
func TestScoreMonotonicInIdentifierTypes(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	s := testScorer()

	base := &ScoreInput{
		SenderEmail:  "noreply@carrier.example",
		DocumentType: domain.DocBillOfLading,
		ReceivedAt:   now,
		ShipmentAge:  now.Add(-2 * 24 * time.Hour),
	}

	single := []domain.MatchedIdentifier{
		{Type: domain.IdentBookingNumber, Value: "999999999"},
	}
	double := append(append([]domain.MatchedIdentifier{}, single...),
		domain.MatchedIdentifier{Type: domain.IdentContainerNumber, Value: "MSCU1234567"})

	base.Matched = single
	singleScore, _ := s.Score(base)
	base.Matched = double
	doubleScore, _ := s.Score(base)

	if doubleScore < singleScore {
		t.Errorf("two types scored %d, below single-type %d", doubleScore, singleScore)
	}

	// Weakest type alone must also never beat itself plus a stronger type.
	base.Matched = []domain.MatchedIdentifier{{Type: domain.IdentContainerNumber, Value: "MSCU1234567"}}
	containerScore, _ := s.Score(base)
	if doubleScore < containerScore {
		t.Errorf("booking+container scored %d, below container-only %d", doubleScore, containerScore)
	}
}

// TestScoreTemporalBands tests the proximity bands.
func TestScoreTemporalBands(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		gap  time.Duration
		want int
	}{
		{"within a week", 3 * 24 * time.Hour, scoreTemporalWeek},
		{"within a month", 20 * 24 * time.Hour, scoreTemporalMonth},
		{"within a quarter", 60 * 24 * time.Hour, scoreTemporalQuarter},
		{"stale", 200 * 24 * time.Hour, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := scoreTemporal(now, now.Add(-tt.gap))
			if got != tt.want {
				t.Errorf("temporal score = %d, want %d", got, tt.want)
			}
		})
	}
}
