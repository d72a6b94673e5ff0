package classification

import (
	"strings"

	"cargo_server/core/domain"
)

// =============================================================================
// Sentiment Matcher
// =============================================================================

// Sentiment thresholds over the cumulative signed keyword score.
const (
	sentimentUrgentMin    = 8
	sentimentEscalatedMin = 5
	sentimentNegativeMax  = -3
	sentimentPositiveMin  = 3
)

// sentimentKeyword is one weighted keyword. Escalation-tagged hits are what
// distinguish "escalated" from merely "urgent" at the middle score band.
type sentimentKeyword struct {
	marker     string
	weight     int
	escalation bool
}

var sentimentKeywords = []sentimentKeyword{
	// Urgent signals
	{marker: "urgent", weight: 4},
	{marker: "asap", weight: 3},
	{marker: "immediately", weight: 3},
	{marker: "critical", weight: 4},
	{marker: "cutoff today", weight: 5},
	{marker: "action required", weight: 3},
	{marker: "deadline", weight: 2},

	// Escalation signals
	{marker: "escalate", weight: 4, escalation: true},
	{marker: "escalation", weight: 4, escalation: true},
	{marker: "unacceptable", weight: 3, escalation: true},
	{marker: "formal complaint", weight: 4, escalation: true},
	{marker: "your manager", weight: 3, escalation: true},

	// Negative signals
	{marker: "delay", weight: -2},
	{marker: "damaged", weight: -3},
	{marker: "missing", weight: -2},
	{marker: "dispute", weight: -3},
	{marker: "claim", weight: -2},
	{marker: "rolled", weight: -2},

	// Positive signals
	{marker: "thank you", weight: 2},
	{marker: "appreciate", weight: 2},
	{marker: "well done", weight: 3},
	{marker: "great service", weight: 3},
	{marker: "confirmed smoothly", weight: 2},
}

// SentimentMatch carries the mapped sentiment plus the raw signed score.
type SentimentMatch struct {
	Sentiment domain.Sentiment
	Score     int
}

// MatchSentiment scores subject+body against the weighted keyword groups and
// maps the cumulative score through fixed thresholds.
func MatchSentiment(subject, body string) *SentimentMatch {
	text := normalize(subject + " " + body)

	score := 0
	escalationHit := false
	for _, kw := range sentimentKeywords {
		if strings.Contains(text, kw.marker) {
			score += kw.weight
			if kw.escalation {
				escalationHit = true
			}
		}
	}

	sentiment := domain.SentimentNeutral
	switch {
	case score >= sentimentUrgentMin:
		sentiment = domain.SentimentUrgent
	case score >= sentimentEscalatedMin && escalationHit:
		sentiment = domain.SentimentEscalated
	case score < sentimentNegativeMax:
		sentiment = domain.SentimentNegative
	case score > sentimentPositiveMin:
		sentiment = domain.SentimentPositive
	}

	return &SentimentMatch{Sentiment: sentiment, Score: score}
}
