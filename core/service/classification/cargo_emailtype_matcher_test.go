package classification

import (
	"testing"

	"cargo_server/core/domain"
)

// TestMatchEmailType tests intent detection with sender allow-lists and the
// reply subject penalty.
func TestMatchEmailType(t *testing.T) {
	tests := []struct {
		name        string
		subject     string
		body        string
		sender      domain.SenderCategory
		wantType    domain.EmailType
		wantSource  domain.ClassificationSource
		wantMinConf int
		wantMatch   bool
	}{
		{
			name:        "booking request from shipper",
			subject:     "Booking Request for 2 x 40HC to Rotterdam",
			body:        "Please book space on the next available vessel.",
			sender:      domain.SenderShipper,
			wantType:    domain.EmailBookingRequest,
			wantSource:  domain.SourceSubject,
			wantMinConf: 85,
			wantMatch:   true,
		},
		{
			name:      "booking request wording from carrier is not a booking request",
			subject:   "Booking Request received",
			body:      "We have received it.",
			sender:    domain.SenderCarrier,
			wantMatch: false,
		},
		{
			name:        "vessel departure update restricted to carrier",
			subject:     "Vessel departed Busan",
			body:        "MV EXAMPLE sailed on schedule, ETD as planned.",
			sender:      domain.SenderCarrier,
			wantType:    domain.EmailStatusUpdate,
			wantSource:  domain.SourceSubject,
			wantMinConf: 82,
			wantMatch:   true,
		},
		{
			name:        "document request from anyone",
			subject:     "Missing paperwork",
			body:        "Please send a copy of the draft invoice.",
			sender:      domain.SenderConsignee,
			wantType:    domain.EmailDocumentRequest,
			wantSource:  domain.SourceBody,
			wantMinConf: 75,
			wantMatch:   true,
		},
		{
			name:        "reply body beats inherited subject",
			subject:     "RE: Booking Confirmation",
			body:        "Please send the draft B/L copy for review.",
			sender:      domain.SenderConsignee,
			wantType:    domain.EmailDocumentRequest,
			wantSource:  domain.SourceBody,
			wantMinConf: 80,
			wantMatch:   true,
		},
		{
			name:        "reply subject-only match is penalized but survives",
			subject:     "RE: URGENT: SI cutoff approaching",
			body:        "Will revert shortly.",
			sender:      domain.SenderCarrier,
			wantType:    domain.EmailUrgentAction,
			wantSource:  domain.SourceSubject,
			wantMinConf: 70,
			wantMatch:   true,
		},
		{
			name:      "reply subject-only match below floor after penalty drops",
			subject:   "RE: Inquiry",
			body:      "Noted with thanks.",
			sender:    domain.SenderConsignee,
			wantMatch: false,
		},
		{
			name:      "no intent signal",
			subject:   "Weekly summary",
			body:      "All shipments proceeding normally.",
			sender:    domain.SenderInternal,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := ExtractThreadContext(&ThreadInput{Subject: tt.subject, BodyText: tt.body})

			match := MatchEmailType(tc, tt.sender)

			if !tt.wantMatch {
				if match != nil {
					t.Errorf("expected no match, got %v (conf=%d, source=%v)", match.Type, match.Confidence, match.Source)
				}
				return
			}
			if match == nil {
				t.Fatal("expected a match, got nil")
			}
			if match.Type != tt.wantType {
				t.Errorf("type = %v, want %v", match.Type, tt.wantType)
			}
			if match.Source != tt.wantSource {
				t.Errorf("source = %v, want %v", match.Source, tt.wantSource)
			}
			if match.Confidence < tt.wantMinConf {
				t.Errorf("confidence = %d, want >= %d", match.Confidence, tt.wantMinConf)
			}
		})
	}
}

// TestReplySubjectPenaltyApplied verifies the penalty arithmetic on a
// threaded subject-only match.
func TestReplySubjectPenaltyApplied(t *testing.T) {
	original := ExtractThreadContext(&ThreadInput{Subject: "URGENT: action required today"})
	reply := ExtractThreadContext(&ThreadInput{Subject: "RE: URGENT: action required today"})

	origMatch := MatchEmailType(original, domain.SenderCarrier)
	replyMatch := MatchEmailType(reply, domain.SenderCarrier)

	if origMatch == nil || replyMatch == nil {
		t.Fatalf("expected matches for both, got orig=%v reply=%v", origMatch, replyMatch)
	}
	if replyMatch.Confidence != origMatch.Confidence-replySubjectPenalty {
		t.Errorf("reply confidence = %d, want %d", replyMatch.Confidence, origMatch.Confidence-replySubjectPenalty)
	}
}
