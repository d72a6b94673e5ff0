package classification

import (
	"testing"

	"cargo_server/core/domain"
)

// TestMatchDocumentContent tests classification from extracted document text.
func TestMatchDocumentContent(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantType     domain.DocumentType
		wantMinConf  int
		wantMatch    bool
	}{
		{
			name:        "booking confirmation with supporting fields",
			text:        "BOOKING CONFIRMATION\nBooking No: 999999999\nVessel: EVER GIVEN Voyage 123E\nETD: 2026-09-10",
			wantType:    domain.DocBookingConfirmation,
			wantMinConf: 90,
			wantMatch:   true,
		},
		{
			name:        "bill of lading",
			text:        "BILL OF LADING\nB/L No: ABCD1234567\nShipped on Board\nPort of Loading: BUSAN",
			wantType:    domain.DocBillOfLading,
			wantMinConf: 88,
			wantMatch:   true,
		},
		{
			name:        "arrival notice",
			text:        "ARRIVAL NOTICE\nETA: 2026-09-15\nPort of Discharge: LONG BEACH\nFreight Collect",
			wantType:    domain.DocArrivalNotice,
			wantMinConf: 90,
			wantMatch:   true,
		},
		{
			name:        "proof of delivery",
			text:        "PROOF OF DELIVERY\nReceived in good order\nSignature: J. Smith",
			wantType:    domain.DocProofOfDelivery,
			wantMinConf: 92,
			wantMatch:   true,
		},
		{
			name:        "shipping instruction without confirmation wording",
			text:        "SHIPPING INSTRUCTION\nShipper: ACME EXPORTS\nConsignee: GLOBAL IMPORTS\nNotify Party: SAME AS CONSIGNEE",
			wantType:    domain.DocShippingInstruction,
			wantMinConf: 85,
			wantMatch:   true,
		},
		{
			name:      "empty text",
			text:      "",
			wantMatch: false,
		},
		{
			name:      "unrelated text",
			text:      "Lunch menu for the office canteen this week",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := MatchDocumentContent(tt.text)

			if !tt.wantMatch {
				if match != nil {
					t.Errorf("expected no match, got %v (conf=%d)", match.Type, match.Confidence)
				}
				return
			}
			if match == nil {
				t.Fatal("expected a match, got nil")
			}
			if match.Type != tt.wantType {
				t.Errorf("type = %v, want %v", match.Type, tt.wantType)
			}
			if match.Confidence < tt.wantMinConf {
				t.Errorf("confidence = %d, want >= %d", match.Confidence, tt.wantMinConf)
			}
			if match.Source != domain.SourceDocumentContent {
				t.Errorf("source = %v, want %v", match.Source, domain.SourceDocumentContent)
			}
		})
	}
}

// TestMatchEmailContent tests the filename > subject > body priority and the
// threaded-subject exclusion.
func TestMatchEmailContent(t *testing.T) {
	tests := []struct {
		name       string
		email      *domain.Email
		wantType   domain.DocumentType
		wantSource domain.ClassificationSource
		wantMatch  bool
	}{
		{
			name: "attachment filename beats subject",
			email: &domain.Email{
				Subject:             "Documents for your shipment",
				AttachmentFilenames: []string{"Arrival Notice - MSCU1234567.pdf"},
				BodyText:            "Please find attached.",
			},
			wantType:   domain.DocArrivalNotice,
			wantSource: domain.SourceAttachmentName,
			wantMatch:  true,
		},
		{
			name: "original email classifies from subject",
			email: &domain.Email{
				Subject:  "Booking Confirmation: 999999999",
				BodyText: "Please see details below.",
			},
			wantType:   domain.DocBookingConfirmation,
			wantSource: domain.SourceSubject,
			wantMatch:  true,
		},
		{
			name: "reply subject without body evidence does not classify",
			email: &domain.Email{
				Subject:  "RE: Arrival Notice - BL ABCD1234567",
				BodyText: "Thanks, noted. Will arrange trucking.",
			},
			wantMatch: false,
		},
		{
			name: "reply classifies from fresh body evidence",
			email: &domain.Email{
				Subject:  "RE: Shipment update",
				BodyText: "Attached the arrival notice, ETA next Monday.\n\nOn Mon, Jan 5, 2026 at 3:04 PM Ops Team wrote:\n> earlier message",
			},
			wantType:   domain.DocArrivalNotice,
			wantSource: domain.SourceBody,
			wantMatch:  true,
		},
		{
			name: "reply quoted content is ignored",
			email: &domain.Email{
				Subject:  "RE: Shipment update",
				BodyText: "Understood, thank you.\n\nOn Mon, Jan 5, 2026 at 3:04 PM Ops Team wrote:\n> arrival notice attached, eta monday",
			},
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := ExtractThreadContext(&ThreadInput{
				Subject:  tt.email.Subject,
				BodyText: tt.email.BodyText,
			})

			match := MatchEmailContent(tt.email, tc)

			if !tt.wantMatch {
				if match != nil {
					t.Errorf("expected no match, got %v from %v (conf=%d)", match.Type, match.Source, match.Confidence)
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
			if match.Confidence < MinConfidence {
				t.Errorf("confidence = %d, want >= %d", match.Confidence, MinConfidence)
			}
		})
	}
}
