package classification

import (
	"testing"

	"cargo_server/core/domain"
)

// TestSenderMatcher tests configured domains first, generic families after.
func TestSenderMatcher(t *testing.T) {
	matcher := NewSenderMatcher(&SenderMatcherConfig{
		CarrierDomains:  []string{"maersk.com", "one-line.example"},
		InternalDomains: []string{"forwardco.example"},
		CustomsDomains:  []string{"kcustoms.example"},
		TruckerDomains:  []string{"quickhaul.example"},
	})

	tests := []struct {
		address string
		want    domain.SenderCategory
	}{
		{"noreply@maersk.com", domain.SenderCarrier},
		{"booking@one-line.example", domain.SenderCarrier},
		{"ops@forwardco.example", domain.SenderInternal},
		{"declarations@kcustoms.example", domain.SenderCustomsAgent},
		{"dispatch@quickhaul.example", domain.SenderTrucker},

		// Generic families.
		{"agent@abc-customs-broker.example", domain.SenderCustomsAgent},
		{"dispatch@fasttrucking.example", domain.SenderTrucker},
		{"sales@acme-export.example", domain.SenderShipper},
		{"receiving@globalimport.example", domain.SenderConsignee},

		// No signal.
		{"john.doe@gmail.com", domain.SenderUnknown},
		{"", domain.SenderUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			got := matcher.Match(tt.address)
			if got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

// TestSenderMatcherOrder verifies that a configured organization wins over a
// generic family marker present in the same address.
func TestSenderMatcherOrder(t *testing.T) {
	matcher := NewSenderMatcher(&SenderMatcherConfig{
		CarrierDomains: []string{"export-carrier.example"},
	})

	// "export" would hit the generic shipper family, but the configured
	// carrier domain is evaluated first.
	got := matcher.Match("notices@export-carrier.example")
	if got != domain.SenderCarrier {
		t.Errorf("Match = %v, want %v", got, domain.SenderCarrier)
	}
}

// TestSenderMatcherNilConfig verifies the matcher still applies generic
// families without any configured domains.
func TestSenderMatcherNilConfig(t *testing.T) {
	matcher := NewSenderMatcher(nil)

	if got := matcher.Match("clerk@citycustoms.example"); got != domain.SenderCustomsAgent {
		t.Errorf("Match = %v, want %v", got, domain.SenderCustomsAgent)
	}
	if got := matcher.Match("someone@nowhere.example"); got != domain.SenderUnknown {
		t.Errorf("Match = %v, want %v", got, domain.SenderUnknown)
	}
}
