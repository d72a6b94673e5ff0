package linking

import (
	"fmt"
	"strings"
	"time"

	"cargo_server/core/domain"
)

// =============================================================================
// Link Confidence Scorer
// =============================================================================

// Identifier strength scores. Booking numbers are carrier-issued and unique
// per shipment; container numbers recirculate across shipments over time and
// are the weakest evidence on their own.
const (
	scoreBookingNumber   = 55
	scoreBLNumber        = 48
	scoreContainerNumber = 38
	scoreVesselVoyage    = 20

	// Each additional distinct matching identifier type adds corroboration.
	extraTypeBonus    = 5
	maxExtraTypeBonus = 10
)

// Sender authority scores.
const (
	scoreSenderCarrier  = 20
	scoreSenderInternal = 12
	scoreSenderOther    = 5
)

// Document-type fit and temporal proximity scores.
const (
	scoreDocFitStrong = 10
	scoreDocFitWeak   = 3

	scoreTemporalWeek    = 10
	scoreTemporalMonth   = 6
	scoreTemporalQuarter = 3
)

// Scorer weighs a link candidate's evidence into a 0-100 confidence.
type Scorer struct {
	carrierDomains  []string
	internalDomains []string
}

// NewScorer creates a scorer with the configured carrier and internal
// domains for sender-authority weighting.
func NewScorer(carrierDomains, internalDomains []string) *Scorer {
	return &Scorer{
		carrierDomains:  normalizeDomains(carrierDomains),
		internalDomains: normalizeDomains(internalDomains),
	}
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// ScoreInput is the evidence for one candidate link.
type ScoreInput struct {
	Matched      []domain.MatchedIdentifier
	SenderEmail  string
	DocumentType domain.DocumentType
	ReceivedAt   time.Time
	ShipmentAge  time.Time // shipment created_at
}

// Score computes the confidence and a human-readable reasoning trail.
func (s *Scorer) Score(input *ScoreInput) (int, string) {
	var reasons []string

	identScore, identReason := scoreIdentifiers(input.Matched)
	reasons = append(reasons, identReason)

	senderScore, senderReason := s.scoreSender(input.SenderEmail)
	reasons = append(reasons, senderReason)

	fitScore, fitReason := scoreDocumentFit(input.DocumentType)
	reasons = append(reasons, fitReason)

	temporalScore, temporalReason := scoreTemporal(input.ReceivedAt, input.ShipmentAge)
	reasons = append(reasons, temporalReason)

	total := identScore + senderScore + fitScore + temporalScore
	if total > 100 {
		total = 100
	}

	return total, strings.Join(reasons, "; ")
}

// scoreIdentifiers takes the strongest matched type as the base and adds a
// capped bonus per additional distinct type, so a match via N types never
// scores below the same match via any one of them alone.
func scoreIdentifiers(matched []domain.MatchedIdentifier) (int, string) {
	if len(matched) == 0 {
		return 0, "no identifiers matched"
	}

	types := make(map[domain.IdentifierType]bool)
	best := 0
	for _, m := range matched {
		types[m.Type] = true
		if sc := identifierStrength(m.Type); sc > best {
			best = sc
		}
	}

	bonus := (len(types) - 1) * extraTypeBonus
	if bonus > maxExtraTypeBonus {
		bonus = maxExtraTypeBonus
	}

	return best + bonus, fmt.Sprintf("matched via %d identifier type(s)", len(types))
}

func identifierStrength(t domain.IdentifierType) int {
	switch t {
	case domain.IdentBookingNumber:
		return scoreBookingNumber
	case domain.IdentBLNumber:
		return scoreBLNumber
	case domain.IdentContainerNumber:
		return scoreContainerNumber
	default:
		return scoreVesselVoyage
	}
}

func (s *Scorer) scoreSender(email string) (int, string) {
	addr := strings.ToLower(strings.TrimSpace(email))
	for _, d := range s.carrierDomains {
		if strings.HasSuffix(addr, "@"+d) {
			return scoreSenderCarrier, "sender is a direct carrier"
		}
	}
	for _, d := range s.internalDomains {
		if strings.HasSuffix(addr, "@"+d) {
			return scoreSenderInternal, "sender is an internal forward"
		}
	}
	return scoreSenderOther, "sender is a third party"
}

// scoreDocumentFit rewards document types that naturally reference a
// shipment; general correspondence barely corroborates a link.
func scoreDocumentFit(doc domain.DocumentType) (int, string) {
	switch doc {
	case domain.DocBookingConfirmation, domain.DocBookingAmendment,
		domain.DocBillOfLading, domain.DocArrivalNotice, domain.DocDeliveryOrder,
		domain.DocContainerRelease, domain.DocProofOfDelivery,
		domain.DocSIConfirmation, domain.DocShippingInstruction,
		domain.DocVGMDeclaration, domain.DocCustomsClearance:
		return scoreDocFitStrong, "document type fits linking context"
	case domain.DocUnknown, "":
		return 0, "no document type signal"
	default:
		return scoreDocFitWeak, "document type weakly fits linking context"
	}
}

// scoreTemporal rewards proximity between email receipt and shipment
// creation; an email months after a shipment was opened is weaker evidence.
func scoreTemporal(receivedAt, shipmentCreated time.Time) (int, string) {
	if receivedAt.IsZero() || shipmentCreated.IsZero() {
		return 0, "no temporal signal"
	}

	gap := receivedAt.Sub(shipmentCreated)
	if gap < 0 {
		gap = -gap
	}

	switch {
	case gap <= 7*24*time.Hour:
		return scoreTemporalWeek, "email within a week of shipment creation"
	case gap <= 30*24*time.Hour:
		return scoreTemporalMonth, "email within a month of shipment creation"
	case gap <= 90*24*time.Hour:
		return scoreTemporalQuarter, "email within a quarter of shipment creation"
	default:
		return 0, "email long after shipment creation"
	}
}
