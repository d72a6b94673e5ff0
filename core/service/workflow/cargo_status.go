package workflow

import (
	"time"

	"cargo_server/core/domain"
)

// =============================================================================
// Status Inference
// =============================================================================

// InferStatus derives the coarse shipment status asserted by one classified
// email, combined with the shipment's dates. The caller applies
// MaxStatus(inferred, current); status never regresses here.
//
//   - Proof-of-delivery documents always assert delivered, whatever the dates
//     say; a signed POD is terminal evidence.
//   - Arrival-type documents assert arrived only if the ETA has passed or is
//     absent. An arrival document against a future ETA is treated as a likely
//     misclassification and the shipment stays in transit.
//   - Bill-of-lading documents assert in_transit once the ETD has passed,
//     else booked.
//   - Without a document-type signal, date comparison against now is the
//     fallback.
func InferStatus(doc domain.DocumentType, shipment *domain.Shipment, now time.Time) domain.ShipmentStatus {
	switch doc {
	case domain.DocProofOfDelivery:
		return domain.StatusDelivered

	case domain.DocArrivalNotice, domain.DocDeliveryOrder, domain.DocContainerRelease:
		if shipment.ETA == nil || !shipment.ETA.After(now) {
			return domain.StatusArrived
		}
		return domain.StatusInTransit

	case domain.DocBillOfLading:
		if shipment.ETD != nil && !shipment.ETD.After(now) {
			return domain.StatusInTransit
		}
		return domain.StatusBooked

	case domain.DocBookingConfirmation, domain.DocBookingAmendment:
		return domain.StatusBooked
	}

	return inferFromDates(shipment, now)
}

func inferFromDates(shipment *domain.Shipment, now time.Time) domain.ShipmentStatus {
	if shipment.ETA != nil && !shipment.ETA.After(now) {
		return domain.StatusArrived
	}
	if shipment.ETD != nil && !shipment.ETD.After(now) {
		return domain.StatusInTransit
	}
	if shipment.BookingNumber != "" {
		return domain.StatusBooked
	}
	return domain.StatusDraft
}
