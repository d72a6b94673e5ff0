package workflow

import (
	"testing"
	"time"

	"cargo_server/core/domain"
)

// TestInferStatus tests document-driven status inference against dates.
func TestInferStatus(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-3 * 24 * time.Hour)
	future := now.Add(3 * 24 * time.Hour)

	tests := []struct {
		name     string
		doc      domain.DocumentType
		shipment *domain.Shipment
		want     domain.ShipmentStatus
	}{
		{
			name:     "proof of delivery always asserts delivered",
			doc:      domain.DocProofOfDelivery,
			shipment: &domain.Shipment{ETA: &future},
			want:     domain.StatusDelivered,
		},
		{
			name:     "arrival notice with passed ETA asserts arrived",
			doc:      domain.DocArrivalNotice,
			shipment: &domain.Shipment{ETA: &past},
			want:     domain.StatusArrived,
		},
		{
			name:     "arrival notice without ETA asserts arrived",
			doc:      domain.DocArrivalNotice,
			shipment: &domain.Shipment{},
			want:     domain.StatusArrived,
		},
		{
			name:     "arrival notice against a future ETA stays in transit",
			doc:      domain.DocArrivalNotice,
			shipment: &domain.Shipment{ETA: &future},
			want:     domain.StatusInTransit,
		},
		{
			name:     "delivery order follows the arrival rule",
			doc:      domain.DocDeliveryOrder,
			shipment: &domain.Shipment{ETA: &past},
			want:     domain.StatusArrived,
		},
		{
			name:     "bill of lading after ETD asserts in transit",
			doc:      domain.DocBillOfLading,
			shipment: &domain.Shipment{ETD: &past},
			want:     domain.StatusInTransit,
		},
		{
			name:     "bill of lading before ETD asserts booked",
			doc:      domain.DocBillOfLading,
			shipment: &domain.Shipment{ETD: &future},
			want:     domain.StatusBooked,
		},
		{
			name:     "booking confirmation asserts booked",
			doc:      domain.DocBookingConfirmation,
			shipment: &domain.Shipment{},
			want:     domain.StatusBooked,
		},
		{
			name:     "no document signal falls back to passed ETA",
			doc:      domain.DocGeneralCorrespondence,
			shipment: &domain.Shipment{ETA: &past, ETD: &past},
			want:     domain.StatusArrived,
		},
		{
			name:     "no document signal falls back to passed ETD",
			doc:      domain.DocUnknown,
			shipment: &domain.Shipment{ETD: &past, ETA: &future},
			want:     domain.StatusInTransit,
		},
		{
			name:     "no dates but a booking number asserts booked",
			doc:      domain.DocUnknown,
			shipment: &domain.Shipment{BookingNumber: "999999999"},
			want:     domain.StatusBooked,
		},
		{
			name:     "nothing to infer stays draft",
			doc:      domain.DocUnknown,
			shipment: &domain.Shipment{},
			want:     domain.StatusDraft,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferStatus(tt.doc, tt.shipment, now)
			if got != tt.want {
				t.Errorf("InferStatus(%v) = %v, want %v", tt.doc, got, tt.want)
			}
		})
	}
}

// TestStatusMonotonicWithMaxStatus verifies the caller-side combination rule
// never regresses a shipment.
func TestStatusMonotonicWithMaxStatus(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	shipment := &domain.Shipment{Status: domain.StatusArrived}
	inferred := InferStatus(domain.DocBookingConfirmation, shipment, now)

	if got := domain.MaxStatus(shipment.Status, inferred); got != domain.StatusArrived {
		t.Errorf("MaxStatus(arrived, %v) = %v, want arrived", inferred, got)
	}

	if got := domain.MaxStatus(domain.StatusCancelled, domain.StatusDelivered); got != domain.StatusCancelled {
		t.Errorf("MaxStatus(cancelled, delivered) = %v, cancelled is terminal", got)
	}
}
