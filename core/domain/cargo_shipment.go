package domain

import (
	"time"

	"github.com/google/uuid"
)

// ShipmentStatus is the coarse operational status of a shipment. Status moves
// forward only (or to cancelled); the priority order below is the single
// source of truth for "forward".
type ShipmentStatus string

const (
	StatusDraft     ShipmentStatus = "draft"
	StatusBooked    ShipmentStatus = "booked"
	StatusInTransit ShipmentStatus = "in_transit"
	StatusArrived   ShipmentStatus = "arrived"
	StatusDelivered ShipmentStatus = "delivered"
	StatusCancelled ShipmentStatus = "cancelled"
)

var statusPriority = map[ShipmentStatus]int{
	StatusDraft:     0,
	StatusBooked:    1,
	StatusInTransit: 2,
	StatusArrived:   3,
	StatusDelivered: 4,
}

// Priority returns the rank of a status in the forward order. Cancelled sits
// outside the order and returns -1.
func (s ShipmentStatus) Priority() int {
	if p, ok := statusPriority[s]; ok {
		return p
	}
	return -1
}

// MaxStatus returns whichever of the two statuses is further along.
// Cancelled always wins: it is the only allowed regression.
func MaxStatus(a, b ShipmentStatus) ShipmentStatus {
	if a == StatusCancelled || b == StatusCancelled {
		return StatusCancelled
	}
	if b.Priority() > a.Priority() {
		return b
	}
	return a
}

// Shipment is the external entity this core attaches emails to. Shipments are
// created exclusively upstream (on a direct-carrier booking confirmation);
// this core only reads them and fills empty fields.
type Shipment struct {
	ID              uuid.UUID      `json:"id"`
	BookingNumber   string         `json:"booking_number,omitempty"`
	BLNumber        string         `json:"bl_number,omitempty"`
	ContainerNumber string         `json:"container_number,omitempty"`
	VesselVoyage    string         `json:"vessel_voyage,omitempty"`
	PortOfLoading   string         `json:"port_of_loading,omitempty"`
	PortOfDischarge string         `json:"port_of_discharge,omitempty"`
	CarrierName     string         `json:"carrier_name,omitempty"`
	Status          ShipmentStatus `json:"status"`
	WorkflowState   WorkflowState  `json:"workflow_state"`
	ETD             *time.Time     `json:"etd,omitempty"`
	ETA             *time.Time     `json:"eta,omitempty"`
	CutoffSI        *time.Time     `json:"cutoff_si,omitempty"`
	CutoffVGM       *time.Time     `json:"cutoff_vgm,omitempty"`
	CutoffCargo     *time.Time     `json:"cutoff_cargo,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ShipmentFieldUpdate carries values to backfill on a shipment. Only fields
// that are currently empty on the shipment may be written; nil/empty entries
// are skipped.
type ShipmentFieldUpdate struct {
	BLNumber        string
	ContainerNumber string
	VesselVoyage    string
	PortOfLoading   string
	PortOfDischarge string
	ETD             *time.Time
	ETA             *time.Time
	CutoffSI        *time.Time
	CutoffVGM       *time.Time
	CutoffCargo     *time.Time
}

// IsEmpty reports whether the update carries nothing to write.
func (u *ShipmentFieldUpdate) IsEmpty() bool {
	return u.BLNumber == "" && u.ContainerNumber == "" && u.VesselVoyage == "" &&
		u.PortOfLoading == "" && u.PortOfDischarge == "" &&
		u.ETD == nil && u.ETA == nil &&
		u.CutoffSI == nil && u.CutoffVGM == nil && u.CutoffCargo == nil
}
