package domain

import (
	"time"

	"github.com/google/uuid"
)

// Email is the read-only input to the decision engine. Emails are ingested
// and persisted by an upstream collaborator; this core never mutates them.
type Email struct {
	ID                  uuid.UUID         `json:"id"`
	Subject             string            `json:"subject"`
	BodyText            string            `json:"body_text"`
	FromEmail           string            `json:"from_email"`
	FromName            string            `json:"from_name,omitempty"`
	TrueSenderEmail     string            `json:"true_sender_email,omitempty"` // resolved after unwrapping forwards
	Headers             map[string]string `json:"headers,omitempty"`
	AttachmentFilenames []string          `json:"attachment_filenames,omitempty"`
	ReceivedAt          time.Time         `json:"received_at"`
	ShipmentID          *uuid.UUID        `json:"shipment_id,omitempty"` // set once linked
}

// HasAttachments reports whether the email carries any attachment.
func (e *Email) HasAttachments() bool {
	return len(e.AttachmentFilenames) > 0
}

// EntityType identifies the kind of value an entity extraction captured.
type EntityType string

const (
	EntityBookingNumber   EntityType = "booking_number"
	EntityBLNumber        EntityType = "bl_number"
	EntityContainerNumber EntityType = "container_number"
	EntityVesselVoyage    EntityType = "vessel_voyage"
	EntityPortOfLoading   EntityType = "port_of_loading"
	EntityPortOfDischarge EntityType = "port_of_discharge"
	EntityETD             EntityType = "etd"
	EntityETA             EntityType = "eta"
	EntityCutoffSI        EntityType = "cutoff_si"
	EntityCutoffVGM       EntityType = "cutoff_vgm"
	EntityCutoffCargo     EntityType = "cutoff_cargo"
)

// EntityExtraction is a single identifier or field value pulled out of an
// email by the upstream extraction collaborator.
type EntityExtraction struct {
	ID        int64      `json:"id"`
	EmailID   uuid.UUID  `json:"email_id"`
	Type      EntityType `json:"type"`
	Value     string     `json:"value"`
	CreatedAt time.Time  `json:"created_at"`
}
