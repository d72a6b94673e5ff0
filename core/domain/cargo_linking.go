package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdentifierType is the kind of shipment identifier used for matching.
// The declaration order below is also the conflict tie-break priority:
// booking numbers are the strongest identifiers, container numbers the
// weakest (containers recirculate across shipments over time).
type IdentifierType string

const (
	IdentBookingNumber   IdentifierType = "booking_number"
	IdentBLNumber        IdentifierType = "bl_number"
	IdentContainerNumber IdentifierType = "container_number"
	IdentVesselVoyage    IdentifierType = "vessel_voyage"
)

// IdentifierPriority orders identifier types for conflict resolution.
// Lower is stronger.
func IdentifierPriority(t IdentifierType) int {
	switch t {
	case IdentBookingNumber:
		return 0
	case IdentBLNumber:
		return 1
	case IdentContainerNumber:
		return 2
	default:
		return 3
	}
}

// LinkingKeys are the candidate identifier values extracted from one email,
// grouped by type. Values are deduplicated, order preserved.
type LinkingKeys struct {
	BookingNumbers   []string `json:"booking_numbers,omitempty"`
	BLNumbers        []string `json:"bl_numbers,omitempty"`
	ContainerNumbers []string `json:"container_numbers,omitempty"`
	VesselVoyages    []string `json:"vessel_voyages,omitempty"`
}

// IsEmpty reports whether no identifier of any type was extracted.
// Empty keys must never trigger a shipment lookup.
func (k *LinkingKeys) IsEmpty() bool {
	return len(k.BookingNumbers) == 0 && len(k.BLNumbers) == 0 &&
		len(k.ContainerNumbers) == 0 && len(k.VesselVoyages) == 0
}

// Count returns the total number of identifier values across all types.
func (k *LinkingKeys) Count() int {
	return len(k.BookingNumbers) + len(k.BLNumbers) + len(k.ContainerNumbers) + len(k.VesselVoyages)
}

// MatchedIdentifier records one identifier that resolved to a shipment.
type MatchedIdentifier struct {
	Type  IdentifierType `json:"type"`
	Value string         `json:"value"`
}

// LinkAction is the decision taken for a link candidate.
type LinkAction string

const (
	LinkActionAuto      LinkAction = "auto_link"
	LinkActionSuggested LinkAction = "suggested"
	LinkActionRejected  LinkAction = "rejected"
)

// LinkResult is the outcome of processing one email through the linking
// service. Failures in the primary resolution path are reported here via
// Matched=false + Reasoning, never as errors, so batch callers continue.
type LinkResult struct {
	EmailID         uuid.UUID           `json:"email_id"`
	Matched         bool                `json:"matched"`
	ShipmentID      *uuid.UUID          `json:"shipment_id,omitempty"`
	ConfidenceScore int                 `json:"confidence_score"`
	LinkType        LinkAction          `json:"link_type,omitempty"`
	MatchedIdents   []MatchedIdentifier `json:"matched_identifiers,omitempty"`
	Conflict        bool                `json:"conflict"`
	Reasoning       string              `json:"reasoning"`
}

// EmailLink is the persisted record of an email attached to a shipment.
type EmailLink struct {
	ID         int64      `json:"id"`
	EmailID    uuid.UUID  `json:"email_id"`
	ShipmentID uuid.UUID  `json:"shipment_id"`
	LinkType   LinkAction `json:"link_type"`
	Confidence int        `json:"confidence"`
	Reasoning  string     `json:"reasoning,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// LinkSuggestion is a reviewable medium-confidence candidate. It mutates
// nothing on the shipment until an operator confirms it.
type LinkSuggestion struct {
	ID         int64     `json:"id"`
	EmailID    uuid.UUID `json:"email_id"`
	ShipmentID uuid.UUID `json:"shipment_id"`
	Confidence int       `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
	Reviewed   bool      `json:"reviewed"`
	CreatedAt  time.Time `json:"created_at"`
}

// BatchLinkSummary aggregates a batch run over unlinked emails.
type BatchLinkSummary struct {
	Processed  int `json:"processed"`
	Linked     int `json:"linked"`
	Candidates int `json:"candidates"`
	Errors     int `json:"errors"`
}

// AuditEvent is an append-only operational record.
type AuditEvent struct {
	ID        int64          `json:"id"`
	EmailID   *uuid.UUID     `json:"email_id,omitempty"`
	Shipment  *uuid.UUID     `json:"shipment_id,omitempty"`
	Kind      string         `json:"kind"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Audit event kinds.
const (
	AuditLinkConflict    = "link_conflict"
	AuditAutoLink        = "auto_link"
	AuditLinkSuggestion  = "link_suggestion"
	AuditStatusUpgrade   = "status_upgrade"
	AuditWorkflowAdvance = "workflow_advance"
	AuditResync          = "resync"
)
