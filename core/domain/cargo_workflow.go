package domain

// WorkflowState is the fine-grained operational milestone of a shipment,
// distinct from the coarse ShipmentStatus.
type WorkflowState string

const (
	// === Pre-departure ===
	StateBookingConfirmed WorkflowState = "booking_confirmed"
	StateSISubmitted      WorkflowState = "si_submitted"
	StateSIApproved       WorkflowState = "si_approved"
	StateVGMSubmitted     WorkflowState = "vgm_submitted"
	StateExportCleared    WorkflowState = "export_customs_cleared"

	// === In-transit ===
	StateBLIssued       WorkflowState = "bl_issued"
	StateVesselDeparted WorkflowState = "vessel_departed"

	// === Arrival ===
	StateArrivalNoticed    WorkflowState = "arrival_notice_received"
	StateImportCleared     WorkflowState = "import_customs_cleared"
	StateDeliveryOrdered   WorkflowState = "delivery_order_issued"
	StateContainerReleased WorkflowState = "container_released"

	// === Delivery ===
	StateOutForDelivery WorkflowState = "out_for_delivery"
	StateDelivered      WorkflowState = "delivered"
)

// WorkflowPhase groups states into the four sequential operational phases.
type WorkflowPhase string

const (
	PhasePreDeparture WorkflowPhase = "pre_departure"
	PhaseInTransit    WorkflowPhase = "in_transit"
	PhaseArrival      WorkflowPhase = "arrival"
	PhaseDelivery     WorkflowPhase = "delivery"
)

// WorkflowTransitionRule is static configuration describing how a state is
// entered. A state is reachable via document type OR email type (dual
// trigger); operational events arrive both formally and informally, and
// either is sufficient evidence.
type WorkflowTransitionRule struct {
	State         WorkflowState    `json:"state"`
	Rank          int              `json:"rank"`
	Phase         WorkflowPhase    `json:"phase"`
	DocumentTypes []DocumentType   `json:"document_types,omitempty"`
	EmailTypes    []EmailType      `json:"email_types,omitempty"`
	SubjectHints  []string         `json:"subject_hints,omitempty"` // required alongside EmailTypes when set
	Direction     Direction        `json:"direction"`
	AllowedFrom   []SenderCategory `json:"allowed_from,omitempty"` // empty = any sender
	Prerequisites []WorkflowState  `json:"prerequisites,omitempty"`
	Parallel      bool             `json:"parallel"` // may be recorded alongside same-rank states
}
