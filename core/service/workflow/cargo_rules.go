// Package workflow implements the dual-trigger shipment workflow state
// machine: a static rule table over four operational phases, sender-authority
// checks, and coarse status inference from document types and dates.
package workflow

import "cargo_server/core/domain"

// transitionRules is the ordered state table. Rules are plain data; the
// machine is a small evaluator over them. Each state is entered by inbound OR
// outbound events, never both, and may carry a sender allow-list.
var transitionRules = []domain.WorkflowTransitionRule{
	// === Pre-departure ===
	{
		State:         domain.StateBookingConfirmed,
		Rank:          1,
		Phase:         domain.PhasePreDeparture,
		DocumentTypes: []domain.DocumentType{domain.DocBookingConfirmation},
		Direction:     domain.DirectionInbound,
		AllowedFrom:   []domain.SenderCategory{domain.SenderCarrier, domain.SenderInternal},
	},
	{
		State:         domain.StateSISubmitted,
		Rank:          2,
		Phase:         domain.PhasePreDeparture,
		DocumentTypes: []domain.DocumentType{domain.DocShippingInstruction},
		Direction:     domain.DirectionOutbound,
		AllowedFrom:   []domain.SenderCategory{domain.SenderInternal},
		Prerequisites: []domain.WorkflowState{domain.StateBookingConfirmed},
	},
	{
		State:         domain.StateSIApproved,
		Rank:          3,
		Phase:         domain.PhasePreDeparture,
		DocumentTypes: []domain.DocumentType{domain.DocSIConfirmation},
		EmailTypes:    []domain.EmailType{domain.EmailApprovalGranted},
		SubjectHints:  []string{"si", "shipping instruction"},
		Direction:     domain.DirectionInbound,
		AllowedFrom:   []domain.SenderCategory{domain.SenderCarrier},
		Prerequisites: []domain.WorkflowState{domain.StateSISubmitted},
	},
	{
		State:         domain.StateVGMSubmitted,
		Rank:          3,
		Phase:         domain.PhasePreDeparture,
		DocumentTypes: []domain.DocumentType{domain.DocVGMDeclaration},
		Direction:     domain.DirectionOutbound,
		AllowedFrom:   []domain.SenderCategory{domain.SenderInternal, domain.SenderShipper},
		Prerequisites: []domain.WorkflowState{domain.StateBookingConfirmed},
		Parallel:      true,
	},
	{
		State:         domain.StateExportCleared,
		Rank:          4,
		Phase:         domain.PhasePreDeparture,
		DocumentTypes: []domain.DocumentType{domain.DocCustomsClearance},
		Direction:     domain.DirectionInbound,
		AllowedFrom:   []domain.SenderCategory{domain.SenderCustomsAgent},
		Prerequisites: []domain.WorkflowState{domain.StateSIApproved},
	},

	// === In-transit ===
	{
		State:         domain.StateBLIssued,
		Rank:          5,
		Phase:         domain.PhaseInTransit,
		DocumentTypes: []domain.DocumentType{domain.DocBillOfLading},
		Direction:     domain.DirectionInbound,
		AllowedFrom:   []domain.SenderCategory{domain.SenderCarrier, domain.SenderInternal},
		Prerequisites: []domain.WorkflowState{domain.StateSIApproved},
	},
	{
		State:        domain.StateVesselDeparted,
		Rank:         6,
		Phase:        domain.PhaseInTransit,
		EmailTypes:   []domain.EmailType{domain.EmailStatusUpdate},
		SubjectHints: []string{"departed", "sailed", "departure"},
		Direction:    domain.DirectionInbound,
		AllowedFrom:  []domain.SenderCategory{domain.SenderCarrier},
		Prerequisites: []domain.WorkflowState{
			domain.StateBookingConfirmed,
		},
	},

	// === Arrival ===
	{
		State:         domain.StateArrivalNoticed,
		Rank:          7,
		Phase:         domain.PhaseArrival,
		DocumentTypes: []domain.DocumentType{domain.DocArrivalNotice},
		Direction:     domain.DirectionInbound,
		AllowedFrom:   []domain.SenderCategory{domain.SenderCarrier, domain.SenderInternal},
		Prerequisites: []domain.WorkflowState{domain.StateVesselDeparted},
	},
	{
		State:         domain.StateImportCleared,
		Rank:          8,
		Phase:         domain.PhaseArrival,
		DocumentTypes: []domain.DocumentType{domain.DocCustomsClearance},
		Direction:     domain.DirectionInbound,
		AllowedFrom:   []domain.SenderCategory{domain.SenderCustomsAgent},
		Prerequisites: []domain.WorkflowState{domain.StateArrivalNoticed},
	},
	{
		State:         domain.StateDeliveryOrdered,
		Rank:          9,
		Phase:         domain.PhaseArrival,
		DocumentTypes: []domain.DocumentType{domain.DocDeliveryOrder},
		Direction:     domain.DirectionInbound,
		AllowedFrom:   []domain.SenderCategory{domain.SenderCarrier, domain.SenderInternal},
		Prerequisites: []domain.WorkflowState{domain.StateArrivalNoticed},
	},
	{
		State:         domain.StateContainerReleased,
		Rank:          9,
		Phase:         domain.PhaseArrival,
		DocumentTypes: []domain.DocumentType{domain.DocContainerRelease},
		Direction:     domain.DirectionInbound,
		AllowedFrom:   []domain.SenderCategory{domain.SenderCarrier, domain.SenderTrucker},
		Prerequisites: []domain.WorkflowState{domain.StateImportCleared},
		Parallel:      true,
	},

	// === Delivery ===
	{
		State:        domain.StateOutForDelivery,
		Rank:         10,
		Phase:        domain.PhaseDelivery,
		EmailTypes:   []domain.EmailType{domain.EmailStatusUpdate},
		SubjectHints: []string{"out for delivery", "dispatched", "on the way"},
		Direction:    domain.DirectionInbound,
		AllowedFrom:  []domain.SenderCategory{domain.SenderTrucker},
		Prerequisites: []domain.WorkflowState{
			domain.StateContainerReleased,
		},
	},
	{
		State:         domain.StateDelivered,
		Rank:          11,
		Phase:         domain.PhaseDelivery,
		DocumentTypes: []domain.DocumentType{domain.DocProofOfDelivery},
		EmailTypes:    []domain.EmailType{domain.EmailStatusUpdate},
		SubjectHints:  []string{"delivered", "proof of delivery", "pod"},
		Direction:     domain.DirectionInbound,
		AllowedFrom:   []domain.SenderCategory{domain.SenderTrucker, domain.SenderCarrier, domain.SenderConsignee},
		Prerequisites: []domain.WorkflowState{domain.StateOutForDelivery},
	},
}

// Rules returns the full transition rule table.
func Rules() []domain.WorkflowTransitionRule {
	return transitionRules
}

// StatesForDocumentType returns every state whose trigger includes the
// document type.
func StatesForDocumentType(doc domain.DocumentType) []domain.WorkflowState {
	var states []domain.WorkflowState
	for _, r := range transitionRules {
		for _, d := range r.DocumentTypes {
			if d == doc {
				states = append(states, r.State)
				break
			}
		}
	}
	return states
}

// StatesForEmailType returns every state whose trigger includes the email
// type.
func StatesForEmailType(et domain.EmailType) []domain.WorkflowState {
	var states []domain.WorkflowState
	for _, r := range transitionRules {
		for _, e := range r.EmailTypes {
			if e == et {
				states = append(states, r.State)
				break
			}
		}
	}
	return states
}

// StateOrder returns all states in rank order.
func StateOrder() []domain.WorkflowState {
	states := make([]domain.WorkflowState, 0, len(transitionRules))
	for _, r := range transitionRules {
		states = append(states, r.State)
	}
	return states
}

// IsStateAfter reports whether a ranks strictly after b.
func IsStateAfter(a, b domain.WorkflowState) bool {
	return rankOf(a) > rankOf(b)
}

func rankOf(state domain.WorkflowState) int {
	for _, r := range transitionRules {
		if r.State == state {
			return r.Rank
		}
	}
	return -1
}

func ruleFor(state domain.WorkflowState) *domain.WorkflowTransitionRule {
	for i := range transitionRules {
		if transitionRules[i].State == state {
			return &transitionRules[i]
		}
	}
	return nil
}
