package domain

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType identifies the freight document attached to (or described by) an email.
type DocumentType string

const (
	DocBookingConfirmation   DocumentType = "booking_confirmation"
	DocBookingAmendment      DocumentType = "booking_amendment"
	DocShippingInstruction   DocumentType = "shipping_instruction"
	DocSIConfirmation        DocumentType = "si_confirmation"
	DocVGMDeclaration        DocumentType = "vgm_declaration"
	DocBillOfLading          DocumentType = "bill_of_lading"
	DocArrivalNotice         DocumentType = "arrival_notice"
	DocDeliveryOrder         DocumentType = "delivery_order"
	DocContainerRelease      DocumentType = "container_release"
	DocProofOfDelivery       DocumentType = "proof_of_delivery"
	DocCustomsClearance      DocumentType = "customs_clearance"
	DocCommercialInvoice     DocumentType = "commercial_invoice"
	DocPackingList           DocumentType = "packing_list"
	DocFreightInvoice        DocumentType = "freight_invoice"
	DocGeneralCorrespondence DocumentType = "general_correspondence"
	DocUnknown               DocumentType = "unknown"
)

// EmailType identifies the communicative intent of an email, independent of
// any document it carries.
type EmailType string

const (
	EmailBookingRequest   EmailType = "booking_request"
	EmailApprovalGranted  EmailType = "approval_granted"
	EmailApprovalRejected EmailType = "approval_rejected"
	EmailScheduleInquiry  EmailType = "schedule_inquiry"
	EmailStatusUpdate     EmailType = "status_update"
	EmailDocumentRequest  EmailType = "document_request"
	EmailAmendmentRequest EmailType = "amendment_request"
	EmailUrgentAction     EmailType = "urgent_action"
	EmailEscalation       EmailType = "escalation"
	EmailGeneralInquiry   EmailType = "general_inquiry"
	EmailUnknown          EmailType = "unknown"
)

// EmailCategory is the coarse workflow hint derived from the document type.
type EmailCategory string

const (
	CategoryBooking       EmailCategory = "booking"
	CategoryDocumentation EmailCategory = "documentation"
	CategoryTransit       EmailCategory = "transit"
	CategoryArrival       EmailCategory = "arrival"
	CategoryDelivery      EmailCategory = "delivery"
	CategoryBilling       EmailCategory = "billing"
	CategoryGeneral       EmailCategory = "general"
)

// SenderCategory classifies the party behind an email address.
type SenderCategory string

const (
	SenderCarrier      SenderCategory = "carrier"
	SenderCustomsAgent SenderCategory = "customs_agent"
	SenderShipper      SenderCategory = "shipper"
	SenderConsignee    SenderCategory = "consignee"
	SenderTrucker      SenderCategory = "trucker"
	SenderInternal     SenderCategory = "internal"
	SenderUnknown      SenderCategory = "unknown"
)

// Sentiment is the urgency/tone signal extracted from subject and body.
type Sentiment string

const (
	SentimentUrgent    Sentiment = "urgent"
	SentimentEscalated Sentiment = "escalated"
	SentimentNegative  Sentiment = "negative"
	SentimentPositive  Sentiment = "positive"
	SentimentNeutral   Sentiment = "neutral"
)

// Direction of an email relative to the forwarding organization.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// ClassificationSource records which matcher produced a result.
type ClassificationSource string

const (
	SourceDocumentContent ClassificationSource = "document_content"
	SourceAttachmentName  ClassificationSource = "attachment_name"
	SourceSubject         ClassificationSource = "subject"
	SourceBody            ClassificationSource = "body"
	SourceAIFallback      ClassificationSource = "ai_fallback"
	SourceNone            ClassificationSource = "none"
)

// ClassificationResult is the persisted outcome of classifying one email.
// It always carries exactly one document type and one email type, each
// possibly "unknown".
type ClassificationResult struct {
	ID                  int64                `json:"id"`
	EmailID             uuid.UUID            `json:"email_id"`
	DocumentType        DocumentType         `json:"document_type"`
	DocumentConfidence  int                  `json:"document_confidence"`
	DocumentSource      ClassificationSource `json:"document_source"`
	EmailType           EmailType            `json:"email_type"`
	EmailCategory       EmailCategory        `json:"email_category"`
	EmailTypeConfidence int                  `json:"email_type_confidence"`
	SenderCategory      SenderCategory       `json:"sender_category"`
	Sentiment           Sentiment            `json:"sentiment"`
	SentimentScore      int                  `json:"sentiment_score"`
	Direction           Direction            `json:"direction"`
	IsUrgent            bool                 `json:"is_urgent"`
	NeedsManualReview   bool                 `json:"needs_manual_review"`
	UsedAIFallback      bool                 `json:"used_ai_fallback"`
	AIReasoning         string               `json:"ai_reasoning,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
}

// WorkflowHint maps a document type to its coarse email category.
func WorkflowHint(doc DocumentType) EmailCategory {
	switch doc {
	case DocBookingConfirmation, DocBookingAmendment:
		return CategoryBooking
	case DocShippingInstruction, DocSIConfirmation, DocVGMDeclaration,
		DocCommercialInvoice, DocPackingList, DocCustomsClearance:
		return CategoryDocumentation
	case DocBillOfLading:
		return CategoryTransit
	case DocArrivalNotice, DocDeliveryOrder, DocContainerRelease:
		return CategoryArrival
	case DocProofOfDelivery:
		return CategoryDelivery
	case DocFreightInvoice:
		return CategoryBilling
	default:
		return CategoryGeneral
	}
}

// ThreadContext is the per-email thread structure derived before matching.
// It is ephemeral and never persisted.
type ThreadContext struct {
	IsReply        bool     `json:"is_reply"`
	IsForward      bool     `json:"is_forward"`
	ThreadDepth    int      `json:"thread_depth"`
	CleanSubject   string   `json:"clean_subject"`
	FreshBody      string   `json:"fresh_body"`
	QuotedBody     string   `json:"quoted_body"`
	ForwardChain   []string `json:"forward_chain,omitempty"`
	OriginalSender string   `json:"original_sender,omitempty"`
}

// IsThreaded reports whether the email continues an existing conversation.
func (t *ThreadContext) IsThreaded() bool {
	return t.IsReply || t.IsForward
}
