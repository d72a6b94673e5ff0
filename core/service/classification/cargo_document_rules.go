package classification

import "cargo_server/core/domain"

// =============================================================================
// Document Rule Tables
// =============================================================================

// documentContentRules match against extracted document text (OCR/parsed
// attachments). Tried before email-content rules because the document itself
// is ground truth independent of how the covering email was phrased.
var documentContentRules = []markerRule[domain.DocumentType]{
	{
		result:         domain.DocBookingConfirmation,
		required:       []string{"booking confirmation"},
		optional:       []string{"booking no", "booking number", "vessel", "voyage", "etd"},
		baseConfidence: 90,
	},
	{
		result:         domain.DocBookingAmendment,
		required:       []string{"booking amendment"},
		optional:       []string{"amended", "revised booking"},
		baseConfidence: 88,
	},
	{
		result:         domain.DocSIConfirmation,
		required:       []string{"shipping instruction", "confirm"},
		optional:       []string{"si no", "accepted", "approved"},
		baseConfidence: 85,
	},
	{
		result:         domain.DocShippingInstruction,
		required:       []string{"shipping instruction"},
		exclude:        []string{"confirm", "accepted"},
		optional:       []string{"shipper", "consignee", "notify party"},
		baseConfidence: 85,
	},
	{
		result:         domain.DocVGMDeclaration,
		required:       []string{"verified gross mass"},
		optional:       []string{"vgm", "solas", "weighing method"},
		baseConfidence: 90,
	},
	{
		result:         domain.DocBillOfLading,
		required:       []string{"bill of lading"},
		exclude:        []string{"draft bl check"},
		optional:       []string{"b/l no", "shipped on board", "port of loading", "port of discharge"},
		baseConfidence: 88,
	},
	{
		result:         domain.DocArrivalNotice,
		required:       []string{"arrival notice"},
		optional:       []string{"eta", "port of discharge", "freight collect"},
		baseConfidence: 90,
	},
	{
		result:         domain.DocDeliveryOrder,
		required:       []string{"delivery order"},
		optional:       []string{"d/o no", "release to"},
		baseConfidence: 88,
	},
	{
		result:         domain.DocContainerRelease,
		required:       []string{"container release"},
		optional:       []string{"empty return", "pickup"},
		baseConfidence: 88,
	},
	{
		result:         domain.DocProofOfDelivery,
		required:       []string{"proof of delivery"},
		optional:       []string{"pod", "received in good order", "signature"},
		baseConfidence: 92,
	},
	{
		result:         domain.DocCustomsClearance,
		required:       []string{"customs"},
		optional:       []string{"clearance", "declaration", "entry no", "released by customs"},
		baseConfidence: 80,
	},
	{
		result:         domain.DocCommercialInvoice,
		required:       []string{"commercial invoice"},
		optional:       []string{"invoice no", "incoterms", "total amount"},
		baseConfidence: 88,
	},
	{
		result:         domain.DocPackingList,
		required:       []string{"packing list"},
		optional:       []string{"gross weight", "net weight", "packages"},
		baseConfidence: 88,
	},
	{
		result:         domain.DocFreightInvoice,
		required:       []string{"freight invoice"},
		optional:       []string{"ocean freight", "charges", "due date"},
		baseConfidence: 88,
	},
}

// emailContentRules classify from the covering email itself: attachment
// filename, subject (original emails only), or body. Base confidences sit a
// notch under the document-content table since email phrasing is weaker
// evidence than document text.
var emailContentRules = []markerRule[domain.DocumentType]{
	{
		result:         domain.DocBookingConfirmation,
		required:       []string{"booking confirmation"},
		optional:       []string{"booking no", "vessel"},
		baseConfidence: 85,
	},
	{
		result:         domain.DocBookingAmendment,
		required:       []string{"booking amendment"},
		baseConfidence: 82,
	},
	{
		result:         domain.DocSIConfirmation,
		required:       []string{"si", "confirm"},
		optional:       []string{"shipping instruction"},
		baseConfidence: 75,
	},
	{
		result:         domain.DocShippingInstruction,
		required:       []string{"shipping instruction"},
		exclude:        []string{"confirm"},
		baseConfidence: 80,
	},
	{
		result:         domain.DocVGMDeclaration,
		required:       []string{"vgm"},
		optional:       []string{"verified gross mass", "solas"},
		baseConfidence: 82,
	},
	{
		result:         domain.DocBillOfLading,
		required:       []string{"bill of lading"},
		optional:       []string{"b/l", "obl", "surrender"},
		baseConfidence: 82,
	},
	{
		result:         domain.DocBillOfLading,
		required:       []string{"b/l"},
		optional:       []string{"draft", "surrender", "telex release"},
		exclude:        []string{"arrival notice"},
		baseConfidence: 75,
	},
	{
		result:         domain.DocArrivalNotice,
		required:       []string{"arrival notice"},
		optional:       []string{"eta"},
		baseConfidence: 85,
	},
	{
		result:         domain.DocDeliveryOrder,
		required:       []string{"delivery order"},
		baseConfidence: 82,
	},
	{
		result:         domain.DocContainerRelease,
		required:       []string{"container release"},
		baseConfidence: 82,
	},
	{
		result:         domain.DocProofOfDelivery,
		required:       []string{"proof of delivery"},
		optional:       []string{"pod"},
		baseConfidence: 85,
	},
	{
		result:         domain.DocProofOfDelivery,
		required:       []string{"pod"},
		optional:       []string{"delivered", "signed"},
		exclude:        []string{"port of discharge"},
		baseConfidence: 72,
	},
	{
		result:         domain.DocCustomsClearance,
		required:       []string{"customs clearance"},
		optional:       []string{"released", "entry"},
		baseConfidence: 80,
	},
	{
		result:         domain.DocCommercialInvoice,
		required:       []string{"commercial invoice"},
		baseConfidence: 82,
	},
	{
		result:         domain.DocPackingList,
		required:       []string{"packing list"},
		baseConfidence: 82,
	},
	{
		result:         domain.DocFreightInvoice,
		required:       []string{"freight invoice"},
		baseConfidence: 82,
	},
	{
		result:         domain.DocFreightInvoice,
		required:       []string{"invoice"},
		optional:       []string{"freight", "charges"},
		exclude:        []string{"commercial invoice"},
		baseConfidence: 70,
	},
}
