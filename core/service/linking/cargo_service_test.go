package linking

import (
	"context"
	"testing"
	"time"

	"cargo_server/core/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// --- in-memory fakes ---

type fakeEmailRepo struct {
	emails     map[uuid.UUID]*domain.Email
	byShipment map[uuid.UUID][]*domain.Email
	linked     map[uuid.UUID]uuid.UUID
	unlinked   []*domain.Email
}

func newFakeEmailRepo() *fakeEmailRepo {
	return &fakeEmailRepo{
		emails:     make(map[uuid.UUID]*domain.Email),
		byShipment: make(map[uuid.UUID][]*domain.Email),
		linked:     make(map[uuid.UUID]uuid.UUID),
	}
}

func (f *fakeEmailRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Email, error) {
	return f.emails[id], nil
}

func (f *fakeEmailRepo) ListUnlinkedWithEntities(_ context.Context, req *domain.PageRequest) ([]*domain.Email, int64, error) {
	var remaining []*domain.Email
	for _, e := range f.unlinked {
		if _, ok := f.linked[e.ID]; !ok {
			remaining = append(remaining, e)
		}
	}
	start := req.Offset()
	if start >= len(remaining) {
		return nil, int64(len(remaining)), nil
	}
	end := start + req.Limit()
	if end > len(remaining) {
		end = len(remaining)
	}
	return remaining[start:end], int64(len(remaining)), nil
}

func (f *fakeEmailRepo) ListByShipment(_ context.Context, shipmentID uuid.UUID) ([]*domain.Email, error) {
	return f.byShipment[shipmentID], nil
}

func (f *fakeEmailRepo) MarkLinked(_ context.Context, emailID, shipmentID uuid.UUID) error {
	f.linked[emailID] = shipmentID
	return nil
}

type fakeEntityRepo struct {
	byEmail map[uuid.UUID][]*domain.EntityExtraction
}

func (f *fakeEntityRepo) ListByEmail(_ context.Context, emailID uuid.UUID) ([]*domain.EntityExtraction, error) {
	return f.byEmail[emailID], nil
}

type fakeShipmentReader struct {
	byID        map[uuid.UUID]*domain.Shipment
	byBooking   map[string]*domain.Shipment
	byBL        map[string]*domain.Shipment
	byContainer map[string]*domain.Shipment
	lookups     int
}

func newFakeShipmentReader() *fakeShipmentReader {
	return &fakeShipmentReader{
		byID:        make(map[uuid.UUID]*domain.Shipment),
		byBooking:   make(map[string]*domain.Shipment),
		byBL:        make(map[string]*domain.Shipment),
		byContainer: make(map[string]*domain.Shipment),
	}
}

func (f *fakeShipmentReader) add(s *domain.Shipment) {
	f.byID[s.ID] = s
	if s.BookingNumber != "" {
		f.byBooking[s.BookingNumber] = s
	}
	if s.BLNumber != "" {
		f.byBL[s.BLNumber] = s
	}
	if s.ContainerNumber != "" {
		f.byContainer[s.ContainerNumber] = s
	}
}

func (f *fakeShipmentReader) GetByID(_ context.Context, id uuid.UUID) (*domain.Shipment, error) {
	return f.byID[id], nil
}

func (f *fakeShipmentReader) FindByBookingNumber(_ context.Context, value string) (*domain.Shipment, error) {
	f.lookups++
	return f.byBooking[value], nil
}

func (f *fakeShipmentReader) FindByBLNumber(_ context.Context, value string) (*domain.Shipment, error) {
	f.lookups++
	return f.byBL[value], nil
}

func (f *fakeShipmentReader) FindByContainerNumber(_ context.Context, value string) (*domain.Shipment, error) {
	f.lookups++
	return f.byContainer[value], nil
}

func (f *fakeShipmentReader) ListMilestones(_ context.Context, _ uuid.UUID) ([]domain.WorkflowState, error) {
	return nil, nil
}

type fakeEnricher struct {
	fills      []*domain.ShipmentFieldUpdate
	statuses   []domain.ShipmentStatus
	states     []domain.WorkflowState
	milestones int
}

func (f *fakeEnricher) FillEmptyFields(_ context.Context, _ uuid.UUID, u *domain.ShipmentFieldUpdate) error {
	f.fills = append(f.fills, u)
	return nil
}

func (f *fakeEnricher) UpgradeStatus(_ context.Context, _ uuid.UUID, s domain.ShipmentStatus) error {
	f.statuses = append(f.statuses, s)
	return nil
}

func (f *fakeEnricher) SetWorkflowState(_ context.Context, _ uuid.UUID, s domain.WorkflowState) error {
	f.states = append(f.states, s)
	return nil
}

func (f *fakeEnricher) RecordMilestone(_ context.Context, _ uuid.UUID, _ domain.WorkflowState, _ uuid.UUID) error {
	f.milestones++
	return nil
}

type fakeClassificationRepo struct {
	byEmail map[uuid.UUID]*domain.ClassificationResult
}

func (f *fakeClassificationRepo) Save(context.Context, *domain.ClassificationResult) error { return nil }
func (f *fakeClassificationRepo) GetByEmail(_ context.Context, id uuid.UUID) (*domain.ClassificationResult, error) {
	return f.byEmail[id], nil
}
func (f *fakeClassificationRepo) ListThreadDocumentTypes(context.Context, string, uuid.UUID) ([]domain.DocumentType, error) {
	return nil, nil
}

type fakeLinkRepo struct {
	links       []*domain.EmailLink
	suggestions []*domain.LinkSuggestion
}

func (f *fakeLinkRepo) CreateLink(_ context.Context, l *domain.EmailLink) error {
	f.links = append(f.links, l)
	return nil
}

func (f *fakeLinkRepo) CreateSuggestion(_ context.Context, s *domain.LinkSuggestion) error {
	f.suggestions = append(f.suggestions, s)
	return nil
}

func (f *fakeLinkRepo) GetLinkByEmail(_ context.Context, emailID uuid.UUID) (*domain.EmailLink, error) {
	for _, l := range f.links {
		if l.EmailID == emailID {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeLinkRepo) ListPendingSuggestions(_ context.Context, _ *domain.PageRequest) ([]*domain.LinkSuggestion, int64, error) {
	return f.suggestions, int64(len(f.suggestions)), nil
}

func (f *fakeLinkRepo) MarkSuggestionReviewed(_ context.Context, _ int64) error {
	return nil
}

type fakeAuditRepo struct {
	events []*domain.AuditEvent
}

func (f *fakeAuditRepo) Append(_ context.Context, e *domain.AuditEvent) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeAuditRepo) kinds() []string {
	var out []string
	for _, e := range f.events {
		out = append(out, e.Kind)
	}
	return out
}

// --- fixture ---

type linkFixture struct {
	service   *Service
	emails    *fakeEmailRepo
	entities  *fakeEntityRepo
	shipments *fakeShipmentReader
	enricher  *fakeEnricher
	results   *fakeClassificationRepo
	links     *fakeLinkRepo
	audit     *fakeAuditRepo
	now       time.Time
}

func newLinkFixture() *linkFixture {
	f := &linkFixture{
		emails:    newFakeEmailRepo(),
		entities:  &fakeEntityRepo{byEmail: make(map[uuid.UUID][]*domain.EntityExtraction)},
		shipments: newFakeShipmentReader(),
		enricher:  &fakeEnricher{},
		results:   &fakeClassificationRepo{byEmail: make(map[uuid.UUID]*domain.ClassificationResult)},
		links:     &fakeLinkRepo{},
		audit:     &fakeAuditRepo{},
		now:       time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
	f.service = NewService(&ServiceDeps{
		Emails:    f.emails,
		Entities:  f.entities,
		Shipments: f.shipments,
		Enricher:  f.enricher,
		Results:   f.results,
		Links:     f.links,
		Audit:     f.audit,
		Logger:    zerolog.Nop(),
	}, &Config{
		AutoLinkThreshold: 85,
		SuggestThreshold:  60,
		CarrierDomains:    []string{"carrier.example"},
		InternalDomains:   []string{"forwardco.example"},
	})
	f.service.now = func() time.Time { return f.now }
	return f
}

func (f *linkFixture) addEmail(email *domain.Email, entities ...*domain.EntityExtraction) {
	f.emails.emails[email.ID] = email
	f.entities.byEmail[email.ID] = entities
}

// --- tests ---

// TestProcessEmailNoIdentifiers verifies zero identifiers never reach the
// shipment store.
func TestProcessEmailNoIdentifiers(t *testing.T) {
	f := newLinkFixture()
	email := &domain.Email{ID: uuid.New(), Subject: "General question", ReceivedAt: f.now}
	f.addEmail(email)

	result, err := f.service.ProcessEmail(context.Background(), email.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Matched {
		t.Error("matched = true with no identifiers")
	}
	if result.Reasoning == "" {
		t.Error("reasoning empty for a terminal non-match")
	}
	if f.shipments.lookups != 0 {
		t.Errorf("shipment lookups = %d, want 0", f.shipments.lookups)
	}
}

// TestProcessEmailAutoLink tests the high-confidence path end to end:
// link, enrichment, status upgrade, workflow advance.
func TestProcessEmailAutoLink(t *testing.T) {
	f := newLinkFixture()

	shipment := &domain.Shipment{
		ID:            uuid.New(),
		BookingNumber: "999999999",
		Status:        domain.StatusDraft,
		CreatedAt:     f.now.Add(-2 * 24 * time.Hour),
	}
	f.shipments.add(shipment)

	email := &domain.Email{
		ID:         uuid.New(),
		Subject:    "Booking Confirmation: 999999999",
		FromEmail:  "noreply@carrier.example",
		ReceivedAt: f.now,
	}
	f.addEmail(email,
		&domain.EntityExtraction{Type: domain.EntityBookingNumber, Value: "999999999"},
		&domain.EntityExtraction{Type: domain.EntityVesselVoyage, Value: "EVER GIVEN 123E"},
		&domain.EntityExtraction{Type: domain.EntityETD, Value: "2026-09-10"},
	)
	f.results.byEmail[email.ID] = &domain.ClassificationResult{
		EmailID:        email.ID,
		DocumentType:   domain.DocBookingConfirmation,
		SenderCategory: domain.SenderCarrier,
		Direction:      domain.DirectionInbound,
	}

	result, err := f.service.ProcessEmail(context.Background(), email.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Matched {
		t.Fatalf("matched = false, reasoning: %s", result.Reasoning)
	}
	if result.LinkType != domain.LinkActionAuto {
		t.Errorf("linkType = %v, want auto_link", result.LinkType)
	}
	if result.ShipmentID == nil || *result.ShipmentID != shipment.ID {
		t.Errorf("shipmentID = %v, want %v", result.ShipmentID, shipment.ID)
	}
	if result.ConfidenceScore < 85 {
		t.Errorf("confidence = %d, want >= 85", result.ConfidenceScore)
	}
	if result.Conflict {
		t.Error("conflict = true for a single candidate")
	}

	if len(f.links.links) != 1 {
		t.Fatalf("links created = %d, want 1", len(f.links.links))
	}
	if got := f.emails.linked[email.ID]; got != shipment.ID {
		t.Errorf("email marked linked to %v, want %v", got, shipment.ID)
	}
	if len(f.enricher.fills) != 1 {
		t.Fatalf("field fills = %d, want 1", len(f.enricher.fills))
	}
	if f.enricher.fills[0].VesselVoyage != "EVER GIVEN 123E" {
		t.Errorf("vesselVoyage not propagated: %+v", f.enricher.fills[0])
	}
	if f.enricher.fills[0].ETD == nil {
		t.Error("ETD not parsed into the field update")
	}
	if len(f.enricher.statuses) != 1 || f.enricher.statuses[0] != domain.StatusBooked {
		t.Errorf("status upgrades = %v, want [booked]", f.enricher.statuses)
	}
	if len(f.enricher.states) != 1 || f.enricher.states[0] != domain.StateBookingConfirmed {
		t.Errorf("workflow states = %v, want [booking_confirmed]", f.enricher.states)
	}
	if f.enricher.milestones != 1 {
		t.Errorf("milestones = %d, want 1", f.enricher.milestones)
	}
}

// TestProcessEmailConflictResolution verifies the identifier-priority pick
// and the audit trail when identifiers point at different shipments.
func TestProcessEmailConflictResolution(t *testing.T) {
	f := newLinkFixture()

	byBooking := &domain.Shipment{
		ID:            uuid.New(),
		BookingNumber: "999999999",
		Status:        domain.StatusBooked,
		CreatedAt:     f.now.Add(-3 * 24 * time.Hour),
	}
	byContainer := &domain.Shipment{
		ID:              uuid.New(),
		ContainerNumber: "MSCU1234567",
		Status:          domain.StatusBooked,
		CreatedAt:       f.now.Add(-3 * 24 * time.Hour),
	}
	f.shipments.add(byBooking)
	f.shipments.add(byContainer)

	email := &domain.Email{
		ID:         uuid.New(),
		FromEmail:  "noreply@carrier.example",
		ReceivedAt: f.now,
	}
	f.addEmail(email,
		&domain.EntityExtraction{Type: domain.EntityContainerNumber, Value: "MSCU1234567"},
		&domain.EntityExtraction{Type: domain.EntityBookingNumber, Value: "999999999"},
	)
	f.results.byEmail[email.ID] = &domain.ClassificationResult{
		EmailID:      email.ID,
		DocumentType: domain.DocBookingConfirmation,
	}

	result, err := f.service.ProcessEmail(context.Background(), email.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Conflict {
		t.Error("conflict = false with two candidate shipments")
	}
	if result.ShipmentID == nil || *result.ShipmentID != byBooking.ID {
		t.Errorf("chosen shipment = %v, want the booking-number match %v", result.ShipmentID, byBooking.ID)
	}

	foundConflictAudit := false
	for _, e := range f.audit.events {
		if e.Kind == domain.AuditLinkConflict {
			foundConflictAudit = true
		}
	}
	if !foundConflictAudit {
		t.Errorf("no conflict audit event recorded, kinds: %v", f.audit.kinds())
	}
}

// TestProcessEmailSuggestion verifies the medium band creates a suggestion
// and mutates nothing.
func TestProcessEmailSuggestion(t *testing.T) {
	f := newLinkFixture()

	shipment := &domain.Shipment{
		ID:              uuid.New(),
		ContainerNumber: "MSCU1234567",
		Status:          domain.StatusInTransit,
		CreatedAt:       f.now.Add(-20 * 24 * time.Hour),
	}
	f.shipments.add(shipment)

	email := &domain.Email{
		ID:         uuid.New(),
		FromEmail:  "notices@carrier.example",
		ReceivedAt: f.now,
	}
	f.addEmail(email, &domain.EntityExtraction{Type: domain.EntityContainerNumber, Value: "MSCU1234567"})
	f.results.byEmail[email.ID] = &domain.ClassificationResult{
		EmailID:      email.ID,
		DocumentType: domain.DocArrivalNotice,
	}

	result, err := f.service.ProcessEmail(context.Background(), email.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Matched {
		t.Error("matched = true for a suggestion-band score")
	}
	if result.LinkType != domain.LinkActionSuggested {
		t.Errorf("linkType = %v (score=%d), want suggested", result.LinkType, result.ConfidenceScore)
	}
	if len(f.links.suggestions) != 1 {
		t.Fatalf("suggestions = %d, want 1", len(f.links.suggestions))
	}
	if len(f.links.links) != 0 {
		t.Error("a link was created on the suggestion path")
	}
	if len(f.emails.linked) != 0 {
		t.Error("email marked linked on the suggestion path")
	}
	if len(f.enricher.fills)+len(f.enricher.statuses)+len(f.enricher.states) != 0 {
		t.Error("shipment mutated on the suggestion path")
	}
}

// TestProcessEmailRejection verifies the low band rejects with reasoning.
func TestProcessEmailRejection(t *testing.T) {
	f := newLinkFixture()

	shipment := &domain.Shipment{
		ID:              uuid.New(),
		ContainerNumber: "MSCU1234567",
		CreatedAt:       f.now.Add(-200 * 24 * time.Hour),
	}
	f.shipments.add(shipment)

	email := &domain.Email{
		ID:         uuid.New(),
		FromEmail:  "random@nowhere.example",
		ReceivedAt: f.now,
	}
	f.addEmail(email, &domain.EntityExtraction{Type: domain.EntityContainerNumber, Value: "MSCU1234567"})

	result, err := f.service.ProcessEmail(context.Background(), email.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Matched || result.LinkType != domain.LinkActionRejected {
		t.Errorf("linkType = %v matched=%v (score=%d), want rejected", result.LinkType, result.Matched, result.ConfidenceScore)
	}
	if len(f.links.suggestions)+len(f.links.links) != 0 {
		t.Error("persistence touched on the rejection path")
	}
	if result.Reasoning == "" {
		t.Error("reasoning empty on rejection")
	}
}

// TestProcessEmailStatusNeverRegresses verifies a booking document against a
// shipment already in transit upgrades nothing.
func TestProcessEmailStatusNeverRegresses(t *testing.T) {
	f := newLinkFixture()

	shipment := &domain.Shipment{
		ID:            uuid.New(),
		BookingNumber: "999999999",
		Status:        domain.StatusInTransit,
		WorkflowState: domain.StateVesselDeparted,
		CreatedAt:     f.now.Add(-2 * 24 * time.Hour),
	}
	f.shipments.add(shipment)

	email := &domain.Email{
		ID:         uuid.New(),
		FromEmail:  "noreply@carrier.example",
		ReceivedAt: f.now,
	}
	f.addEmail(email, &domain.EntityExtraction{Type: domain.EntityBookingNumber, Value: "999999999"})
	f.results.byEmail[email.ID] = &domain.ClassificationResult{
		EmailID:        email.ID,
		DocumentType:   domain.DocBookingConfirmation,
		SenderCategory: domain.SenderCarrier,
		Direction:      domain.DirectionInbound,
	}

	result, err := f.service.ProcessEmail(context.Background(), email.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Matched {
		t.Fatalf("matched = false, reasoning: %s", result.Reasoning)
	}

	if len(f.enricher.statuses) != 0 {
		t.Errorf("status upgrades = %v, want none for an older document", f.enricher.statuses)
	}
	if len(f.enricher.states) != 0 {
		t.Errorf("workflow states = %v, booking confirmation ranks behind vessel departed", f.enricher.states)
	}
}

// TestProcessUnlinkedEmails tests the batch summary accounting.
func TestProcessUnlinkedEmails(t *testing.T) {
	f := newLinkFixture()

	shipment := &domain.Shipment{
		ID:            uuid.New(),
		BookingNumber: "999999999",
		Status:        domain.StatusBooked,
		CreatedAt:     f.now.Add(-2 * 24 * time.Hour),
	}
	f.shipments.add(shipment)

	strong := &domain.Email{ID: uuid.New(), FromEmail: "noreply@carrier.example", ReceivedAt: f.now}
	f.addEmail(strong, &domain.EntityExtraction{Type: domain.EntityBookingNumber, Value: "999999999"})
	f.results.byEmail[strong.ID] = &domain.ClassificationResult{
		EmailID: strong.ID, DocumentType: domain.DocBookingConfirmation,
	}

	weak := &domain.Email{ID: uuid.New(), FromEmail: "random@nowhere.example", ReceivedAt: f.now}
	f.addEmail(weak, &domain.EntityExtraction{Type: domain.EntityContainerNumber, Value: "NONE0000000"})

	f.emails.unlinked = []*domain.Email{strong, weak}

	summary, err := f.service.ProcessUnlinkedEmails(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Processed != 2 {
		t.Errorf("processed = %d, want 2", summary.Processed)
	}
	if summary.Linked != 1 {
		t.Errorf("linked = %d, want 1", summary.Linked)
	}
	if summary.Errors != 0 {
		t.Errorf("errors = %d, want 0", summary.Errors)
	}
}

// TestResyncShipmentFromLinkedEmails tests the union backfill.
func TestResyncShipmentFromLinkedEmails(t *testing.T) {
	f := newLinkFixture()

	shipment := &domain.Shipment{
		ID:            uuid.New(),
		BookingNumber: "999999999",
		Status:        domain.StatusBooked,
		CreatedAt:     f.now.Add(-10 * 24 * time.Hour),
	}
	f.shipments.add(shipment)

	first := &domain.Email{ID: uuid.New(), ReceivedAt: f.now.Add(-5 * 24 * time.Hour)}
	second := &domain.Email{ID: uuid.New(), ReceivedAt: f.now}
	f.addEmail(first, &domain.EntityExtraction{Type: domain.EntityBLNumber, Value: "abcd1234567"})
	f.addEmail(second,
		&domain.EntityExtraction{Type: domain.EntityPortOfDischarge, Value: "LONG BEACH"},
		&domain.EntityExtraction{Type: domain.EntityETA, Value: "2026-08-20"},
	)
	f.emails.byShipment[shipment.ID] = []*domain.Email{first, second}
	f.results.byEmail[second.ID] = &domain.ClassificationResult{
		EmailID:      second.ID,
		DocumentType: domain.DocProofOfDelivery,
	}

	if err := f.service.ResyncShipmentFromLinkedEmails(context.Background(), shipment.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.enricher.fills) != 1 {
		t.Fatalf("field fills = %d, want 1", len(f.enricher.fills))
	}
	update := f.enricher.fills[0]
	if update.BLNumber != "ABCD1234567" {
		t.Errorf("blNumber = %q, want normalized ABCD1234567", update.BLNumber)
	}
	if update.PortOfDischarge != "LONG BEACH" {
		t.Errorf("portOfDischarge = %q", update.PortOfDischarge)
	}
	if update.ETA == nil {
		t.Error("eta not parsed")
	}

	if len(f.enricher.statuses) != 1 || f.enricher.statuses[0] != domain.StatusDelivered {
		t.Errorf("status upgrades = %v, want [delivered]", f.enricher.statuses)
	}

	foundResync := false
	for _, e := range f.audit.events {
		if e.Kind == domain.AuditResync {
			foundResync = true
		}
	}
	if !foundResync {
		t.Errorf("no resync audit event, kinds: %v", f.audit.kinds())
	}
}
