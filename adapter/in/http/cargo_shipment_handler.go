package http

import (
	"cargo_server/core/port/out"
	"cargo_server/core/service/workflow"
	"cargo_server/pkg/apperr"
	"cargo_server/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ShipmentHandler serves shipment lookups, linked email lists, and workflow
// metadata.
type ShipmentHandler struct {
	shipments out.ShipmentReader
	emailRepo out.EmailRepository
	producer  out.MessageProducer
}

func NewShipmentHandler(shipments out.ShipmentReader, emailRepo out.EmailRepository, producer out.MessageProducer) *ShipmentHandler {
	return &ShipmentHandler{
		shipments: shipments,
		emailRepo: emailRepo,
		producer:  producer,
	}
}

func (h *ShipmentHandler) Register(app fiber.Router) {
	shipments := app.Group("/shipments")
	shipments.Get("/:id", h.GetShipment)
	shipments.Get("/:id/emails", h.ListEmails)
	shipments.Get("/:id/milestones", h.ListMilestones)
	shipments.Post("/:id/resync", h.Resync)

	wf := app.Group("/workflow")
	wf.Get("/states", h.ListWorkflowStates)
	wf.Get("/rules", h.ListWorkflowRules)
}

func (h *ShipmentHandler) GetShipment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.InvalidInput("id", "must be a uuid")
	}

	shipment, err := h.shipments.GetByID(c.Context(), id)
	if err != nil {
		return apperr.DatabaseError("get shipment", err)
	}
	if shipment == nil {
		return apperr.NotFound("shipment")
	}

	return response.OK(c, shipment)
}

// ListEmails returns all emails linked to a shipment.
func (h *ShipmentHandler) ListEmails(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.InvalidInput("id", "must be a uuid")
	}

	emails, err := h.emailRepo.ListByShipment(c.Context(), id)
	if err != nil {
		return apperr.DatabaseError("list shipment emails", err)
	}

	return response.OK(c, emails)
}

// ListMilestones returns the workflow states the shipment has reached.
func (h *ShipmentHandler) ListMilestones(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.InvalidInput("id", "must be a uuid")
	}

	states, err := h.shipments.ListMilestones(c.Context(), id)
	if err != nil {
		return apperr.DatabaseError("list milestones", err)
	}

	return response.OK(c, states)
}

// Resync enqueues a re-derivation of shipment fields from linked emails.
func (h *ShipmentHandler) Resync(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.InvalidInput("id", "must be a uuid")
	}

	shipment, err := h.shipments.GetByID(c.Context(), id)
	if err != nil {
		return apperr.DatabaseError("get shipment", err)
	}
	if shipment == nil {
		return apperr.NotFound("shipment")
	}

	if err := h.producer.PublishShipmentResync(c.Context(), &out.ShipmentResyncJob{ShipmentID: id}); err != nil {
		return apperr.ExternalError("message stream", err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success":     true,
		"shipment_id": id,
	})
}

// ListWorkflowStates returns the canonical workflow state order.
func (h *ShipmentHandler) ListWorkflowStates(c *fiber.Ctx) error {
	return response.OK(c, workflow.StateOrder())
}

// ListWorkflowRules returns the transition rule table.
func (h *ShipmentHandler) ListWorkflowRules(c *fiber.Ctx) error {
	return response.OK(c, workflow.Rules())
}
