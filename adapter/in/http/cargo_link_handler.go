package http

import (
	"strconv"

	"cargo_server/core/domain"
	"cargo_server/core/port/out"
	"cargo_server/core/service/linking"
	"cargo_server/pkg/apperr"
	"cargo_server/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LinkHandler serves email-shipment links and the suggestion review queue.
type LinkHandler struct {
	linkRepo out.LinkRepository
	linking  *linking.Service
	producer out.MessageProducer
}

func NewLinkHandler(linkRepo out.LinkRepository, linkingService *linking.Service, producer out.MessageProducer) *LinkHandler {
	return &LinkHandler{
		linkRepo: linkRepo,
		linking:  linkingService,
		producer: producer,
	}
}

func (h *LinkHandler) Register(app fiber.Router) {
	app.Get("/emails/:id/link", h.GetLink)
	app.Post("/emails/:id/link", h.ProcessLink)

	links := app.Group("/links")
	links.Post("/batch", h.TriggerBatch)
	links.Get("/suggestions", h.ListSuggestions)
	links.Post("/suggestions/:id/review", h.ReviewSuggestion)
}

// GetLink returns the confirmed link for an email, if any.
func (h *LinkHandler) GetLink(c *fiber.Ctx) error {
	emailID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.InvalidInput("id", "must be a uuid")
	}

	link, err := h.linkRepo.GetLinkByEmail(c.Context(), emailID)
	if err != nil {
		return apperr.DatabaseError("get link", err)
	}
	if link == nil {
		return apperr.NotFound("link")
	}

	return response.OK(c, link)
}

// ProcessLink runs shipment resolution for one email synchronously and
// returns the decision.
func (h *LinkHandler) ProcessLink(c *fiber.Ctx) error {
	emailID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.InvalidInput("id", "must be a uuid")
	}

	result, err := h.linking.ProcessEmail(c.Context(), emailID)
	if err != nil {
		return apperr.InternalWithError(err)
	}

	return response.OK(c, result)
}

// TriggerBatch enqueues a linking pass over all unlinked emails.
func (h *LinkHandler) TriggerBatch(c *fiber.Ctx) error {
	job := &out.BatchLinkJob{
		PageSize: c.QueryInt("page_size", 0),
		MaxPages: c.QueryInt("max_pages", 0),
	}
	if err := h.producer.PublishBatchLink(c.Context(), job); err != nil {
		return apperr.ExternalError("message stream", err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"success": true})
}

// ListSuggestions returns unreviewed link suggestions, newest first.
func (h *LinkHandler) ListSuggestions(c *fiber.Ctx) error {
	p := response.GetPagination(c, 20, 100)

	suggestions, total, err := h.linkRepo.ListPendingSuggestions(c.Context(), &domain.PageRequest{
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		return apperr.DatabaseError("list suggestions", err)
	}

	return response.OKWithMeta(c, suggestions, &response.Meta{
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
		HasMore:  int64(p.Page*p.PageSize) < total,
	})
}

// ReviewSuggestion marks one suggestion as handled by an operator.
func (h *LinkHandler) ReviewSuggestion(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperr.InvalidInput("id", "must be an integer")
	}

	if err := h.linkRepo.MarkSuggestionReviewed(c.Context(), id); err != nil {
		return apperr.NotFound("suggestion")
	}

	return response.NoContent(c)
}
