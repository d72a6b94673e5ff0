// Package http implements HTTP handlers for the decision engine API.
package http

import (
	"time"

	"cargo_server/core/domain"
	"cargo_server/core/port/out"
	"cargo_server/core/service/classification"
	"cargo_server/pkg/apperr"
	"cargo_server/pkg/response"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// classificationCacheTTL bounds staleness of the hot read path; writes
// invalidate eagerly.
const classificationCacheTTL = 5 * time.Minute

// ClassificationHandler serves classification results and triggers
// (re)classification of individual emails.
type ClassificationHandler struct {
	emailRepo    out.EmailRepository
	resultsRepo  out.ClassificationRepository
	orchestrator *classification.Orchestrator
	producer     out.MessageProducer
	cache        out.Cache
}

func NewClassificationHandler(
	emailRepo out.EmailRepository,
	resultsRepo out.ClassificationRepository,
	orchestrator *classification.Orchestrator,
	producer out.MessageProducer,
	cache out.Cache,
) *ClassificationHandler {
	return &ClassificationHandler{
		emailRepo:    emailRepo,
		resultsRepo:  resultsRepo,
		orchestrator: orchestrator,
		producer:     producer,
		cache:        cache,
	}
}

func (h *ClassificationHandler) Register(app fiber.Router) {
	emails := app.Group("/emails")

	emails.Get("/:id/classification", h.GetClassification)
	emails.Post("/:id/classify", h.Classify)
	emails.Post("/:id/process", h.Process)
}

func classificationCacheKey(emailID uuid.UUID) string {
	return "classification:" + emailID.String()
}

// GetClassification returns the stored classification for an email.
func (h *ClassificationHandler) GetClassification(c *fiber.Ctx) error {
	emailID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.InvalidInput("id", "must be a uuid")
	}

	if h.cache != nil {
		if data, err := h.cache.Get(c.Context(), classificationCacheKey(emailID)); err == nil && data != nil {
			var cached domain.ClassificationResult
			if err := json.Unmarshal(data, &cached); err == nil {
				return response.OK(c, &cached)
			}
		}
	}

	result, err := h.resultsRepo.GetByEmail(c.Context(), emailID)
	if err != nil {
		return apperr.DatabaseError("get classification", err)
	}
	if result == nil {
		return apperr.NotFound("classification")
	}

	if h.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = h.cache.Set(c.Context(), classificationCacheKey(emailID), data, classificationCacheTTL)
		}
	}

	return response.OK(c, result)
}

// Classify runs the classification pipeline synchronously and returns the
// result. use_ai=true enables the AI fallback stage.
func (h *ClassificationHandler) Classify(c *fiber.Ctx) error {
	emailID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.InvalidInput("id", "must be a uuid")
	}

	email, err := h.emailRepo.GetByID(c.Context(), emailID)
	if err != nil {
		return apperr.DatabaseError("get email", err)
	}
	if email == nil {
		return apperr.NotFound("email")
	}

	useAI := c.QueryBool("use_ai", false)

	var result *domain.ClassificationResult
	if useAI {
		result, err = h.orchestrator.ClassifyWithAI(c.Context(), email)
	} else {
		result, err = h.orchestrator.Classify(c.Context(), email)
	}
	if err != nil {
		return apperr.ClassificationFailed(err)
	}

	if h.cache != nil {
		_ = h.cache.Delete(c.Context(), classificationCacheKey(emailID))
	}

	return response.OK(c, result)
}

// Process enqueues the full pipeline (classification + linking) for an
// email. Returns immediately; the worker picks the job up from the stream.
func (h *ClassificationHandler) Process(c *fiber.Ctx) error {
	emailID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.InvalidInput("id", "must be a uuid")
	}

	email, err := h.emailRepo.GetByID(c.Context(), emailID)
	if err != nil {
		return apperr.DatabaseError("get email", err)
	}
	if email == nil {
		return apperr.NotFound("email")
	}

	job := &out.EmailReceivedJob{
		EmailID:    emailID,
		ReceivedAt: time.Now(),
		UseAI:      c.QueryBool("use_ai", false),
	}
	if err := h.producer.PublishEmailReceived(c.Context(), job); err != nil {
		return apperr.ExternalError("message stream", err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success":  true,
		"email_id": emailID,
	})
}
