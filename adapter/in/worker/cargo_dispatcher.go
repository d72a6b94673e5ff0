package worker

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type Handler struct {
	emailProcessor   *EmailProcessor
	linkingProcessor *LinkingProcessor
	log              zerolog.Logger
}

func NewHandler(
	emailProcessor *EmailProcessor,
	linkingProcessor *LinkingProcessor,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		emailProcessor:   emailProcessor,
		linkingProcessor: linkingProcessor,
		log:              log.With().Str("component", "dispatcher").Logger(),
	}
}

func (h *Handler) Process(ctx context.Context, msg *Message) error {
	h.log.Debug().Str("job_type", msg.Type).Str("job_id", msg.ID).Msg("processing message")

	switch msg.Type {
	// Email jobs
	case JobEmailReceived:
		return h.emailProcessor.ProcessReceived(ctx, msg)

	// Linking jobs
	case JobBatchLink:
		return h.linkingProcessor.ProcessBatchLink(ctx, msg)
	case JobShipmentResync:
		return h.linkingProcessor.ProcessResync(ctx, msg)

	default:
		h.log.Warn().Str("job_type", msg.Type).Msg("unknown job type")
		return nil
	}
}

func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
