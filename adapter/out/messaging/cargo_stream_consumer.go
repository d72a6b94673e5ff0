package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// =============================================================================
// Stream Consumer
// =============================================================================

const (
	defaultPendingCheckInterval = 30 * time.Second
	defaultPendingIdleTime      = 2 * time.Minute
	defaultMaxRetries           = 3

	readBatchSize    = 10
	readBlockTime    = 5 * time.Second
	reclaimBatchSize = 100

	deadLetterPrefix = "dlq:"
)

// JobHandler processes jobs from streams.
type JobHandler interface {
	Handle(ctx context.Context, stream string, data []byte) error
}

// delivery is one decoded stream entry. Payload is the raw JSON the producer
// wrote under the data field.
type delivery struct {
	stream  string
	id      string
	payload []byte
}

// Consumer consumes job messages from Redis Streams through a consumer
// group. Entries left pending longer than pendingIdleTime are reclaimed so a
// crashed consumer does not strand its in-flight jobs; entries that keep
// failing are parked on a dead-letter stream.
type Consumer struct {
	client   *redis.Client
	group    string
	consumer string
	streams  []string
	handler  JobHandler
	log      zerolog.Logger

	pendingCheckInterval time.Duration
	pendingIdleTime      time.Duration
	maxRetries           int
}

// ConsumerConfig holds consumer configuration. Zero durations and counts
// fall back to the package defaults.
type ConsumerConfig struct {
	Group    string
	Consumer string
	Streams  []string
	Handler  JobHandler
	Logger   zerolog.Logger

	PendingCheckInterval time.Duration
	PendingIdleTime      time.Duration
	MaxRetries           int
}

// NewConsumer creates a new Consumer.
func NewConsumer(client *redis.Client, cfg *ConsumerConfig) *Consumer {
	c := &Consumer{
		client:               client,
		group:                cfg.Group,
		consumer:             cfg.Consumer,
		streams:              cfg.Streams,
		handler:              cfg.Handler,
		log:                  cfg.Logger,
		pendingCheckInterval: cfg.PendingCheckInterval,
		pendingIdleTime:      cfg.PendingIdleTime,
		maxRetries:           cfg.MaxRetries,
	}
	if c.pendingCheckInterval == 0 {
		c.pendingCheckInterval = defaultPendingCheckInterval
	}
	if c.pendingIdleTime == 0 {
		c.pendingIdleTime = defaultPendingIdleTime
	}
	if c.maxRetries == 0 {
		c.maxRetries = defaultMaxRetries
	}
	return c
}

// Run consumes until ctx is cancelled. It creates the consumer groups on
// first use and runs the pending-entry reclaimer alongside the live read
// loop.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info().
		Str("group", c.group).
		Str("consumer", c.consumer).
		Strs("streams", c.streams).
		Msg("starting consumer")

	c.ensureGroups(ctx)

	go c.reclaimLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := c.read(ctx)
		if err != nil {
			if err == redis.Nil {
				continue
			}
			c.log.Error().Err(err).Msg("error reading from streams")
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range result {
			for _, msg := range stream.Messages {
				d, err := decodeDelivery(stream.Stream, msg)
				if err != nil {
					c.log.Error().Err(err).Str("stream", stream.Stream).Str("id", msg.ID).Msg("malformed stream entry")
					c.ack(ctx, stream.Stream, msg.ID)
					continue
				}
				c.dispatch(ctx, d)
			}
		}
	}
}

// dispatch hands a delivery to the handler and acks on success. Failed
// deliveries stay pending; the reclaimer retries or parks them.
func (c *Consumer) dispatch(ctx context.Context, d delivery) {
	if err := c.handler.Handle(ctx, d.stream, d.payload); err != nil {
		c.log.Error().Err(err).Str("stream", d.stream).Str("id", d.id).Msg("error processing message")
		return
	}
	c.ack(ctx, d.stream, d.id)
}

func (c *Consumer) ack(ctx context.Context, stream, id string) {
	if err := c.client.XAck(ctx, stream, c.group, id).Err(); err != nil {
		c.log.Error().Err(err).Str("stream", stream).Str("id", id).Msg("error acknowledging message")
	}
}

// reclaimLoop periodically sweeps pending entries across all streams.
func (c *Consumer) reclaimLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pendingCheckInterval)
	defer ticker.Stop()

	c.log.Info().
		Dur("check_interval", c.pendingCheckInterval).
		Dur("idle_time", c.pendingIdleTime).
		Int("max_retries", c.maxRetries).
		Msg("starting pending entry reclaimer")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, stream := range c.streams {
				c.reclaimStuck(ctx, stream)
			}
		}
	}
}

// reclaimStuck claims entries idle past the threshold and reprocesses them.
// Entries past maxRetries move to the dead-letter stream instead.
func (c *Consumer) reclaimStuck(ctx context.Context, stream string) {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: stream,
		Group:  c.group,
		Start:  "-",
		End:    "+",
		Count:  reclaimBatchSize,
	}).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Error().Err(err).Str("stream", stream).Msg("error listing pending entries")
		}
		return
	}

	for _, p := range pending {
		if p.Idle < c.pendingIdleTime {
			continue
		}

		if int(p.RetryCount) >= c.maxRetries {
			c.log.Warn().
				Str("stream", stream).
				Str("id", p.ID).
				Int64("retries", p.RetryCount).
				Msg("entry exceeded max retries, parking in dead-letter stream")

			if err := c.parkInDeadLetter(ctx, stream, p.ID); err != nil {
				c.log.Error().Err(err).Str("id", p.ID).Msg("error parking entry")
			}
			c.ack(ctx, stream, p.ID)
			continue
		}

		claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   stream,
			Group:    c.group,
			Consumer: c.consumer,
			MinIdle:  c.pendingIdleTime,
			Messages: []string{p.ID},
		}).Result()
		if err != nil {
			c.log.Error().Err(err).Str("id", p.ID).Msg("error claiming entry")
			continue
		}

		c.log.Info().
			Str("stream", stream).
			Str("id", p.ID).
			Str("previous_consumer", p.Consumer).
			Dur("idle", p.Idle).
			Int64("retries", p.RetryCount).
			Msg("reclaimed stuck entry")

		for _, msg := range claimed {
			d, err := decodeDelivery(stream, msg)
			if err != nil {
				c.log.Error().Err(err).Str("id", msg.ID).Msg("malformed reclaimed entry")
				c.ack(ctx, stream, msg.ID)
				continue
			}
			c.dispatch(ctx, d)
		}
	}
}

func (c *Consumer) ensureGroups(ctx context.Context) {
	for _, stream := range c.streams {
		err := c.client.XGroupCreateMkStream(ctx, stream, c.group, "0").Err()
		if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
			c.log.Warn().Err(err).Str("stream", stream).Msg("error creating consumer group")
		}
	}
}

// read blocks for new entries across all streams.
func (c *Consumer) read(ctx context.Context) ([]redis.XStream, error) {
	if len(c.streams) == 0 {
		return nil, redis.Nil
	}

	args := make([]string, len(c.streams)*2)
	for i, stream := range c.streams {
		args[i] = stream
		args[len(c.streams)+i] = ">"
	}

	return c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  args,
		Count:    readBatchSize,
		Block:    readBlockTime,
	}).Result()
}

func decodeDelivery(stream string, msg redis.XMessage) (delivery, error) {
	data, ok := msg.Values["data"]
	if !ok {
		return delivery{}, fmt.Errorf("entry %s missing data field", msg.ID)
	}
	dataStr, ok := data.(string)
	if !ok {
		return delivery{}, fmt.Errorf("entry %s data field is not a string", msg.ID)
	}
	return delivery{stream: stream, id: msg.ID, payload: []byte(dataStr)}, nil
}

// parkInDeadLetter copies a failed entry onto dlq:{stream} with failure
// metadata so operators can inspect and replay it.
func (c *Consumer) parkInDeadLetter(ctx context.Context, stream, msgID string) error {
	messages, err := c.client.XRange(ctx, stream, msgID, msgID).Result()
	if err != nil {
		return fmt.Errorf("failed to read entry for dead-letter copy: %w", err)
	}
	if len(messages) == 0 {
		return fmt.Errorf("entry %s not found in stream %s", msgID, stream)
	}

	values := map[string]interface{}{
		"original_stream": stream,
		"original_id":     msgID,
		"failed_at":       time.Now().UTC().Format(time.RFC3339),
		"consumer":        c.consumer,
		"group":           c.group,
	}
	for k, v := range messages[0].Values {
		values["original_"+k] = v
	}

	dlqStream := deadLetterPrefix + stream
	if err := c.client.XAdd(ctx, &redis.XAddArgs{Stream: dlqStream, Values: values}).Err(); err != nil {
		return fmt.Errorf("failed to append to %s: %w", dlqStream, err)
	}

	c.log.Info().
		Str("dlq_stream", dlqStream).
		Str("original_stream", stream).
		Str("original_id", msgID).
		Msg("entry parked in dead-letter stream")

	return nil
}
