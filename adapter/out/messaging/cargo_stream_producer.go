// Package messaging provides message queue adapters.
package messaging

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"cargo_server/core/port/out"

	"github.com/redis/go-redis/v9"
)

// Stream names
const (
	StreamEmailReceived  = "email:received"
	StreamBatchLink      = "linking:batch"
	StreamShipmentResync = "shipment:resync"
)

// RedisProducer implements out.MessageProducer using Redis Streams.
type RedisProducer struct {
	client *redis.Client
}

// NewRedisProducer creates a new RedisProducer.
func NewRedisProducer(client *redis.Client) *RedisProducer {
	return &RedisProducer{client: client}
}

// PublishEmailReceived publishes a newly ingested email for processing.
func (p *RedisProducer) PublishEmailReceived(ctx context.Context, job *out.EmailReceivedJob) error {
	return p.publish(ctx, StreamEmailReceived, job)
}

// PublishShipmentResync publishes a shipment resync job.
func (p *RedisProducer) PublishShipmentResync(ctx context.Context, job *out.ShipmentResyncJob) error {
	return p.publish(ctx, StreamShipmentResync, job)
}

// PublishBatchLink publishes a batch linking job.
func (p *RedisProducer) PublishBatchLink(ctx context.Context, job *out.BatchLinkJob) error {
	return p.publish(ctx, StreamBatchLink, job)
}

// publish publishes a job to a stream using go-redis.
func (p *RedisProducer) publish(ctx context.Context, stream string, job interface{}) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     "*",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", stream, err)
	}

	return nil
}

// Ensure RedisProducer implements out.MessageProducer
var _ out.MessageProducer = (*RedisProducer)(nil)
