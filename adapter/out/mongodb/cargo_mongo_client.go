// Package mongodb implements MongoDB adapters for the application.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ClientConfig holds connection pool settings for the document text store.
type ClientConfig struct {
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// DefaultClientConfig is sized for the document text workload: bursty reads
// during batch linking passes, low steady-state traffic otherwise.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		MaxPoolSize:     50,
		MinPoolSize:     5,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}
}

// NewClient connects with default pool settings and verifies the connection.
func NewClient(url string) (*mongo.Client, error) {
	return NewClientWithConfig(url, DefaultClientConfig())
}

// NewClientWithConfig connects with the given pool settings.
func NewClientWithConfig(url string, cfg *ClientConfig) (*mongo.Client, error) {
	if cfg == nil {
		cfg = DefaultClientConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(url).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}
