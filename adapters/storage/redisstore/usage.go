// Package redisstore provides a Redis-backed usage counter.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sms-cost/core/types"
	apperrors "sms-cost/internal/errors"
)

// Config holds Redis configuration
type Config struct {
	// Connection settings
	Address  string `json:"address" yaml:"address"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db" yaml:"db"`

	// KeyPrefix namespaces usage counters
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`

	// Retention is how long a period's counter is kept after its last write (0 = forever)
	Retention time.Duration `json:"retention" yaml:"retention"`

	// Timeouts
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// DefaultConfig returns default Redis configuration
func DefaultConfig() Config {
	return Config{
		Address:      "localhost:6379",
		KeyPrefix:    "usage",
		Retention:    400 * 24 * time.Hour,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// UsageCounter counts usage per subject and period in Redis
type UsageCounter struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

// NewUsageCounter connects to Redis and verifies the connection
func NewUsageCounter(ctx context.Context, cfg Config) (*UsageCounter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.Storage("failed to connect to redis", err)
	}

	return NewUsageCounterWithClient(client, cfg), nil
}

// NewUsageCounterWithClient wraps an existing client
func NewUsageCounterWithClient(client *redis.Client, cfg Config) *UsageCounter {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "usage"
	}
	return &UsageCounter{
		client:    client,
		prefix:    prefix,
		retention: cfg.Retention,
	}
}

func (c *UsageCounter) key(subject uuid.UUID, period types.Period) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, subject, period)
}

// Add increments the subject's counter for period by quantity
func (c *UsageCounter) Add(ctx context.Context, subject uuid.UUID, period types.Period, quantity int64) error {
	if quantity < 0 {
		return apperrors.Input("usage quantity must not be negative")
	}

	key := c.key(subject, period)
	pipe := c.client.TxPipeline()
	pipe.IncrBy(ctx, key, quantity)
	if c.retention > 0 {
		pipe.Expire(ctx, key, c.retention)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.Storage("failed to record usage", err).WithContext("key", key)
	}
	return nil
}

// QuantityFor returns the subject's counter for period, 0 if never written
func (c *UsageCounter) QuantityFor(ctx context.Context, subject uuid.UUID, period types.Period) (int64, error) {
	key := c.key(subject, period)
	n, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.Storage("failed to read usage", err).WithContext("key", key)
	}
	return n, nil
}

// Close closes the Redis connection
func (c *UsageCounter) Close() error {
	return c.client.Close()
}
