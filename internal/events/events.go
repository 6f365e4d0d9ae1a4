// Package events publishes match lifecycle events to Redis for the Gateway
// to forward over SSE. Publishing is best-effort: a failed publish is logged
// by the caller and never fails the originating request.
package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Channel names.
const (
	MatchCreated       = "EVENT_MATCH_CREATED"
	MatchStatusChanged = "EVENT_MATCH_STATUS_CHANGED"
)

// Publisher is the minimal pub/sub surface the engine needs. Tests pass a
// nil or fake Publisher.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// RedisPublisher publishes JSON payloads on Redis channels.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher wraps an existing Redis client.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish marshals payload to JSON and publishes it on channel.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, channel, data).Err()
}
