// Package event publishes domain events to the Redis bus consumed by the
// gateway (SSE forward) and the AI coach. Publish-only and fire-and-forget:
// no delivery guarantee, no ordering across topics, no retry.
package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Topic names. The payload shapes are a private contract with the
// downstream consumers; every payload carries a "type" field equal to its
// topic.
const (
	TopicJobDiscovered = "EVENT_JOB_DISCOVERED"
	TopicCardMoved     = "EVENT_CARD_MOVED"
	TopicAnalyzeJob    = "CMD_ANALYZE_JOB"
	TopicAnalysisDone  = "EVENT_ANALYSIS_DONE" // published by the AI coach, listed for the contract
)

// Publisher is the outbound event channel. Callers treat failures as
// non-fatal: log and move on.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// RedisPublisher publishes JSON payloads over Redis pub/sub.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a Publisher backed by rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish marshals payload and publishes it on topic.
func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	if err := p.rdb.Publish(ctx, topic, body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
