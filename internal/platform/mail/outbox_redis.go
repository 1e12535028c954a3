package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOutbox is a FIFO of messages waiting to be retried, stored in a Redis list.
// Messages that exhaust their attempts move to a dead letter list.
type RedisOutbox struct {
	client *redis.Client
	prefix string
}

func NewRedisOutbox(client *redis.Client, prefix string) *RedisOutbox {
	if prefix == "" {
		prefix = "mail"
	}
	return &RedisOutbox{client: client, prefix: prefix}
}

func (o *RedisOutbox) queueKey() string {
	return fmt.Sprintf("%s:outbox", o.prefix)
}

func (o *RedisOutbox) deadKey() string {
	return fmt.Sprintf("%s:dead", o.prefix)
}

// Enqueue appends m to the tail of the queue.
func (o *RedisOutbox) Enqueue(ctx context.Context, m Message) error {
	if m.QueuedAt.IsZero() {
		m.QueuedAt = time.Now().UTC()
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return o.client.LPush(ctx, o.queueKey(), data).Err()
}

// Dequeue removes the oldest message. It returns nil when the queue is empty.
func (o *RedisOutbox) Dequeue(ctx context.Context) (*Message, error) {
	data, err := o.client.RPop(ctx, o.queueKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		// Keep the raw payload for inspection rather than dropping it.
		_ = o.client.LPush(ctx, o.deadKey(), data).Err()
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return &m, nil
}

// Bury moves m to the dead letter list.
func (o *RedisOutbox) Bury(ctx context.Context, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return o.client.LPush(ctx, o.deadKey(), data).Err()
}

// Len returns the number of queued messages.
func (o *RedisOutbox) Len(ctx context.Context) (int64, error) {
	return o.client.LLen(ctx, o.queueKey()).Result()
}

// DeadLen returns the number of buried messages.
func (o *RedisOutbox) DeadLen(ctx context.Context) (int64, error) {
	return o.client.LLen(ctx, o.deadKey()).Result()
}
