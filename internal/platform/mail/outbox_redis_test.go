package mail

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return client, mr
}

func TestNewRedisOutbox_DefaultPrefix(t *testing.T) {
	client, _ := setupTestRedis(t)

	o := NewRedisOutbox(client, "")

	assert.Equal(t, "mail:outbox", o.queueKey())
	assert.Equal(t, "mail:dead", o.deadKey())
}

func TestRedisOutbox_FIFO(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	o := NewRedisOutbox(client, "test")
	ctx := context.Background()

	require.NoError(t, o.Enqueue(ctx, Message{To: "first@example.com", Subject: "s", Body: "b"}))
	require.NoError(t, o.Enqueue(ctx, Message{To: "second@example.com", Subject: "s", Body: "b"}))

	n, err := o.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	m, err := o.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "first@example.com", m.To)
	assert.False(t, m.QueuedAt.IsZero())

	m, err = o.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "second@example.com", m.To)

	m, err = o.Dequeue(ctx)
	require.NoError(t, err)
	assert.Nil(t, m, "empty queue should yield nil")
}

func TestRedisOutbox_CorruptPayloadIsBuried(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	o := NewRedisOutbox(client, "test")
	ctx := context.Background()

	_, err := mr.Lpush("test:outbox", "not json")
	require.NoError(t, err)

	m, err := o.Dequeue(ctx)
	assert.Error(t, err)
	assert.Nil(t, m)

	dead, err := o.DeadLen(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dead)
}

func TestRedisOutbox_Bury(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	o := NewRedisOutbox(client, "test")

	require.NoError(t, o.Bury(context.Background(), Message{To: "x@example.com", Attempts: 5}))

	list, err := mr.List("test:dead")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0], `"attempts":5`)
}
