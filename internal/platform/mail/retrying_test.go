package mail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book_catalog/internal/shared/ratelimiter"
)

// mockMailer records sends and fails while failures > 0.
type mockMailer struct {
	mu       sync.Mutex
	failures int
	sent     []Message
	calls    int
}

func (m *mockMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failures > 0 {
		m.failures--
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, Message{To: to, Subject: subject, Body: body})
	return nil
}

func (m *mockMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type failingOutbox struct{ Outbox }

func (failingOutbox) Enqueue(context.Context, Message) error { return errors.New("redis down") }

func TestRetryingMailer_Send(t *testing.T) {
	t.Parallel()

	t.Run("primary succeeds", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		outbox := NewRedisOutbox(client, "test")
		primary := &mockMailer{}

		err := NewRetryingMailer(primary, outbox).Send(context.Background(), "ada@example.com", "Your OTP Code", "123456")

		require.NoError(t, err)
		assert.Equal(t, 1, primary.sentCount())
		n, _ := outbox.Len(context.Background())
		assert.Zero(t, n)
	})

	t.Run("primary fails and message is queued", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		outbox := NewRedisOutbox(client, "test")
		primary := &mockMailer{failures: 1}

		err := NewRetryingMailer(primary, outbox).Send(context.Background(), "ada@example.com", "Your OTP Code", "123456")

		require.NoError(t, err)
		m, err := outbox.Dequeue(context.Background())
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "ada@example.com", m.To)
		assert.Equal(t, 1, m.Attempts)
		assert.Contains(t, m.LastError, "connection refused")
	})

	t.Run("queue unavailable surfaces both errors", func(t *testing.T) {
		primary := &mockMailer{failures: 1}

		err := NewRetryingMailer(primary, failingOutbox{}).Send(context.Background(), "ada@example.com", "s", "b")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Contains(t, err.Error(), "redis down")
	})
}

func TestWorker_ProcessOne(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		failures     int
		attempts     int
		maxAttempts  int
		wantOutcome  Outcome
		wantQueued   int64
		wantDead     int64
		wantDelivery int
	}{
		{"delivered", 0, 1, 3, OutcomeDelivered, 0, 0, 1},
		{"requeued after failure", 1, 1, 3, OutcomeRequeued, 1, 0, 0},
		{"buried when attempts exhausted", 1, 2, 3, OutcomeBuried, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, _ := setupTestRedis(t)
			outbox := NewRedisOutbox(client, "test")
			ctx := context.Background()
			require.NoError(t, outbox.Enqueue(ctx, Message{To: "ada@example.com", Subject: "s", Body: "b", Attempts: tt.attempts}))

			sender := &mockMailer{failures: tt.failures}
			w := NewWorker(outbox, sender, ratelimiter.NewRateLimiter(0, time.Minute), tt.maxAttempts)

			outcome, err := w.ProcessOne(ctx)

			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, outcome)
			assert.Equal(t, tt.wantDelivery, sender.sentCount())
			queued, _ := outbox.Len(ctx)
			assert.Equal(t, tt.wantQueued, queued)
			dead, _ := outbox.DeadLen(ctx)
			assert.Equal(t, tt.wantDead, dead)
		})
	}
}

func TestWorker_ProcessOne_EmptyQueue(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	sender := &mockMailer{}
	w := NewWorker(NewRedisOutbox(client, "test"), sender, nil, 3)

	outcome, err := w.ProcessOne(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OutcomeEmpty, outcome)
	assert.Zero(t, sender.calls)
}

func TestWorker_Run_DrainsUntilCancelled(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	outbox := NewRedisOutbox(client, "test")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, to := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, outbox.Enqueue(ctx, Message{To: to, Subject: "s", Body: "b", Attempts: 1}))
	}

	sender := &mockMailer{failures: 1}
	w := NewWorker(outbox, sender, nil, 5)
	w.pollInterval = 5 * time.Millisecond

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sender.sentCount() == 3 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
