package worker

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"villagemart-admin/internal/broker"
	"villagemart-admin/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPollerRunsOnInterval(t *testing.T) {
	defer goleak.VerifyNone(t)

	var runs atomic.Int32
	p := NewPoller("test", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	p.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	p.Stop()
	assert.False(t, p.Running())
}

func TestPollerTrigger(t *testing.T) {
	defer goleak.VerifyNone(t)

	ran := make(chan struct{}, 4)
	p := NewPoller("test", time.Hour, func(context.Context) error {
		ran <- struct{}{}
		return nil
	})
	p.Start(context.Background())
	defer p.Stop()

	assert.True(t, p.Trigger())
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("trigger did not run the poller")
	}
}

func TestPollerStopsOnErrStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := NewPoller("test", 5*time.Millisecond, func(context.Context) error { return ErrStop })
	p.Start(context.Background())
	require.Eventually(t, func() bool { return !p.Running() }, time.Second, 5*time.Millisecond)

	// Stop after the loop exited on its own must not block.
	p.Stop()
}

func TestPollerStopWithoutStart(t *testing.T) {
	p := NewPoller("idle", time.Second, func(context.Context) error { return nil })
	p.Stop()
	assert.False(t, p.Running())
}

type recordingInvalidator struct {
	mu        sync.Mutex
	resources []string
}

func (r *recordingInvalidator) InvalidateAll(resource string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources = append(r.resources, resource)
}

func (r *recordingInvalidator) Resources() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.resources...)
}

type queueReader struct {
	mu    sync.Mutex
	queue []kafka.Message
}

func (q *queueReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	q.mu.Lock()
	if len(q.queue) > 0 {
		msg := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()
		return msg, nil
	}
	q.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (q *queueReader) CommitMessages(context.Context, ...kafka.Message) error { return nil }
func (q *queueReader) Close() error                                          { return nil }

func event(t *testing.T, eventType, id string) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(models.CatalogEvent{
		BaseEvent: models.BaseEvent{EventID: "e-" + id, EventType: eventType},
		EntityID:  id,
	})
	require.NoError(t, err)
	return kafka.Message{Value: raw}
}

func TestCatalogWorkerInvalidates(t *testing.T) {
	defer goleak.VerifyNone(t)

	reader := &queueReader{queue: []kafka.Message{
		event(t, models.EventTypeProductChanged, "p1"),
		event(t, models.EventTypeOrderChanged, "o1"),
		event(t, "UNRELATED", "x"),
	}}
	target := &recordingInvalidator{}
	w := NewCatalogWorker(broker.NewConsumerWithReader(reader, "catalog-events"), target)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return len(target.Resources()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	require.NoError(t, w.Stop())

	assert.Equal(t, []string{"products", "orders"}, target.Resources())
}
