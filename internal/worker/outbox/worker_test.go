package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	err       error
	published []amqp.Publishing
	keys      []string
}

func (c *fakeChannel) Publish(_, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)

	return nil
}

type fakeOutbox struct {
	due         []notification.Pending
	resolved    []int64
	rescheduled []notification.Pending
}

func (o *fakeOutbox) Park(context.Context, notification.Pending) error { return nil }

func (o *fakeOutbox) Due(_ context.Context, limit int) ([]notification.Pending, error) {
	if len(o.due) > limit {
		return o.due[:limit], nil
	}

	return o.due, nil
}

func (o *fakeOutbox) Resolve(_ context.Context, id int64) error {
	o.resolved = append(o.resolved, id)

	return nil
}

func (o *fakeOutbox) Reschedule(_ context.Context, p notification.Pending) error {
	o.rescheduled = append(o.rescheduled, p)

	return nil
}

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestWorker(repo *fakeOutbox, ch *fakeChannel) *Worker {
	return &Worker{
		outbox:        repo,
		channel:       ch,
		queueName:     "laundromat.notifications",
		pollInterval:  time.Second,
		batchSize:     10,
		retryInterval: 30 * time.Second,
		now:           func() time.Time { return fixedNow },
		stopCh:        make(chan struct{}),
	}
}

func parked(id int64, attempts int) notification.Pending {
	return notification.Pending{
		ID:          id,
		MessageID:   "01JNR3ZK8W6Y0A5T2B9C4D7E1F",
		OrderID:     15,
		Kind:        notification.KindOrderConfirmed,
		Payload:     []byte(`{"id":"01JNR3ZK8W6Y0A5T2B9C4D7E1F"}`),
		Attempts:    attempts,
		MaxAttempts: 5,
	}
}

func TestFlushPublishesAndResolves(t *testing.T) {
	repo := &fakeOutbox{due: []notification.Pending{parked(1, 0), parked(2, 3)}}
	ch := &fakeChannel{}

	newTestWorker(repo, ch).flush(t.Context())

	require.Len(t, ch.published, 2)
	assert.Equal(t, []string{"laundromat.notifications", "laundromat.notifications"}, ch.keys)
	assert.Equal(t, "01JNR3ZK8W6Y0A5T2B9C4D7E1F", ch.published[0].MessageId)
	assert.Equal(t, "order.confirmed", ch.published[0].Type)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)
	assert.Equal(t, []int64{1, 2}, repo.resolved)
	assert.Empty(t, repo.rescheduled)
}

func TestFlushReschedulesWithBackoff(t *testing.T) {
	repo := &fakeOutbox{due: []notification.Pending{parked(4, 1)}}
	ch := &fakeChannel{err: errors.New("channel/connection is not open")}

	newTestWorker(repo, ch).flush(t.Context())

	assert.Empty(t, repo.resolved)
	require.Len(t, repo.rescheduled, 1)
	got := repo.rescheduled[0]
	assert.Equal(t, int64(4), got.ID)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, "channel/connection is not open", got.LastError)
	assert.Equal(t, fixedNow.Add(2*time.Minute), got.NextAttemptAt)
}

func TestStartStops(t *testing.T) {
	w := newTestWorker(&fakeOutbox{}, &fakeChannel{})

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
