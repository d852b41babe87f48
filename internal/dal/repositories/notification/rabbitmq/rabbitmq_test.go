package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu        sync.Mutex
	err       error
	block     chan struct{}
	published []amqp.Publishing
}

func (c *fakeChannel) Publish(_, _ string, _, _ bool, msg amqp.Publishing) error {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.published = append(c.published, msg)

	return nil
}

type fakeOutbox struct {
	parked []notification.Pending
	err    error
}

func (o *fakeOutbox) Park(_ context.Context, p notification.Pending) error {
	if o.err != nil {
		return o.err
	}
	o.parked = append(o.parked, p)

	return nil
}

func (o *fakeOutbox) Due(context.Context, int) ([]notification.Pending, error) { return nil, nil }

func (o *fakeOutbox) Resolve(context.Context, int64) error { return nil }

func (o *fakeOutbox) Reschedule(context.Context, notification.Pending) error { return nil }

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newPublisher(ch channel, ob *fakeOutbox) *NotificationPublisher {
	return &NotificationPublisher{
		channel:     ch,
		queueName:   "laundromat.notifications",
		outbox:      ob,
		timeout:     50 * time.Millisecond,
		maxAttempts: 3,
		now:         func() time.Time { return fixedNow },
	}
}

func testMessage() notification.Message {
	return notification.NewMessage(notification.KindOrderConfirmed, 7, "+254712345678", "Hi", time.Now())
}

func TestNotifyPublishes(t *testing.T) {
	ch := &fakeChannel{}
	ob := &fakeOutbox{}
	msg := testMessage()

	require.NoError(t, newPublisher(ch, ob).Notify(context.Background(), msg))

	require.Len(t, ch.published, 1)
	assert.Empty(t, ob.parked)
	assert.Equal(t, msg.ID, ch.published[0].MessageId)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)

	var decoded notification.Message
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &decoded))
	assert.Equal(t, msg.OrderID, decoded.OrderID)
	assert.Equal(t, msg.Body, decoded.Body)
}

func TestNotifyFallsBackToOutbox(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	ob := &fakeOutbox{}
	msg := testMessage()

	require.NoError(t, newPublisher(ch, ob).Notify(context.Background(), msg))

	require.Len(t, ob.parked, 1)
	stored := ob.parked[0]
	assert.Equal(t, msg.ID, stored.MessageID)
	assert.Equal(t, msg.OrderID, stored.OrderID)
	assert.Equal(t, notification.KindOrderConfirmed, stored.Kind)
	assert.Equal(t, 3, stored.MaxAttempts)
	assert.Equal(t, "channel closed", stored.LastError)
	assert.Equal(t, fixedNow, stored.NextAttemptAt)

	parked, err := stored.Decode()
	require.NoError(t, err)
	assert.Equal(t, msg.Body, parked.Body)
}

func TestNotifyTimesOutToOutbox(t *testing.T) {
	ch := &fakeChannel{block: make(chan struct{})}
	defer close(ch.block)
	ob := &fakeOutbox{}

	require.NoError(t, newPublisher(ch, ob).Notify(context.Background(), testMessage()))

	require.Len(t, ob.parked, 1)
	assert.Equal(t, context.DeadlineExceeded.Error(), ob.parked[0].LastError)
}

func TestNotifyReportsOutboxFailure(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	ob := &fakeOutbox{err: errors.New("db down")}

	err := newPublisher(ch, ob).Notify(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
