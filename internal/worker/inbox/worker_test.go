package inbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInbox struct {
	due         []notification.Pending
	resolved    []int64
	rescheduled []notification.Pending
}

func (r *fakeInbox) Park(context.Context, notification.Pending) error { return nil }

func (r *fakeInbox) Due(context.Context, int) ([]notification.Pending, error) {
	return r.due, nil
}

func (r *fakeInbox) Resolve(_ context.Context, id int64) error {
	r.resolved = append(r.resolved, id)

	return nil
}

func (r *fakeInbox) Reschedule(_ context.Context, p notification.Pending) error {
	r.rescheduled = append(r.rescheduled, p)

	return nil
}

type fakeService struct {
	err       error
	processed []notification.Message
}

func (s *fakeService) ProcessNotification(_ context.Context, msg notification.Message) error {
	s.processed = append(s.processed, msg)

	return s.err
}

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestWorker(repo *fakeInbox, svc *fakeService) *Worker {
	return &Worker{
		inbox:         repo,
		service:       svc,
		pollInterval:  time.Second,
		batchSize:     10,
		retryInterval: 30 * time.Second,
		now:           func() time.Time { return fixedNow },
		stopCh:        make(chan struct{}),
	}
}

const validPayload = `{"id":"01JNR3ZK8W6Y0A5T2B9C4D7E1F","kind":"order.confirmed","order_id":15,"phone":"+254712345678","body":"Hi Jane!"}`

func parked(id int64, payload string, attempts int) notification.Pending {
	return notification.Pending{
		ID:          id,
		MessageID:   "01JNR3ZK8W6Y0A5T2B9C4D7E1F",
		OrderID:     15,
		Kind:        notification.KindOrderConfirmed,
		Payload:     []byte(payload),
		Attempts:    attempts,
		MaxAttempts: 3,
	}
}

func TestDrainDeliversAndResolves(t *testing.T) {
	repo := &fakeInbox{due: []notification.Pending{parked(1, validPayload, 0)}}
	svc := &fakeService{}

	newTestWorker(repo, svc).drain(t.Context())

	require.Len(t, svc.processed, 1)
	assert.Equal(t, int64(15), svc.processed[0].OrderID)
	assert.Equal(t, "+254712345678", svc.processed[0].Phone)
	assert.Equal(t, []int64{1}, repo.resolved)
	assert.Empty(t, repo.rescheduled)
}

func TestDrainReschedulesFailedDelivery(t *testing.T) {
	repo := &fakeInbox{due: []notification.Pending{parked(2, validPayload, 0)}}
	svc := &fakeService{err: errors.New("whatsapp unavailable")}

	newTestWorker(repo, svc).drain(t.Context())

	assert.Empty(t, repo.resolved)
	require.Len(t, repo.rescheduled, 1)
	got := repo.rescheduled[0]
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, "whatsapp unavailable", got.LastError)
	assert.Equal(t, fixedNow.Add(time.Minute), got.NextAttemptAt)
	assert.False(t, got.Exhausted())
}

func TestDrainLastAttemptExhausts(t *testing.T) {
	repo := &fakeInbox{due: []notification.Pending{parked(3, validPayload, 2)}}
	svc := &fakeService{err: errors.New("whatsapp unavailable")}

	newTestWorker(repo, svc).drain(t.Context())

	require.Len(t, repo.rescheduled, 1)
	assert.True(t, repo.rescheduled[0].Exhausted())
}

func TestDrainDropsUndecodablePayload(t *testing.T) {
	repo := &fakeInbox{due: []notification.Pending{parked(4, "{", 0)}}
	svc := &fakeService{}

	newTestWorker(repo, svc).drain(t.Context())

	assert.Empty(t, svc.processed)
	assert.Equal(t, []int64{4}, repo.resolved)
	assert.Empty(t, repo.rescheduled)
}
