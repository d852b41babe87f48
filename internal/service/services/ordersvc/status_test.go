package ordersvc

import (
	"testing"

	"github.com/biggslaundromat/laundromat/internal/service/apperr"
	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
	"github.com/biggslaundromat/laundromat/internal/service/models/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	conf, err := f.svc.CreateOrder(t.Context(), f.request())
	require.NoError(t, err)
	f.svc.Wait()

	o, err := f.svc.UpdateStatus(t.Context(), conf.OrderID, order.StatusConfirmed, "Picked up by rider")
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, order.StatusConfirmed, o.Status)
	assert.Equal(t, order.StatusConfirmed, f.store.data.orders[conf.OrderID].Status)

	require.Len(t, f.store.data.history, 2)
	assert.Equal(t, "confirmed", f.store.data.history[1].Status)
	assert.Equal(t, "Picked up by rider", f.store.data.history[1].Notes)

	sent := f.notifier.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, notification.KindOrderStatusChanged, sent[1].Kind)
	assert.Equal(t,
		"Hi Jane Doe! Your order #BGAAAA2222 is now Confirmed. Picked up by rider. "+
			"Track your order: https://biggs.test/track/BGAAAA2222",
		sent[1].Body,
	)
}

func TestUpdateStatusFullLifecycle(t *testing.T) {
	f := newFixture(t)
	conf, err := f.svc.CreateOrder(t.Context(), f.request())
	require.NoError(t, err)

	f.svc.Wait()

	for _, next := range []order.Status{
		order.StatusConfirmed,
		order.StatusInProgress,
		order.StatusReadyForDelivery,
		order.StatusCompleted,
	} {
		_, err := f.svc.UpdateStatus(t.Context(), conf.OrderID, next, "")
		require.NoError(t, err, next)
		f.svc.Wait()
	}

	assert.Equal(t, order.StatusCompleted, f.store.data.orders[conf.OrderID].Status)
	assert.Len(t, f.store.data.history, 5)

	sent := f.notifier.sent()
	require.Len(t, sent, 5)
	assert.Equal(t,
		"Hi Jane Doe! Your order #BGAAAA2222 is now Ready for Delivery. Amount due: KES 1,800.00. "+
			"Track your order: https://biggs.test/track/BGAAAA2222",
		sent[3].Body,
	)
	assert.NotContains(t, sent[4].Body, "Amount due")
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	tests := []struct {
		name  string
		setup []order.Status
		next  order.Status
	}{
		{name: "skip ahead", next: order.StatusCompleted},
		{name: "back to pending", setup: []order.Status{order.StatusConfirmed}, next: order.StatusPending},
		{name: "after cancel", setup: []order.Status{order.StatusCancelled}, next: order.StatusConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			conf, err := f.svc.CreateOrder(t.Context(), f.request())
			require.NoError(t, err)
			for _, s := range tt.setup {
				_, err := f.svc.UpdateStatus(t.Context(), conf.OrderID, s, "")
				require.NoError(t, err)
			}
			historyBefore := len(f.store.data.history)

			_, err = f.svc.UpdateStatus(t.Context(), conf.OrderID, tt.next, "")

			require.ErrorIs(t, err, apperr.ErrInvalidStatusTransition)
			assert.Len(t, f.store.data.history, historyBefore)
		})
	}
}

func TestUpdateStatusNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(t.Context(), 404, order.StatusConfirmed, "")

	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "order", notFound.Resource)
}

func TestGetOrder(t *testing.T) {
	f := newFixture(t)
	conf, err := f.svc.CreateOrder(t.Context(), f.request())
	require.NoError(t, err)

	o, err := f.svc.GetOrder(t.Context(), conf.OrderID)
	require.NoError(t, err)

	assert.Equal(t, conf.TrackingNumber, o.TrackingNumber)
	assert.Equal(t, "Jane Doe", o.CustomerName)
	assert.Len(t, o.OrderItems, 2)

	_, err = f.svc.GetOrder(t.Context(), conf.OrderID+1000)
	var notFound *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestTrackOrder(t *testing.T) {
	f := newFixture(t)
	conf, err := f.svc.CreateOrder(t.Context(), f.request())
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(t.Context(), conf.OrderID, order.StatusConfirmed, "")
	require.NoError(t, err)

	o, err := f.svc.TrackOrder(t.Context(), conf.TrackingNumber)
	require.NoError(t, err)

	assert.Equal(t, conf.OrderID, o.ID)
	assert.Len(t, o.OrderItems, 2)
	require.Len(t, o.StatusHistory, 2)
	assert.Equal(t, "confirmed", o.StatusHistory[0].Status)
	assert.Equal(t, "pending", o.StatusHistory[1].Status)

	_, err = f.svc.TrackOrder(t.Context(), "BGNOPE2222")
	var notFound *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
