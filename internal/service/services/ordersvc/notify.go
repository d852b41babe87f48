package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
	"github.com/biggslaundromat/laundromat/internal/service/models/order"
)

const completionLayout = "2006-01-02 15:04"

func (s *OrderService) confirmationMessage(o order.Order, now time.Time) notification.Message {
	body := fmt.Sprintf(
		"Hi %s! Your order #%s has been confirmed. Estimated completion: %s. Track your order: %s%s",
		o.CustomerName,
		o.TrackingNumber,
		o.EstimatedCompletion.Format(completionLayout),
		s.trackingURL,
		o.TrackingNumber,
	)

	return notification.NewMessage(notification.KindOrderConfirmed, o.ID, o.CustomerPhone, body, now)
}

func (s *OrderService) statusMessage(o order.Order, notes string, now time.Time) notification.Message {
	body := fmt.Sprintf(
		"Hi %s! Your order #%s is now %s.",
		o.CustomerName,
		o.TrackingNumber,
		o.Status.DisplayName(),
	)
	if notes != "" {
		body += " " + strings.TrimSuffix(notes, ".") + "."
	}
	if o.Status == order.StatusReadyForDelivery && o.PaymentStatus == order.PaymentStatusPending {
		body += fmt.Sprintf(" Amount due: %s.", o.Currency.Format(o.TotalAmount))
	}
	body += fmt.Sprintf(" Track your order: %s%s", s.trackingURL, o.TrackingNumber)

	return notification.NewMessage(notification.KindOrderStatusChanged, o.ID, o.CustomerPhone, body, now)
}

// dispatch hands msg to the notifier in the background. The request context
// only contributes its values; the send has its own timeout.
func (s *OrderService) dispatch(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notificationTimeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, msg); err != nil {
			slog.Error("Failed to queue customer notification",
				"message_id", msg.ID,
				"order_id", msg.OrderID,
				"kind", msg.Kind,
				"error", err,
			)
		}
	}()
}
