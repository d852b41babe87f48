package ordersvc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/biggslaundromat/laundromat/internal/service/apperr"
	"github.com/biggslaundromat/laundromat/internal/service/models/order"
	"github.com/biggslaundromat/laundromat/internal/service/models/statushistory"
	"go.opentelemetry.io/otel"
)

// UpdateStatus moves an order to next, records the change in its history and
// tells the customer.
func (s *OrderService) UpdateStatus(
	ctx context.Context,
	id int64,
	next order.Status,
	notes string,
) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.UpdateStatus")
	defer span.End()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, apperr.Infra("begin transaction", err)
	}
	defer func() {
		if err := work.Rollback(context.WithoutCancel(ctx)); err != nil {
			slog.Error("Failed to rollback status transaction", "error", err)
		}
	}()

	o, err := s.findOne(ctx, work, &order.QueryOrdersModel{Ids: []int64{id}, Limit: 1})
	if err != nil {
		return order.Order{}, err
	}
	if o == nil {
		return order.Order{}, apperr.NotFound("order", id)
	}

	if !o.Status.CanTransitionTo(next) {
		return order.Order{}, apperr.BusinessRule(
			apperr.ErrInvalidStatusTransition,
			fmt.Sprintf("%s to %s", o.Status, next),
		)
	}

	updated, err := work.OrderRepository().UpdateStatus(ctx, o.ID, o.Status, next)
	if err != nil {
		return order.Order{}, apperr.Infra("update order status", err)
	}
	if !updated {
		return order.Order{}, apperr.BusinessRule(
			apperr.ErrInvalidStatusTransition,
			"order status changed concurrently",
		)
	}

	now := s.now()
	err = work.StatusHistoryRepository().Insert(ctx, statushistory.Entry{
		OrderID:   o.ID,
		Status:    next.String(),
		Notes:     notes,
		CreatedAt: now,
	})
	if err != nil {
		return order.Order{}, apperr.Infra("insert status history", err)
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, apperr.Infra("commit status change", err)
	}

	previous := o.Status
	o.Status = next
	o.UpdatedAt = now

	slog.Info("Order status changed",
		"order_id", o.ID,
		"from", previous,
		"to", next,
	)

	s.dispatch(ctx, s.statusMessage(*o, notes, now))

	return *o, nil
}
