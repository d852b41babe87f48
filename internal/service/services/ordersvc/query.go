package ordersvc

import (
	"context"

	"github.com/biggslaundromat/laundromat/internal/service/apperr"
	"github.com/biggslaundromat/laundromat/internal/service/models/order"
	"github.com/biggslaundromat/laundromat/internal/service/models/orderitem"
	"go.opentelemetry.io/otel"
)

// GetOrder returns the order with its items.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.GetOrder")
	defer span.End()

	work := s.newUOW()

	o, err := s.findOne(ctx, work, &order.QueryOrdersModel{Ids: []int64{id}, Limit: 1})
	if err != nil {
		return order.Order{}, err
	}
	if o == nil {
		return order.Order{}, apperr.NotFound("order", id)
	}

	o.OrderItems, err = s.loadItems(ctx, work, o.ID)
	if err != nil {
		return order.Order{}, err
	}

	return *o, nil
}

// TrackOrder returns the order behind a public tracking number together with
// its items and status history, newest entry first.
func (s *OrderService) TrackOrder(ctx context.Context, trackingNumber string) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.TrackOrder")
	defer span.End()

	work := s.newUOW()

	o, err := s.findOne(ctx, work, &order.QueryOrdersModel{
		TrackingNumbers: []string{trackingNumber},
		Limit:           1,
	})
	if err != nil {
		return order.Order{}, err
	}
	if o == nil {
		return order.Order{}, apperr.NotFound("order", trackingNumber)
	}

	o.OrderItems, err = s.loadItems(ctx, work, o.ID)
	if err != nil {
		return order.Order{}, err
	}

	o.StatusHistory, err = work.StatusHistoryRepository().ListByOrderID(ctx, o.ID)
	if err != nil {
		return order.Order{}, apperr.Infra("list status history", err)
	}

	return *o, nil
}

func (s *OrderService) findOne(
	ctx context.Context,
	work unitOfWork,
	query *order.QueryOrdersModel,
) (*order.Order, error) {
	orders, err := work.OrderRepository().Query(ctx, query)
	if err != nil {
		return nil, apperr.Infra("query orders", err)
	}
	if len(orders) == 0 {
		return nil, nil
	}

	return &orders[0], nil
}

func (s *OrderService) loadItems(
	ctx context.Context,
	work unitOfWork,
	orderID int64,
) ([]orderitem.OrderItem, error) {
	items, err := work.OrderItemRepository().Query(ctx, &orderitem.QueryOrderItemsModel{
		OrderIds: []int64{orderID},
	})
	if err != nil {
		return nil, apperr.Infra("query order items", err)
	}

	return items, nil
}
