package iorderrepo

import (
	"context"

	"github.com/biggslaundromat/laundromat/internal/service/models/order"
)

// IOrderRepository defines the interface for order persistence.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	Query(ctx context.Context, query *order.QueryOrdersModel) ([]order.Order, error)
	TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error)

	// UpdateStatus moves the order from one status to another and reports
	// false when the order was no longer in the from status
	UpdateStatus(ctx context.Context, id int64, from, to order.Status) (bool, error)
}
