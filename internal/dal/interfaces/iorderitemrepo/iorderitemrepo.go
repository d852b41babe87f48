package iorderitemrepo

import (
	"context"

	"github.com/biggslaundromat/laundromat/internal/service/models/orderitem"
)

// IOrderItemRepository defines the interface for order item persistence.
type IOrderItemRepository interface {
	BulkInsert(ctx context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error)
	Query(ctx context.Context, query *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error)
}
