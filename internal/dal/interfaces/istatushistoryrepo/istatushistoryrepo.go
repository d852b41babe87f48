package istatushistoryrepo

import (
	"context"

	"github.com/biggslaundromat/laundromat/internal/service/models/statushistory"
)

// IStatusHistoryRepository defines the interface for the order status log.
type IStatusHistoryRepository interface {
	Insert(ctx context.Context, entry statushistory.Entry) error
	// ListByOrderID returns the newest entry first
	ListByOrderID(ctx context.Context, orderID int64) ([]statushistory.Entry, error)
}
