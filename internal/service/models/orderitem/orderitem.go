package orderitem

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is an immutable line of an order. UnitPrice is the catalog price at order time.
type OrderItem struct {
	ID                  int64
	OrderID             int64
	ServiceID           int64
	ServiceName         string
	ServiceCategory     string
	Quantity            int
	UnitPrice           decimal.Decimal
	TotalPrice          decimal.Decimal
	SpecialInstructions string
	CreatedAt           time.Time
}
