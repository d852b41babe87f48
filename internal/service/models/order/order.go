package order

import (
	"time"

	"github.com/biggslaundromat/laundromat/internal/service/models/currency"
	"github.com/biggslaundromat/laundromat/internal/service/models/orderitem"
	"github.com/biggslaundromat/laundromat/internal/service/models/statushistory"
	"github.com/shopspring/decimal"
)

const (
	TypePickupDelivery = "pickup_delivery"
	TypeDropOff        = "drop_off"

	PaymentMethodCash  = "cash"
	PaymentMethodMpesa = "mpesa"
	PaymentMethodCard  = "card"

	PaymentStatusPending = "pending"
)

// Order is one purchase. Its monetary fields are computed once at creation and never recomputed.
type Order struct {
	ID                  int64
	TrackingNumber      string
	CustomerID          int64
	CustomerName        string
	CustomerPhone       string
	OrderType           string
	PickupAddress       string
	DeliveryAddress     string
	PickupLatitude      *float64
	PickupLongitude     *float64
	DeliveryLatitude    *float64
	DeliveryLongitude   *float64
	ScheduledPickup     *time.Time
	ScheduledDelivery   *time.Time
	Subtotal            decimal.Decimal
	DeliveryFee         decimal.Decimal
	DiscountID          *int64
	DiscountAmount      decimal.Decimal
	LoyaltyDiscount     decimal.Decimal
	LoyaltyPointsUsed   int64
	TotalAmount         decimal.Decimal
	Currency            currency.Currency
	PaymentMethod       string
	PaymentStatus       string
	SpecialInstructions string
	Status              Status
	EstimatedCompletion time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	OrderItems          []orderitem.OrderItem
	StatusHistory       []statushistory.Entry
}

// Confirmation is returned to the caller once an order has been persisted.
type Confirmation struct {
	OrderID             int64
	TrackingNumber      string
	TotalAmount         decimal.Decimal
	EstimatedCompletion time.Time
}
