package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/biggslaundromat/laundromat/internal/service/apperr"
	"github.com/biggslaundromat/laundromat/internal/service/models/customer"
	"github.com/biggslaundromat/laundromat/internal/service/models/discount"
	"github.com/biggslaundromat/laundromat/internal/service/models/order"
	"github.com/biggslaundromat/laundromat/internal/service/models/orderitem"
	"github.com/biggslaundromat/laundromat/internal/service/models/statushistory"
	"github.com/biggslaundromat/laundromat/internal/service/phone"
	"github.com/biggslaundromat/laundromat/internal/service/pricing"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const placedNote = "Order placed"

// CreateOrder validates req, prices it and persists the order, its items and
// the loyalty changes in one transaction. A confirmation message is queued
// after commit and never affects the result.
func (s *OrderService) CreateOrder(
	ctx context.Context,
	req order.CreateRequest,
) (order.Confirmation, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.CreateOrder")
	defer span.End()

	if errs := req.Validate(); len(errs) > 0 {
		return order.Confirmation{}, apperr.Validation(errs...)
	}
	req = req.WithDefaults()

	canonicalPhone, err := phone.Normalize(req.CustomerPhone)
	if err != nil {
		return order.Confirmation{}, apperr.Validation("Field 'customer_phone' is not a valid phone number")
	}

	now := s.now()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Confirmation{}, apperr.Infra("begin transaction", err)
	}
	defer func() {
		if err := work.Rollback(context.WithoutCancel(ctx)); err != nil {
			slog.Error("Failed to rollback order transaction", "error", err)
		}
	}()

	cust, err := s.resolveCustomer(ctx, work, req, canonicalPhone, now)
	if err != nil {
		return order.Confirmation{}, err
	}

	items, subtotal, err := s.priceItems(ctx, work, req.Items)
	if err != nil {
		return order.Confirmation{}, err
	}

	var pickup *pricing.Point
	if req.HasPickupLocation() {
		pickup = &pricing.Point{Latitude: *req.PickupLatitude, Longitude: *req.PickupLongitude}
	}
	deliveryFee := s.rules.DeliveryFee(pickup)

	disc, discountAmount, err := s.applyDiscount(ctx, work, req.DiscountCode, subtotal, now)
	if err != nil {
		return order.Confirmation{}, err
	}

	loyaltyDiscount := decimal.Zero
	if req.UseLoyaltyPoints {
		account, err := work.LoyaltyRepository().GetByCustomerID(ctx, cust.ID)
		if err != nil {
			return order.Confirmation{}, apperr.Infra("get loyalty account", err)
		}
		if account != nil {
			loyaltyDiscount, _ = s.rules.LoyaltyDiscount(account.CurrentBalance)
		}
	}

	breakdown := pricing.Settle(subtotal, deliveryFee, discountAmount, loyaltyDiscount)

	pointsUsed := s.rules.PointsForDiscount(breakdown.LoyaltyDiscount)
	if pointsUsed > 0 {
		ok, err := work.LoyaltyRepository().Redeem(ctx, cust.ID, pointsUsed)
		if err != nil {
			return order.Confirmation{}, apperr.Infra("redeem loyalty points", err)
		}
		if !ok {
			return order.Confirmation{}, apperr.BusinessRule(apperr.ErrLoyaltyBalanceChanged, "")
		}
	}

	trackingNumber, err := s.allocateTrackingNumber(ctx, work)
	if err != nil {
		return order.Confirmation{}, err
	}

	o := order.Order{
		TrackingNumber:      trackingNumber,
		CustomerID:          cust.ID,
		CustomerName:        cust.Name,
		CustomerPhone:       cust.Phone,
		OrderType:           req.OrderType,
		PickupAddress:       req.PickupAddress,
		DeliveryAddress:     req.DeliveryAddress,
		PickupLatitude:      req.PickupLatitude,
		PickupLongitude:     req.PickupLongitude,
		DeliveryLatitude:    req.DeliveryLatitude,
		DeliveryLongitude:   req.DeliveryLongitude,
		ScheduledPickup:     req.ScheduledPickup,
		ScheduledDelivery:   req.ScheduledDelivery,
		Subtotal:            breakdown.Subtotal,
		DeliveryFee:         breakdown.DeliveryFee,
		DiscountAmount:      breakdown.DiscountAmount,
		LoyaltyDiscount:     breakdown.LoyaltyDiscount,
		LoyaltyPointsUsed:   pointsUsed,
		TotalAmount:         breakdown.Total,
		Currency:            s.currency,
		PaymentMethod:       req.PaymentMethod,
		PaymentStatus:       order.PaymentStatusPending,
		SpecialInstructions: req.SpecialInstructions,
		Status:              order.StatusPending,
		EstimatedCompletion: now.Add(s.turnaround),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if o.PickupAddress == "" {
		o.PickupAddress = cust.Address
	}
	if o.DeliveryAddress == "" {
		o.DeliveryAddress = o.PickupAddress
	}
	if disc != nil {
		o.DiscountID = &disc.ID
	}

	o, err = work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return order.Confirmation{}, apperr.Infra("insert order", err)
	}

	for i := range items {
		items[i].OrderID = o.ID
		items[i].CreatedAt = now
	}
	o.OrderItems, err = work.OrderItemRepository().BulkInsert(ctx, items)
	if err != nil {
		return order.Confirmation{}, apperr.Infra("insert order items", err)
	}

	err = work.StatusHistoryRepository().Insert(ctx, statushistory.Entry{
		OrderID:   o.ID,
		Status:    order.StatusPending.String(),
		Notes:     placedNote,
		CreatedAt: now,
	})
	if err != nil {
		return order.Confirmation{}, apperr.Infra("insert status history", err)
	}

	if err := s.accrueLoyalty(ctx, work, cust.ID, o.TotalAmount); err != nil {
		return order.Confirmation{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Confirmation{}, apperr.Infra("commit order", err)
	}

	span.SetAttributes(
		attribute.Int64("order.id", o.ID),
		attribute.String("order.tracking_number", o.TrackingNumber),
	)
	slog.Info("Order created",
		"order_id", o.ID,
		"tracking_number", o.TrackingNumber,
		"customer_id", cust.ID,
		"total_amount", o.TotalAmount.StringFixed(2),
	)

	s.dispatch(ctx, s.confirmationMessage(o, now))

	return order.Confirmation{
		OrderID:             o.ID,
		TrackingNumber:      o.TrackingNumber,
		TotalAmount:         o.TotalAmount,
		EstimatedCompletion: o.EstimatedCompletion,
	}, nil
}

func (s *OrderService) resolveCustomer(
	ctx context.Context,
	work unitOfWork,
	req order.CreateRequest,
	canonicalPhone string,
	now time.Time,
) (customer.Customer, error) {
	repo := work.CustomerRepository()

	existing, err := repo.FindByPhone(ctx, canonicalPhone)
	if err != nil {
		return customer.Customer{}, apperr.Infra("find customer", err)
	}

	if existing == nil {
		c := customer.Customer{
			Name:      req.CustomerName,
			Phone:     canonicalPhone,
			Latitude:  req.PickupLatitude,
			Longitude: req.PickupLongitude,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if req.CustomerEmail != nil {
			c.Email = *req.CustomerEmail
		}
		if req.CustomerAddress != nil {
			c.Address = *req.CustomerAddress
		}

		created, err := repo.Insert(ctx, c)
		if err != nil {
			return customer.Customer{}, apperr.Infra("insert customer", err)
		}

		return created, nil
	}

	var upd customer.Update
	if req.CustomerName != existing.Name {
		upd.Name = &req.CustomerName
	}
	if req.CustomerEmail != nil && *req.CustomerEmail != existing.Email {
		upd.Email = req.CustomerEmail
	}
	if req.CustomerAddress != nil && *req.CustomerAddress != existing.Address {
		upd.Address = req.CustomerAddress
	}
	if upd.IsEmpty() {
		return *existing, nil
	}

	if err := repo.Update(ctx, existing.ID, upd); err != nil {
		return customer.Customer{}, apperr.Infra("update customer", err)
	}

	return upd.Apply(*existing), nil
}

func (s *OrderService) priceItems(
	ctx context.Context,
	work unitOfWork,
	requested []order.ItemRequest,
) ([]orderitem.OrderItem, decimal.Decimal, error) {
	items := make([]orderitem.OrderItem, 0, len(requested))
	subtotal := decimal.Zero

	for _, r := range requested {
		svc, err := work.CatalogRepository().GetByID(ctx, r.ServiceID)
		if err != nil {
			return nil, decimal.Zero, apperr.Infra("get service", err)
		}
		if svc == nil {
			return nil, decimal.Zero, apperr.NotFound("service", r.ServiceID)
		}
		if !svc.IsActive {
			return nil, decimal.Zero, apperr.BusinessRule(apperr.ErrServiceInactive, svc.Name)
		}

		quantity := *r.Quantity
		lineTotal := svc.BasePrice.Mul(decimal.NewFromInt(int64(quantity)))
		subtotal = subtotal.Add(lineTotal)

		items = append(items, orderitem.OrderItem{
			ServiceID:           svc.ID,
			ServiceName:         svc.Name,
			ServiceCategory:     svc.Category.String(),
			Quantity:            quantity,
			UnitPrice:           svc.BasePrice,
			TotalPrice:          lineTotal,
			SpecialInstructions: r.SpecialInstructions,
		})
	}

	return items, subtotal, nil
}

// applyDiscount returns the discount and its amount. An unknown or inactive
// code yields no discount; a known code that cannot be used is an error.
func (s *OrderService) applyDiscount(
	ctx context.Context,
	work unitOfWork,
	code string,
	subtotal decimal.Decimal,
	now time.Time,
) (*discount.Discount, decimal.Decimal, error) {
	if code == "" {
		return nil, decimal.Zero, nil
	}

	repo := work.DiscountRepository()

	d, err := repo.FindActiveByCode(ctx, code)
	if err != nil {
		return nil, decimal.Zero, apperr.Infra("find discount", err)
	}
	if d == nil {
		slog.Info("Ignoring unknown discount code", "code", code)

		return nil, decimal.Zero, nil
	}

	if !d.ValidAt(now) {
		return nil, decimal.Zero, apperr.BusinessRule(apperr.ErrDiscountNotValidNow, d.Code)
	}
	if !d.MeetsMinimum(subtotal) {
		return nil, decimal.Zero, apperr.BusinessRule(
			apperr.ErrDiscountBelowMinimum,
			fmt.Sprintf("minimum order amount is %s", d.MinOrderAmount.StringFixed(2)),
		)
	}
	if d.Exhausted() {
		return nil, decimal.Zero, apperr.BusinessRule(apperr.ErrDiscountExhausted, d.Code)
	}

	claimed, err := repo.ClaimUsage(ctx, d.ID)
	if err != nil {
		return nil, decimal.Zero, apperr.Infra("claim discount usage", err)
	}
	if !claimed {
		return nil, decimal.Zero, apperr.BusinessRule(apperr.ErrDiscountExhausted, d.Code)
	}

	return d, d.Amount(subtotal), nil
}

func (s *OrderService) allocateTrackingNumber(ctx context.Context, work unitOfWork) (string, error) {
	for range s.trackingAttempts {
		candidate, err := s.generator.Generate()
		if err != nil {
			return "", apperr.Infra("generate tracking number", err)
		}

		exists, err := work.OrderRepository().TrackingNumberExists(ctx, candidate)
		if err != nil {
			return "", apperr.Infra("check tracking number", err)
		}
		if !exists {
			return candidate, nil
		}

		slog.Warn("Tracking number collision", "tracking_number", candidate)
	}

	return "", apperr.Infra("allocate tracking number", apperr.ErrTrackingNumberExhausted)
}

func (s *OrderService) accrueLoyalty(
	ctx context.Context,
	work unitOfWork,
	customerID int64,
	total decimal.Decimal,
) error {
	points := s.rules.PointsEarned(total)
	if points <= 0 {
		return nil
	}

	repo := work.LoyaltyRepository()

	account, err := repo.Accrue(ctx, customerID, points)
	if err != nil {
		return apperr.Infra("accrue loyalty points", err)
	}

	tier := s.rules.TierFor(account.TotalPointsEarned)
	if tier == account.Tier {
		return nil
	}

	if err := repo.SetTier(ctx, customerID, tier); err != nil {
		return apperr.Infra("set loyalty tier", err)
	}

	return nil
}

