package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/biggslaundromat/laundromat/internal/dal/postgres"
	"github.com/biggslaundromat/laundromat/internal/service/models/currency"
	"github.com/biggslaundromat/laundromat/internal/service/models/order"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// OrderDal represents the orders row joined with the customer name and phone.
type OrderDal struct {
	Id                  int64           `db:"id"`
	TrackingNumber      string          `db:"tracking_number"`
	CustomerId          int64           `db:"customer_id"`
	CustomerName        string          `db:"customer_name"`
	CustomerPhone       string          `db:"customer_phone"`
	OrderType           string          `db:"order_type"`
	PickupAddress       *string         `db:"pickup_address"`
	DeliveryAddress     *string         `db:"delivery_address"`
	PickupLatitude      *float64        `db:"pickup_latitude"`
	PickupLongitude     *float64        `db:"pickup_longitude"`
	DeliveryLatitude    *float64        `db:"delivery_latitude"`
	DeliveryLongitude   *float64        `db:"delivery_longitude"`
	ScheduledPickup     *time.Time      `db:"scheduled_pickup"`
	ScheduledDelivery   *time.Time      `db:"scheduled_delivery"`
	Subtotal            decimal.Decimal `db:"subtotal"`
	DeliveryFee         decimal.Decimal `db:"delivery_fee"`
	DiscountId          *int64          `db:"discount_id"`
	DiscountAmount      decimal.Decimal `db:"discount_amount"`
	LoyaltyDiscount     decimal.Decimal `db:"loyalty_discount"`
	LoyaltyPointsUsed   int64           `db:"loyalty_points_used"`
	TotalAmount         decimal.Decimal `db:"total_amount"`
	Currency            string          `db:"currency"`
	PaymentMethod       string          `db:"payment_method"`
	PaymentStatus       string          `db:"payment_status"`
	SpecialInstructions *string         `db:"special_instructions"`
	Status              string          `db:"status"`
	EstimatedCompletion time.Time       `db:"estimated_completion"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

// ToModel converts OrderDal to the service layer model.
func (o *OrderDal) ToModel() order.Order {
	cur, err := currency.ParseCurrency(o.Currency)
	if err != nil {
		cur = currency.Currency(o.Currency)
	}

	return order.Order{
		ID:                  o.Id,
		TrackingNumber:      o.TrackingNumber,
		CustomerID:          o.CustomerId,
		CustomerName:        o.CustomerName,
		CustomerPhone:       o.CustomerPhone,
		OrderType:           o.OrderType,
		PickupAddress:       postgres.StringValue(o.PickupAddress),
		DeliveryAddress:     postgres.StringValue(o.DeliveryAddress),
		PickupLatitude:      o.PickupLatitude,
		PickupLongitude:     o.PickupLongitude,
		DeliveryLatitude:    o.DeliveryLatitude,
		DeliveryLongitude:   o.DeliveryLongitude,
		ScheduledPickup:     o.ScheduledPickup,
		ScheduledDelivery:   o.ScheduledDelivery,
		Subtotal:            o.Subtotal,
		DeliveryFee:         o.DeliveryFee,
		DiscountID:          o.DiscountId,
		DiscountAmount:      o.DiscountAmount,
		LoyaltyDiscount:     o.LoyaltyDiscount,
		LoyaltyPointsUsed:   o.LoyaltyPointsUsed,
		TotalAmount:         o.TotalAmount,
		Currency:            cur,
		PaymentMethod:       o.PaymentMethod,
		PaymentStatus:       o.PaymentStatus,
		SpecialInstructions: postgres.StringValue(o.SpecialInstructions),
		Status:              order.Status(o.Status),
		EstimatedCompletion: o.EstimatedCompletion,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

// OrderDalFromModel converts the service layer model to OrderDal.
func OrderDalFromModel(o order.Order) *OrderDal {
	return &OrderDal{
		Id:                  o.ID,
		TrackingNumber:      o.TrackingNumber,
		CustomerId:          o.CustomerID,
		CustomerName:        o.CustomerName,
		CustomerPhone:       o.CustomerPhone,
		OrderType:           o.OrderType,
		PickupAddress:       postgres.NullString(o.PickupAddress),
		DeliveryAddress:     postgres.NullString(o.DeliveryAddress),
		PickupLatitude:      o.PickupLatitude,
		PickupLongitude:     o.PickupLongitude,
		DeliveryLatitude:    o.DeliveryLatitude,
		DeliveryLongitude:   o.DeliveryLongitude,
		ScheduledPickup:     o.ScheduledPickup,
		ScheduledDelivery:   o.ScheduledDelivery,
		Subtotal:            o.Subtotal,
		DeliveryFee:         o.DeliveryFee,
		DiscountId:          o.DiscountID,
		DiscountAmount:      o.DiscountAmount,
		LoyaltyDiscount:     o.LoyaltyDiscount,
		LoyaltyPointsUsed:   o.LoyaltyPointsUsed,
		TotalAmount:         o.TotalAmount,
		Currency:            o.Currency.String(),
		PaymentMethod:       o.PaymentMethod,
		PaymentStatus:       o.PaymentStatus,
		SpecialInstructions: postgres.NullString(o.SpecialInstructions),
		Status:              o.Status.String(),
		EstimatedCompletion: o.EstimatedCompletion,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.Conn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert creates the order row and returns the order with its generated id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	dal := OrderDalFromModel(o)

	query, args, err := r.sb.Insert("orders").
		Columns(
			"tracking_number",
			"customer_id",
			"order_type",
			"pickup_address",
			"delivery_address",
			"pickup_latitude",
			"pickup_longitude",
			"delivery_latitude",
			"delivery_longitude",
			"scheduled_pickup",
			"scheduled_delivery",
			"subtotal",
			"delivery_fee",
			"discount_id",
			"discount_amount",
			"loyalty_discount",
			"loyalty_points_used",
			"total_amount",
			"currency",
			"payment_method",
			"payment_status",
			"special_instructions",
			"status",
			"estimated_completion",
			"created_at",
			"updated_at",
		).
		Values(
			dal.TrackingNumber,
			dal.CustomerId,
			dal.OrderType,
			dal.PickupAddress,
			dal.DeliveryAddress,
			dal.PickupLatitude,
			dal.PickupLongitude,
			dal.DeliveryLatitude,
			dal.DeliveryLongitude,
			dal.ScheduledPickup,
			dal.ScheduledDelivery,
			dal.Subtotal,
			dal.DeliveryFee,
			dal.DiscountId,
			dal.DiscountAmount,
			dal.LoyaltyDiscount,
			dal.LoyaltyPointsUsed,
			dal.TotalAmount,
			dal.Currency,
			dal.PaymentMethod,
			dal.PaymentStatus,
			dal.SpecialInstructions,
			dal.Status,
			dal.EstimatedCompletion,
			dal.CreatedAt,
			dal.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&dal.Id); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	inserted := dal.ToModel()
	inserted.OrderItems = o.OrderItems

	return inserted, nil
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	query := r.sb.
		Select(
			"o.id",
			"o.tracking_number",
			"o.customer_id",
			"c.name",
			"c.phone",
			"o.order_type",
			"o.pickup_address",
			"o.delivery_address",
			"o.pickup_latitude",
			"o.pickup_longitude",
			"o.delivery_latitude",
			"o.delivery_longitude",
			"o.scheduled_pickup",
			"o.scheduled_delivery",
			"o.subtotal",
			"o.delivery_fee",
			"o.discount_id",
			"o.discount_amount",
			"o.loyalty_discount",
			"o.loyalty_points_used",
			"o.total_amount",
			"o.currency",
			"o.payment_method",
			"o.payment_status",
			"o.special_instructions",
			"o.status",
			"o.estimated_completion",
			"o.created_at",
			"o.updated_at",
		).
		From("orders o").
		Join("customers c ON c.id = o.customer_id").
		OrderBy("o.created_at DESC", "o.id DESC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"o.id": filter.Ids})
	}

	if len(filter.TrackingNumbers) > 0 {
		query = query.Where(sq.Eq{"o.tracking_number": filter.TrackingNumbers})
	}

	if len(filter.CustomerIds) > 0 {
		query = query.Where(sq.Eq{"o.customer_id": filter.CustomerIds})
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, s.String())
		}
		query = query.Where(sq.Eq{"o.status": statuses})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		if err := scanOrder(rows, &dal); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// TrackingNumberExists reports whether any order already uses the tracking number.
func (r *PostgresOrderRepository) TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error) {
	query, args, err := r.sb.
		Select("1").
		Prefix("SELECT EXISTS (").
		From("orders").
		Where(sq.Eq{"tracking_number": trackingNumber}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var exists bool
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check tracking number: %w", err)
	}

	return exists, nil
}

// UpdateStatus performs a conditional status change.
func (r *PostgresOrderRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	from, to order.Status,
) (bool, error) {
	query, args, err := r.sb.Update("orders").
		Set("status", to.String()).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "status": from.String()}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func scanOrder(row pgx.Row, dal *OrderDal) error {
	return row.Scan(
		&dal.Id,
		&dal.TrackingNumber,
		&dal.CustomerId,
		&dal.CustomerName,
		&dal.CustomerPhone,
		&dal.OrderType,
		&dal.PickupAddress,
		&dal.DeliveryAddress,
		&dal.PickupLatitude,
		&dal.PickupLongitude,
		&dal.DeliveryLatitude,
		&dal.DeliveryLongitude,
		&dal.ScheduledPickup,
		&dal.ScheduledDelivery,
		&dal.Subtotal,
		&dal.DeliveryFee,
		&dal.DiscountId,
		&dal.DiscountAmount,
		&dal.LoyaltyDiscount,
		&dal.LoyaltyPointsUsed,
		&dal.TotalAmount,
		&dal.Currency,
		&dal.PaymentMethod,
		&dal.PaymentStatus,
		&dal.SpecialInstructions,
		&dal.Status,
		&dal.EstimatedCompletion,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
}
