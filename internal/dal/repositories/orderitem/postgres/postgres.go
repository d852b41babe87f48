package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/biggslaundromat/laundromat/internal/dal/postgres"
	"github.com/biggslaundromat/laundromat/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// OrderItemDal represents the order_items row joined with its service.
type OrderItemDal struct {
	Id                  int64           `db:"id"`
	OrderId             int64           `db:"order_id"`
	ServiceId           int64           `db:"service_id"`
	ServiceName         string          `db:"service_name"`
	ServiceCategory     string          `db:"service_category"`
	Quantity            int             `db:"quantity"`
	UnitPrice           decimal.Decimal `db:"unit_price"`
	TotalPrice          decimal.Decimal `db:"total_price"`
	SpecialInstructions *string         `db:"special_instructions"`
	CreatedAt           time.Time       `db:"created_at"`
}

// ToModel converts OrderItemDal to service layer OrderItem model.
func (oi *OrderItemDal) ToModel() orderitem.OrderItem {
	return orderitem.OrderItem{
		ID:                  oi.Id,
		OrderID:             oi.OrderId,
		ServiceID:           oi.ServiceId,
		ServiceName:         oi.ServiceName,
		ServiceCategory:     oi.ServiceCategory,
		Quantity:            oi.Quantity,
		UnitPrice:           oi.UnitPrice,
		TotalPrice:          oi.TotalPrice,
		SpecialInstructions: postgres.StringValue(oi.SpecialInstructions),
		CreatedAt:           oi.CreatedAt,
	}
}

// OrderItemDalFromModel converts service layer OrderItem model to OrderItemDal.
func OrderItemDalFromModel(oi orderitem.OrderItem) *OrderItemDal {
	return &OrderItemDal{
		Id:                  oi.ID,
		OrderId:             oi.OrderID,
		ServiceId:           oi.ServiceID,
		ServiceName:         oi.ServiceName,
		ServiceCategory:     oi.ServiceCategory,
		Quantity:            oi.Quantity,
		UnitPrice:           oi.UnitPrice,
		TotalPrice:          oi.TotalPrice,
		SpecialInstructions: postgres.NullString(oi.SpecialInstructions),
		CreatedAt:           oi.CreatedAt,
	}
}

// PostgresOrderItemRepository represents a Postgres order item repository.
type PostgresOrderItemRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderItemRepository creates a new Postgres order item repository.
func NewPostgresOrderItemRepository(conn postgres.Conn) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// BulkInsert inserts all items in one statement and returns them with their ids,
// in the order they were given.
func (r *PostgresOrderItemRepository) BulkInsert(
	ctx context.Context,
	orderItems []orderitem.OrderItem,
) ([]orderitem.OrderItem, error) {
	if len(orderItems) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	builder := r.sb.Insert("order_items").
		Columns(
			"order_id",
			"service_id",
			"quantity",
			"unit_price",
			"total_price",
			"special_instructions",
			"created_at",
		).
		Suffix("RETURNING id")

	for _, oi := range orderItems {
		dal := OrderItemDalFromModel(oi)
		builder = builder.Values(
			dal.OrderId,
			dal.ServiceId,
			dal.Quantity,
			dal.UnitPrice,
			dal.TotalPrice,
			dal.SpecialInstructions,
			dal.CreatedAt,
		)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert order items: %w", err)
	}
	defer rows.Close()

	result := make([]orderitem.OrderItem, 0, len(orderItems))
	for i := 0; rows.Next(); i++ {
		if i >= len(orderItems) {
			return nil, fmt.Errorf("bulk insert returned more rows than items")
		}

		item := orderItems[i]
		if err := rows.Scan(&item.ID); err != nil {
			return nil, fmt.Errorf("failed to scan order item id: %w", err)
		}
		result = append(result, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Query retrieves order items based on filter criteria.
func (r *PostgresOrderItemRepository) Query(
	ctx context.Context,
	filter *orderitem.QueryOrderItemsModel,
) ([]orderitem.OrderItem, error) {
	query := r.sb.
		Select(
			"oi.id",
			"oi.order_id",
			"oi.service_id",
			"s.name",
			"s.category",
			"oi.quantity",
			"oi.unit_price",
			"oi.total_price",
			"oi.special_instructions",
			"oi.created_at",
		).
		From("order_items oi").
		Join("services s ON s.id = oi.service_id").
		OrderBy("oi.id ASC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"oi.id": filter.Ids})
	}

	if len(filter.OrderIds) > 0 {
		query = query.Where(sq.Eq{"oi.order_id": filter.OrderIds})
	}

	if len(filter.ServiceIds) > 0 {
		query = query.Where(sq.Eq{"oi.service_id": filter.ServiceIds})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		var dal OrderItemDal

		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ServiceId,
			&dal.ServiceName,
			&dal.ServiceCategory,
			&dal.Quantity,
			&dal.UnitPrice,
			&dal.TotalPrice,
			&dal.SpecialInstructions,
			&dal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		result = append(result, dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
