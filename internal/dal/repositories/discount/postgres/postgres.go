package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/biggslaundromat/laundromat/internal/dal/postgres"
	"github.com/biggslaundromat/laundromat/internal/service/models/discount"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DiscountDal represents the discounts row.
type DiscountDal struct {
	Id             int64           `db:"id"`
	Code           string          `db:"code"`
	Name           string          `db:"name"`
	DiscountType   string          `db:"discount_type"`
	DiscountValue  decimal.Decimal `db:"discount_value"`
	MinOrderAmount decimal.Decimal `db:"min_order_amount"`
	UsageLimit     *int            `db:"usage_limit"`
	UsedCount      int             `db:"used_count"`
	ValidFrom      *time.Time      `db:"valid_from"`
	ValidUntil     *time.Time      `db:"valid_until"`
	IsActive       bool            `db:"is_active"`
}

// ToModel converts DiscountDal to the service layer model.
func (d *DiscountDal) ToModel() (discount.Discount, error) {
	typ, err := discount.ParseType(d.DiscountType)
	if err != nil {
		return discount.Discount{}, fmt.Errorf("discount %d: %w", d.Id, err)
	}

	return discount.Discount{
		ID:             d.Id,
		Code:           d.Code,
		Name:           d.Name,
		Type:           typ,
		Value:          d.DiscountValue,
		MinOrderAmount: d.MinOrderAmount,
		UsageLimit:     d.UsageLimit,
		UsedCount:      d.UsedCount,
		ValidFrom:      d.ValidFrom,
		ValidUntil:     d.ValidUntil,
		IsActive:       d.IsActive,
	}, nil
}

// DiscountRepository implements the discount repository for PostgreSQL.
type DiscountRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewDiscountRepository creates a new discount repository.
func NewDiscountRepository(conn postgres.Conn) *DiscountRepository {
	return &DiscountRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// FindActiveByCode looks the code up case-insensitively among active discounts.
func (r *DiscountRepository) FindActiveByCode(ctx context.Context, code string) (*discount.Discount, error) {
	query, args, err := r.sb.Select(
		"id",
		"code",
		"name",
		"discount_type",
		"discount_value",
		"min_order_amount",
		"usage_limit",
		"used_count",
		"valid_from",
		"valid_until",
		"is_active",
	).
		From("discounts").
		Where(sq.Expr("UPPER(code) = UPPER(?)", code)).
		Where(sq.Eq{"is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal DiscountDal
	err = r.conn.QueryRow(ctx, query, args...).Scan(
		&dal.Id,
		&dal.Code,
		&dal.Name,
		&dal.DiscountType,
		&dal.DiscountValue,
		&dal.MinOrderAmount,
		&dal.UsageLimit,
		&dal.UsedCount,
		&dal.ValidFrom,
		&dal.ValidUntil,
		&dal.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select discount: %w", err)
	}

	d, err := dal.ToModel()
	if err != nil {
		return nil, err
	}

	return &d, nil
}

// ClaimUsage atomically increments used_count while it is below usage_limit.
func (r *DiscountRepository) ClaimUsage(ctx context.Context, id int64) (bool, error) {
	query, args, err := r.sb.Update("discounts").
		Set("used_count", sq.Expr("used_count + 1")).
		Where(sq.Eq{"id": id}).
		Where("(usage_limit IS NULL OR used_count < usage_limit)").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to claim discount usage: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
