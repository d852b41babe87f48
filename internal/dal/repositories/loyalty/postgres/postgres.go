package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/biggslaundromat/laundromat/internal/dal/postgres"
	"github.com/biggslaundromat/laundromat/internal/service/models/loyalty"
	"github.com/jackc/pgx/v5"
)

// AccountDal represents the loyalty_program row.
type AccountDal struct {
	Id                int64     `db:"id"`
	CustomerId        int64     `db:"customer_id"`
	TotalPointsEarned int64     `db:"total_points_earned"`
	PointsRedeemed    int64     `db:"points_redeemed"`
	CurrentBalance    int64     `db:"current_balance"`
	Tier              string    `db:"tier"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// ToModel converts AccountDal to the service layer model.
func (a *AccountDal) ToModel() loyalty.Account {
	return loyalty.Account{
		ID:                a.Id,
		CustomerID:        a.CustomerId,
		TotalPointsEarned: a.TotalPointsEarned,
		PointsRedeemed:    a.PointsRedeemed,
		CurrentBalance:    a.CurrentBalance,
		Tier:              loyalty.Tier(a.Tier),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

const returning = "RETURNING id, customer_id, total_points_earned, points_redeemed, current_balance, tier, created_at, updated_at"

// LoyaltyRepository implements the loyalty repository for PostgreSQL.
type LoyaltyRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewLoyaltyRepository creates a new loyalty repository.
func NewLoyaltyRepository(conn postgres.Conn) *LoyaltyRepository {
	return &LoyaltyRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// GetByCustomerID returns the customer's account or nil.
func (r *LoyaltyRepository) GetByCustomerID(ctx context.Context, customerID int64) (*loyalty.Account, error) {
	query, args, err := r.sb.Select(
		"id",
		"customer_id",
		"total_points_earned",
		"points_redeemed",
		"current_balance",
		"tier",
		"created_at",
		"updated_at",
	).
		From("loyalty_program").
		Where(sq.Eq{"customer_id": customerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	dal, err := scanAccount(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select loyalty account: %w", err)
	}

	account := dal.ToModel()

	return &account, nil
}

// Redeem deducts points only while the balance covers them.
func (r *LoyaltyRepository) Redeem(ctx context.Context, customerID int64, points int64) (bool, error) {
	query, args, err := r.sb.Update("loyalty_program").
		Set("current_balance", sq.Expr("current_balance - ?", points)).
		Set("points_redeemed", sq.Expr("points_redeemed + ?", points)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"customer_id": customerID}).
		Where(sq.GtOrEq{"current_balance": points}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to redeem loyalty points: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// Accrue upserts the account, adding points to the lifetime and current balances.
func (r *LoyaltyRepository) Accrue(ctx context.Context, customerID int64, points int64) (loyalty.Account, error) {
	query, args, err := r.sb.Insert("loyalty_program").
		Columns("customer_id", "total_points_earned", "current_balance").
		Values(customerID, points, points).
		Suffix(`ON CONFLICT (customer_id) DO UPDATE SET
			total_points_earned = loyalty_program.total_points_earned + EXCLUDED.total_points_earned,
			current_balance = loyalty_program.current_balance + EXCLUDED.current_balance,
			updated_at = NOW()
		` + returning).
		ToSql()
	if err != nil {
		return loyalty.Account{}, fmt.Errorf("failed to build upsert query: %w", err)
	}

	dal, err := scanAccount(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return loyalty.Account{}, fmt.Errorf("failed to accrue loyalty points: %w", err)
	}

	return dal.ToModel(), nil
}

// SetTier stores the customer's tier.
func (r *LoyaltyRepository) SetTier(ctx context.Context, customerID int64, tier loyalty.Tier) error {
	query, args, err := r.sb.Update("loyalty_program").
		Set("tier", tier.String()).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"customer_id": customerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to set loyalty tier: %w", err)
	}

	return nil
}

func scanAccount(row pgx.Row) (AccountDal, error) {
	var dal AccountDal
	err := row.Scan(
		&dal.Id,
		&dal.CustomerId,
		&dal.TotalPointsEarned,
		&dal.PointsRedeemed,
		&dal.CurrentBalance,
		&dal.Tier,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)

	return dal, err
}
