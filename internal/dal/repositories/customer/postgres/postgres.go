package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/biggslaundromat/laundromat/internal/dal/postgres"
	"github.com/biggslaundromat/laundromat/internal/service/models/customer"
	"github.com/jackc/pgx/v5"
)

// CustomerDal represents the customers row.
type CustomerDal struct {
	Id        int64     `db:"id"`
	Name      string    `db:"name"`
	Phone     string    `db:"phone"`
	Email     *string   `db:"email"`
	Address   *string   `db:"address"`
	Latitude  *float64  `db:"latitude"`
	Longitude *float64  `db:"longitude"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ToModel converts CustomerDal to the service layer model.
func (c *CustomerDal) ToModel() customer.Customer {
	return customer.Customer{
		ID:        c.Id,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     postgres.StringValue(c.Email),
		Address:   postgres.StringValue(c.Address),
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CustomerDalFromModel converts the service layer model to CustomerDal.
func CustomerDalFromModel(c customer.Customer) *CustomerDal {
	return &CustomerDal{
		Id:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     postgres.NullString(c.Email),
		Address:   postgres.NullString(c.Address),
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

var columns = []string{
	"id",
	"name",
	"phone",
	"email",
	"address",
	"latitude",
	"longitude",
	"created_at",
	"updated_at",
}

// CustomerRepository implements the customer repository for PostgreSQL.
type CustomerRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewCustomerRepository creates a new customer repository.
func NewCustomerRepository(conn postgres.Conn) *CustomerRepository {
	return &CustomerRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// FindByPhone returns the customer with the canonical phone or nil.
func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	return r.findOne(ctx, sq.Eq{"phone": phone})
}

// GetByID returns the customer with the id or nil.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *CustomerRepository) findOne(ctx context.Context, pred sq.Eq) (*customer.Customer, error) {
	query, args, err := r.sb.Select(columns...).
		From("customers").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal CustomerDal
	err = r.conn.QueryRow(ctx, query, args...).Scan(
		&dal.Id,
		&dal.Name,
		&dal.Phone,
		&dal.Email,
		&dal.Address,
		&dal.Latitude,
		&dal.Longitude,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select customer: %w", err)
	}

	c := dal.ToModel()

	return &c, nil
}

// Insert creates a customer and returns it with its generated id.
func (r *CustomerRepository) Insert(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	dal := CustomerDalFromModel(c)

	query, args, err := r.sb.Insert("customers").
		Columns(
			"name",
			"phone",
			"email",
			"address",
			"latitude",
			"longitude",
			"created_at",
			"updated_at",
		).
		Values(
			dal.Name,
			dal.Phone,
			dal.Email,
			dal.Address,
			dal.Latitude,
			dal.Longitude,
			dal.CreatedAt,
			dal.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return customer.Customer{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&dal.Id); err != nil {
		return customer.Customer{}, fmt.Errorf("failed to insert customer: %w", err)
	}

	return dal.ToModel(), nil
}

// Update writes the non-nil fields of upd.
func (r *CustomerRepository) Update(ctx context.Context, id int64, upd customer.Update) error {
	if upd.IsEmpty() {
		return nil
	}

	builder := r.sb.Update("customers").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})

	if upd.Name != nil {
		builder = builder.Set("name", *upd.Name)
	}
	if upd.Email != nil {
		builder = builder.Set("email", postgres.NullString(*upd.Email))
	}
	if upd.Address != nil {
		builder = builder.Set("address", postgres.NullString(*upd.Address))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	return nil
}
