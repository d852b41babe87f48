package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/biggslaundromat/laundromat/internal/dal/postgres"
	"github.com/biggslaundromat/laundromat/internal/service/models/catalog"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ServiceDal represents the services row.
type ServiceDal struct {
	Id          int64           `db:"id"`
	Name        string          `db:"name"`
	Description *string         `db:"description"`
	Category    string          `db:"category"`
	BasePrice   decimal.Decimal `db:"base_price"`
	Unit        string          `db:"unit"`
	IsActive    bool            `db:"is_active"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// ToModel converts ServiceDal to the service layer model.
func (s *ServiceDal) ToModel() catalog.Service {
	return catalog.Service{
		ID:          s.Id,
		Name:        s.Name,
		Description: postgres.StringValue(s.Description),
		Category:    catalog.Category(s.Category),
		BasePrice:   s.BasePrice,
		Unit:        s.Unit,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

var columns = []string{
	"id",
	"name",
	"description",
	"category",
	"base_price",
	"unit",
	"is_active",
	"created_at",
	"updated_at",
}

// CatalogRepository reads services from PostgreSQL.
type CatalogRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(conn postgres.Conn) *CatalogRepository {
	return &CatalogRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// GetByID returns the service regardless of its active flag, or nil.
func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (*catalog.Service, error) {
	query, args, err := r.sb.Select(columns...).
		From("services").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal ServiceDal
	err = scanService(r.conn.QueryRow(ctx, query, args...), &dal)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select service: %w", err)
	}

	s := dal.ToModel()

	return &s, nil
}

// List returns services ordered by category then name.
func (r *CatalogRepository) List(ctx context.Context, filter catalog.Query) ([]catalog.Service, error) {
	builder := r.sb.Select(columns...).
		From("services").
		OrderBy("category ASC", "name ASC")

	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category.String()})
	}
	if filter.ActiveOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	var result []catalog.Service
	for rows.Next() {
		var dal ServiceDal
		if err := scanService(rows, &dal); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func scanService(row pgx.Row, dal *ServiceDal) error {
	return row.Scan(
		&dal.Id,
		&dal.Name,
		&dal.Description,
		&dal.Category,
		&dal.BasePrice,
		&dal.Unit,
		&dal.IsActive,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
}
