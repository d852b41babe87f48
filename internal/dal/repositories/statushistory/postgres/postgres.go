package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/biggslaundromat/laundromat/internal/dal/postgres"
	"github.com/biggslaundromat/laundromat/internal/service/models/statushistory"
)

// StatusHistoryRepository implements the order status log for PostgreSQL.
type StatusHistoryRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewStatusHistoryRepository creates a new status history repository.
func NewStatusHistoryRepository(conn postgres.Conn) *StatusHistoryRepository {
	return &StatusHistoryRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert appends an entry.
func (r *StatusHistoryRepository) Insert(ctx context.Context, entry statushistory.Entry) error {
	query, args, err := r.sb.Insert("order_status_history").
		Columns("order_id", "status", "notes", "created_at").
		Values(entry.OrderID, entry.Status, postgres.NullString(entry.Notes), entry.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert status history: %w", err)
	}

	return nil
}

// ListByOrderID returns the order's history, newest first.
func (r *StatusHistoryRepository) ListByOrderID(ctx context.Context, orderID int64) ([]statushistory.Entry, error) {
	query, args, err := r.sb.Select("id", "order_id", "status", "notes", "created_at").
		From("order_status_history").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var result []statushistory.Entry
	for rows.Next() {
		var (
			entry statushistory.Entry
			notes *string
		)
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.Status, &notes, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		entry.Notes = postgres.StringValue(notes)
		result = append(result, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
