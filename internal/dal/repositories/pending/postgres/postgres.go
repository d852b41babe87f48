package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/biggslaundromat/laundromat/internal/dal/postgres"
	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
	"github.com/jackc/pgx/v5"
)

const (
	OutboxTable = "notification_outbox"
	InboxTable  = "notification_inbox"
)

// PendingDal is a row of a notification retry table.
type PendingDal struct {
	ID            int64     `db:"id"`
	MessageID     string    `db:"message_id"`
	OrderID       int64     `db:"order_id"`
	Kind          string    `db:"kind"`
	Payload       []byte    `db:"payload"`
	Attempts      int       `db:"attempts"`
	MaxAttempts   int       `db:"max_attempts"`
	LastError     string    `db:"last_error"`
	NextAttemptAt time.Time `db:"next_attempt_at"`
	CreatedAt     time.Time `db:"created_at"`
}

func (d PendingDal) ToModel() notification.Pending {
	return notification.Pending{
		ID:            d.ID,
		MessageID:     d.MessageID,
		OrderID:       d.OrderID,
		Kind:          notification.Kind(d.Kind),
		Payload:       d.Payload,
		Attempts:      d.Attempts,
		MaxAttempts:   d.MaxAttempts,
		LastError:     d.LastError,
		NextAttemptAt: d.NextAttemptAt,
		CreatedAt:     d.CreatedAt,
	}
}

var pendingColumns = []string{
	"id",
	"message_id",
	"order_id",
	"kind",
	"payload",
	"attempts",
	"max_attempts",
	"last_error",
	"next_attempt_at",
	"created_at",
}

// PendingRepository keeps notifications awaiting another attempt in one table.
type PendingRepository struct {
	conn  postgres.Conn
	sb    sq.StatementBuilderType
	table string
	now   func() time.Time
}

// NewOutboxRepository stores notifications the broker did not accept.
func NewOutboxRepository(conn postgres.Conn) *PendingRepository {
	return newPendingRepository(conn, OutboxTable)
}

// NewInboxRepository stores notifications that could not be delivered.
func NewInboxRepository(conn postgres.Conn) *PendingRepository {
	return newPendingRepository(conn, InboxTable)
}

func newPendingRepository(conn postgres.Conn, table string) *PendingRepository {
	return &PendingRepository{
		conn:  conn,
		sb:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		table: table,
		now:   time.Now,
	}
}

func (r *PendingRepository) Park(ctx context.Context, p notification.Pending) error {
	query, args, err := r.sb.Insert(r.table).
		Columns(pendingColumns[1:]...).
		Values(
			p.MessageID,
			p.OrderID,
			string(p.Kind),
			p.Payload,
			p.Attempts,
			p.MaxAttempts,
			p.LastError,
			p.NextAttemptAt,
			p.CreatedAt,
		).
		Suffix("ON CONFLICT (message_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to park notification in %s: %w", r.table, err)
	}

	return nil
}

func (r *PendingRepository) Due(ctx context.Context, limit int) ([]notification.Pending, error) {
	query, args, err := r.sb.Select(pendingColumns...).
		From(r.table).
		Where(sq.LtOrEq{"next_attempt_at": r.now()}).
		Where("attempts < max_attempts").
		OrderBy("next_attempt_at", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.table, err)
	}

	dals, err := pgx.CollectRows(rows, pgx.RowToStructByName[PendingDal])
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", r.table, err)
	}

	pending := make([]notification.Pending, len(dals))
	for i, d := range dals {
		pending[i] = d.ToModel()
	}

	return pending, nil
}

// Resolve removes an entry once its notification went through.
func (r *PendingRepository) Resolve(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete(r.table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", r.table, err)
	}

	return nil
}

func (r *PendingRepository) Reschedule(ctx context.Context, p notification.Pending) error {
	query, args, err := r.sb.Update(r.table).
		SetMap(map[string]any{
			"attempts":        p.Attempts,
			"last_error":      p.LastError,
			"next_attempt_at": p.NextAttemptAt,
			"updated_at":      sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to reschedule %s entry %d: %w", r.table, p.ID, err)
	}

	return nil
}
