package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/biggslaundromat/laundromat/internal/dal/postgres"
	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
)

// MessageLogRepository stores WhatsApp delivery attempts in whatsapp_messages.
type MessageLogRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewMessageLogRepository creates a new message log repository.
func NewMessageLogRepository(conn postgres.Conn) *MessageLogRepository {
	return &MessageLogRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert records one attempt.
func (r *MessageLogRepository) Insert(ctx context.Context, entry notification.LogEntry) error {
	var orderID *int64
	if entry.OrderID != 0 {
		orderID = &entry.OrderID
	}

	query, args, err := r.sb.Insert("whatsapp_messages").
		Columns(
			"message_id",
			"order_id",
			"customer_phone",
			"message_type",
			"message_content",
			"status",
			"error",
			"sent_at",
			"created_at",
		).
		Values(
			entry.MessageID,
			orderID,
			entry.Phone,
			string(entry.MessageType),
			entry.Content,
			string(entry.Status),
			entry.Error,
			entry.SentAt,
			entry.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert message log: %w", err)
	}

	return nil
}

// WasSent reports whether the message id was already delivered.
func (r *MessageLogRepository) WasSent(ctx context.Context, messageID string) (bool, error) {
	query, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("whatsapp_messages").
		Where(sq.Eq{
			"message_id": messageID,
			"status":     string(notification.DeliveryStatusSent),
		}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var sent bool
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&sent); err != nil {
		return false, fmt.Errorf("failed to check message log: %w", err)
	}

	return sent, nil
}
