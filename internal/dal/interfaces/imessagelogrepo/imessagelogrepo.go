package imessagelogrepo

import (
	"context"

	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
)

// IMessageLogRepository records WhatsApp delivery attempts.
type IMessageLogRepository interface {
	Insert(ctx context.Context, entry notification.LogEntry) error
	// WasSent reports whether a message id already has a sent entry
	WasSent(ctx context.Context, messageID string) (bool, error)
}
