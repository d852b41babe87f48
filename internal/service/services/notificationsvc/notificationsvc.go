package notificationsvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/imessagelogrepo"
	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const defaultSendTimeout = 10 * time.Second

type sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// NotificationService delivers customer messages and records every attempt.
type NotificationService struct {
	messageLog imessagelogrepo.IMessageLogRepository
	sender     sender
	timeout    time.Duration
	now        func() time.Time
}

// option is a function that configures the NotificationService.
type option func(*NotificationService)

// MustNewNotificationService creates a new NotificationService.
func MustNewNotificationService(opts ...option) *NotificationService {
	s := &NotificationService{
		timeout: defaultSendTimeout,
		now:     time.Now,
	}
	if sec := viper.GetInt("notifier.send_timeout_seconds"); sec > 0 {
		s.timeout = time.Duration(sec) * time.Second
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.messageLog == nil || s.sender == nil {
		panic("notificationsvc: message log and sender are required")
	}

	return s
}

// WithMessageLogRepository sets where delivery attempts are recorded.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMessageLogRepository(repo imessagelogrepo.IMessageLogRepository) option {
	return func(s *NotificationService) {
		s.messageLog = repo
	}
}

// WithSender sets the message transport.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSender(snd sender) option {
	return func(s *NotificationService) {
		s.sender = snd
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithSendTimeout(d time.Duration) option {
	return func(s *NotificationService) {
		s.timeout = d
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *NotificationService) {
		s.now = now
	}
}

// ProcessNotification sends msg unless it was already delivered. A failed
// send is recorded and returned so the caller can retry it.
func (s *NotificationService) ProcessNotification(
	ctx context.Context,
	msg notification.Message,
) error {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.ProcessNotification")
	defer span.End()

	span.SetAttributes(
		attribute.String("message.id", msg.ID),
		attribute.Int64("order.id", msg.OrderID),
	)

	sent, err := s.messageLog.WasSent(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("failed to check message log: %w", err)
	}
	if sent {
		slog.Info("Skipping already delivered notification", "message_id", msg.ID)

		return nil
	}

	slog.Info("Sending notification",
		"message_id", msg.ID,
		"order_id", msg.OrderID,
		"kind", msg.Kind)

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	providerID, sendErr := s.sender.Send(sendCtx, msg.Phone, msg.Body)
	cancel()

	now := s.now()
	entry := notification.LogEntry{
		MessageID:   msg.ID,
		OrderID:     msg.OrderID,
		Phone:       msg.Phone,
		MessageType: msg.Kind,
		Content:     msg.Body,
		CreatedAt:   now,
	}

	if sendErr != nil {
		entry.Status = notification.DeliveryStatusFailed
		entry.Error = sendErr.Error()
		if err := s.messageLog.Insert(ctx, entry); err != nil {
			slog.Error("Failed to record failed delivery", "message_id", msg.ID, "error", err)
		}

		slog.Error("Failed to send notification", "message_id", msg.ID, "error", sendErr)

		return fmt.Errorf("failed to send notification %s: %w", msg.ID, sendErr)
	}

	entry.Status = notification.DeliveryStatusSent
	entry.SentAt = &now
	if err := s.messageLog.Insert(ctx, entry); err != nil {
		// The message is out; retrying would send it twice.
		slog.Error("Failed to record delivery", "message_id", msg.ID, "error", err)
	}

	slog.Info("Notification sent", "message_id", msg.ID, "provider_id", providerID)

	return nil
}
