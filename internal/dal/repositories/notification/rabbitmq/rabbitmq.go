package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/ipendingrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/rabbitmq"
	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

const contentTypeJSON = "application/json"

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// NotificationPublisher puts customer notifications on the broker and falls
// back to the outbox when the broker cannot be reached.
type NotificationPublisher struct {
	channel     channel
	queueName   string
	outbox      ipendingrepo.IPendingRepository
	timeout     time.Duration
	maxAttempts int
	now         func() time.Time
}

// NewNotificationPublisher declares the notification queue and returns a publisher for it.
func NewNotificationPublisher(
	client *rabbitmq.Client,
	outbox ipendingrepo.IPendingRepository,
) *NotificationPublisher {
	queue, err := client.NotificationQueue()
	if err != nil {
		panic(err)
	}

	timeoutSeconds := viper.GetInt("rabbitmq.publish_timeout_seconds")
	if timeoutSeconds == 0 {
		timeoutSeconds = 5
	}

	maxAttempts := viper.GetInt("rabbitmq.outbox.max_attempts")
	if maxAttempts == 0 {
		maxAttempts = 5
	}

	return &NotificationPublisher{
		channel:     client.Channel(),
		queueName:   queue.Name,
		outbox:      outbox,
		timeout:     time.Duration(timeoutSeconds) * time.Second,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Notify publishes msg. A failed publish is stored in the outbox and only an
// outbox failure is returned.
func (p *NotificationPublisher) Notify(ctx context.Context, msg notification.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	publishErr := p.publish(ctx, msg, payload)
	if publishErr == nil {
		slog.Info("Notification published", "message_id", msg.ID, "order_id", msg.OrderID, "kind", msg.Kind)

		return nil
	}

	slog.Warn("Failed to publish notification, storing in outbox",
		"message_id", msg.ID,
		"order_id", msg.OrderID,
		"error", publishErr,
	)

	err = p.outbox.Park(ctx, notification.Park(msg, payload, p.maxAttempts, publishErr, p.now()))
	if err != nil {
		return fmt.Errorf("failed to store notification in outbox: %w", err)
	}

	return nil
}

func (p *NotificationPublisher) publish(ctx context.Context, msg notification.Message, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- p.channel.Publish(
			"",
			p.queueName,
			false,
			false,
			amqp.Publishing{
				ContentType:  contentTypeJSON,
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Type:         string(msg.Kind),
				Timestamp:    msg.CreatedAt,
				Body:         payload,
			},
		)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
