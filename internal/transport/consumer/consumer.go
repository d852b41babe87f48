package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/ipendingrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/rabbitmq"
	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConsumerTag = "laundromat-notifier"
	defaultConcurrency = 50
	shutdownTimeout    = 10 * time.Second
)

// service represents the service layer interface.
type service interface {
	ProcessNotification(ctx context.Context, msg notification.Message) error
}

// Consumer delivers notifications taken from the broker. Deliveries that fail
// are parked in the inbox for the inbox worker and acknowledged.
type Consumer struct {
	client      *rabbitmq.Client
	service     service
	inbox       ipendingrepo.IPendingRepository
	queue       amqp.Queue
	tag         string
	maxAttempts int
	now         func() time.Time
	stop        chan struct{}
	done        chan struct{}
}

// NewConsumer declares the notification queue and creates a Consumer for it.
func NewConsumer(
	client *rabbitmq.Client,
	service service,
	inbox ipendingrepo.IPendingRepository,
) *Consumer {
	if viper.GetString("rabbitmq.queue") == "" {
		panic("rabbitmq.queue is not set in config")
	}

	queue, err := client.NotificationQueue()
	if err != nil {
		panic(err)
	}

	consumerTag := viper.GetString("rabbitmq.consumer_tag")
	if consumerTag == "" {
		consumerTag = defaultConsumerTag
	}

	maxAttempts := viper.GetInt("rabbitmq.inbox.max_attempts")
	if maxAttempts == 0 {
		maxAttempts = 5
	}

	return &Consumer{
		client:      client,
		service:     service,
		inbox:       inbox,
		queue:       queue,
		tag:         consumerTag,
		maxAttempts: maxAttempts,
		now:         time.Now,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Run consumes messages until Shutdown is called or the delivery channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.client.Consume(c.queue.Name, c.tag)
	if err != nil {
		close(c.done)
		return err
	}

	slog.Info("Consumer started", "queue", c.queue.Name, "consumer_tag", c.tag)

	concurrency := viper.GetInt("rabbitmq.concurrency")
	if concurrency == 0 {
		concurrency = defaultConcurrency
	}

	c.consume(ctx, msgs, concurrency)

	return nil
}

func (c *Consumer) consume(ctx context.Context, msgs <-chan amqp.Delivery, concurrency int) {
	var g errgroup.Group
	g.SetLimit(concurrency)

	defer func() {
		_ = g.Wait()
		close(c.done)
	}()

	for {
		select {
		case <-c.stop:
			slog.Info("Stopping consumer")

			return
		case msg, ok := <-msgs:
			if !ok {
				slog.Info("Message channel closed")

				return
			}

			g.Go(func() error {
				c.processMessage(ctx, msg)

				return nil
			})
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg amqp.Delivery) {
	ctx, span := otel.Tracer("consumer").Start(ctx, "Consumer.processMessage")
	defer span.End()

	var n notification.Message
	if err := json.Unmarshal(msg.Body, &n); err != nil {
		slog.Error("Failed to unmarshal notification", "error", err, "delivery_tag", msg.DeliveryTag)
		span.SetStatus(codes.Error, "malformed message")
		if err := msg.Nack(false, false); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return
	}

	span.SetAttributes(
		attribute.String("message.id", n.ID),
		attribute.Int64("order.id", n.OrderID),
	)

	if err := c.service.ProcessNotification(ctx, n); err != nil {
		span.RecordError(err)

		if err := c.inbox.Park(ctx, notification.Park(n, msg.Body, c.maxAttempts, err, c.now())); err != nil {
			slog.Error("Failed to park message in inbox, requeueing", "message_id", n.ID, "error", err)
			if err := msg.Nack(false, true); err != nil {
				slog.Error("Failed to nack message", "error", err)
			}

			return
		}

		slog.Warn("Notification delivery failed, parked in inbox", "message_id", n.ID, "order_id", n.OrderID)
	}

	if err := msg.Ack(false); err != nil {
		slog.Error("Failed to ack message", "error", err)
	}
}

// Shutdown stops taking new deliveries and waits for in-flight ones.
func (c *Consumer) Shutdown() error {
	slog.Info("Shutting down consumer")
	if c.client != nil {
		if err := c.client.Cancel(c.tag); err != nil {
			slog.Warn("Failed to cancel consumer", "consumer_tag", c.tag, "error", err)
		}
	}
	close(c.stop)

	select {
	case <-c.done:
		slog.Info("Consumer stopped successfully")
	case <-time.After(shutdownTimeout):
		slog.Warn("Consumer shutdown timeout")
	}

	return nil
}
