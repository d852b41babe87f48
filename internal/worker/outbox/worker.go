package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/ipendingrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/rabbitmq"
	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Worker republishes notifications the broker did not accept when the order changed.
type Worker struct {
	outbox        ipendingrepo.IPendingRepository
	channel       channel
	queueName     string
	pollInterval  time.Duration
	batchSize     int
	retryInterval time.Duration
	now           func() time.Time
	stopCh        chan struct{}
}

// NewWorker creates a new outbox worker configured from rabbitmq.outbox.*.
func NewWorker(
	outbox ipendingrepo.IPendingRepository,
	rabbitClient *rabbitmq.Client,
) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	retryIntervalSeconds := viper.GetInt("rabbitmq.outbox.retry_interval_seconds")
	if retryIntervalSeconds == 0 {
		retryIntervalSeconds = 30
	}

	return &Worker{
		outbox:        outbox,
		channel:       rabbitClient.Channel(),
		queueName:     viper.GetString("rabbitmq.queue"),
		pollInterval:  time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:     batchSize,
		retryInterval: time.Duration(retryIntervalSeconds) * time.Second,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
}

// Start polls the outbox until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) flush(ctx context.Context) {
	ctx, span := otel.Tracer("worker").Start(ctx, "OutboxWorker.flush")
	defer span.End()

	due, err := w.outbox.Due(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to load due outbox entries", "error", err)

		return
	}
	if len(due) == 0 {
		return
	}

	span.SetAttributes(attribute.Int("outbox.due", len(due)))
	slog.Info("Republishing outbox entries", "count", len(due))

	for _, p := range due {
		w.republish(ctx, p)
	}
}

func (w *Worker) republish(ctx context.Context, p notification.Pending) {
	err := w.channel.Publish("", w.queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    p.MessageID,
		Type:         string(p.Kind),
		Timestamp:    p.CreatedAt,
		Body:         p.Payload,
	})
	if err != nil {
		p = p.Failed(err, w.retryInterval, w.now())

		slog.Warn("Outbox republish failed",
			"outbox_id", p.ID,
			"message_id", p.MessageID,
			"attempts", p.Attempts,
			"max_attempts", p.MaxAttempts,
			"next_attempt", p.NextAttemptAt,
			"error", err,
		)

		if err := w.outbox.Reschedule(ctx, p); err != nil {
			slog.Error("Failed to reschedule outbox entry", "outbox_id", p.ID, "error", err)
		}

		return
	}

	if err := w.outbox.Resolve(ctx, p.ID); err != nil {
		slog.Error("Published outbox entry could not be removed", "outbox_id", p.ID, "error", err)

		return
	}

	slog.Info("Outbox entry published", "outbox_id", p.ID, "message_id", p.MessageID, "order_id", p.OrderID)
}
