package inbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/ipendingrepo"
	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

// service represents the service layer interface.
type service interface {
	ProcessNotification(ctx context.Context, msg notification.Message) error
}

// Worker retries deliveries the consumer parked in the inbox.
type Worker struct {
	inbox         ipendingrepo.IPendingRepository
	service       service
	pollInterval  time.Duration
	batchSize     int
	retryInterval time.Duration
	now           func() time.Time
	stopCh        chan struct{}
}

// NewWorker creates a new inbox worker configured from rabbitmq.inbox.*.
func NewWorker(inbox ipendingrepo.IPendingRepository, service service) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.inbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.inbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	retryIntervalSeconds := viper.GetInt("rabbitmq.inbox.retry_interval_seconds")
	if retryIntervalSeconds == 0 {
		retryIntervalSeconds = 30
	}

	return &Worker{
		inbox:         inbox,
		service:       service,
		pollInterval:  time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:     batchSize,
		retryInterval: time.Duration(retryIntervalSeconds) * time.Second,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
}

// Start begins retrying inbox entries.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Inbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Inbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Inbox worker stopped")

			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) drain(ctx context.Context) {
	ctx, span := otel.Tracer("worker").Start(ctx, "InboxWorker.drain")
	defer span.End()

	due, err := w.inbox.Due(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to load due inbox entries", "error", err)

		return
	}
	if len(due) == 0 {
		return
	}

	slog.Info("Retrying inbox entries", "count", len(due))

	for _, p := range due {
		w.retry(ctx, p)
	}
}

func (w *Worker) retry(ctx context.Context, p notification.Pending) {
	msg, err := p.Decode()
	if err != nil {
		slog.Error("Dropping undecodable inbox entry", "inbox_id", p.ID, "message_id", p.MessageID, "error", err)
		if err := w.inbox.Resolve(ctx, p.ID); err != nil {
			slog.Error("Failed to delete inbox entry", "inbox_id", p.ID, "error", err)
		}

		return
	}

	if err := w.service.ProcessNotification(ctx, msg); err != nil {
		p = p.Failed(err, w.retryInterval, w.now())

		if p.Exhausted() {
			slog.Error("Giving up on notification",
				"inbox_id", p.ID,
				"message_id", p.MessageID,
				"order_id", p.OrderID,
				"attempts", p.Attempts,
				"error", err,
			)
		} else {
			slog.Warn("Inbox retry failed",
				"inbox_id", p.ID,
				"attempts", p.Attempts,
				"next_attempt", p.NextAttemptAt,
				"error", err,
			)
		}

		if err := w.inbox.Reschedule(ctx, p); err != nil {
			slog.Error("Failed to reschedule inbox entry", "inbox_id", p.ID, "error", err)
		}

		return
	}

	if err := w.inbox.Resolve(ctx, p.ID); err != nil {
		slog.Error("Delivered inbox entry could not be removed", "inbox_id", p.ID, "error", err)

		return
	}

	slog.Info("Inbox entry delivered", "inbox_id", p.ID, "message_id", p.MessageID, "order_id", p.OrderID)
}
