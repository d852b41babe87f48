package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/biggslaundromat/laundromat/internal/dal/postgres"
	"github.com/biggslaundromat/laundromat/internal/dal/rabbitmq"
	messagelogrepo "github.com/biggslaundromat/laundromat/internal/dal/repositories/messagelog/postgres"
	pendingrepo "github.com/biggslaundromat/laundromat/internal/dal/repositories/pending/postgres"
	"github.com/biggslaundromat/laundromat/internal/dal/whatsapp"
	"github.com/biggslaundromat/laundromat/internal/otel"
	"github.com/biggslaundromat/laundromat/internal/service/services/notificationsvc"
	"github.com/biggslaundromat/laundromat/internal/transport/consumer"
	inboxworker "github.com/biggslaundromat/laundromat/internal/worker/inbox"
)

// NotifierApp consumes notification messages and delivers them over WhatsApp.
type NotifierApp struct {
	consumerTransp *consumer.Consumer
	inboxWorker    *inboxworker.Worker
	rabbitMqClient *rabbitmq.Client
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewNotifierApp creates the notifier process.
func MustNewNotifierApp() *NotifierApp {
	otelController := otel.MustInitOtel("notifier")
	postgresClient := postgres.MustNewClient()
	rabbitMqClient := rabbitmq.MustNewClient()

	inboxRepository := pendingrepo.NewInboxRepository(postgresClient.Pool())

	notificationSvc := notificationsvc.MustNewNotificationService(
		notificationsvc.WithMessageLogRepository(messagelogrepo.NewMessageLogRepository(postgresClient.Pool())),
		notificationsvc.WithSender(whatsapp.NewClient(whatsapp.ConfigFromViper())),
	)

	return &NotifierApp{
		consumerTransp: consumer.NewConsumer(rabbitMqClient, notificationSvc, inboxRepository),
		inboxWorker:    inboxworker.NewWorker(inboxRepository, notificationSvc),
		rabbitMqClient: rabbitMqClient,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the consumer and the inbox worker and blocks until SIGINT or
// SIGTERM, or until the broker stops delivering.
func (a *NotifierApp) Run() {
	sig, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		slog.Info("Starting consumer")
		if err := a.consumerTransp.Run(ctx); err != nil {
			slog.Error("Consumer error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting inbox worker")
		a.inboxWorker.Start(ctx)
	}()

	select {
	case <-sig.Done():
		slog.Info("Shutdown signal received")
	case <-consumerDone:
		slog.Warn("Consumer exited, shutting down")
	}

	a.gracefulShutdown()
}

func (a *NotifierApp) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.inboxWorker.Stop()
	slog.Info("Inbox worker stopped gracefully")

	if err := a.consumerTransp.Shutdown(); err != nil {
		slog.Error("Consumer shutdown error", "error", err)
	} else {
		slog.Info("Consumer stopped gracefully")
	}

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider shutdown error", "error", err)
	} else {
		slog.Info("Otel trace provider stopped gracefully")
	}

	select {
	case <-ctx.Done():
		slog.Warn("Shutdown timeout exceeded")
	default:
		slog.Info("Notifier shutdown complete")
	}
}
