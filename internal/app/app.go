package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/biggslaundromat/laundromat/internal/dal/postgres"
	"github.com/biggslaundromat/laundromat/internal/dal/rabbitmq"
	catalogrepo "github.com/biggslaundromat/laundromat/internal/dal/repositories/catalog/postgres"
	notificationpub "github.com/biggslaundromat/laundromat/internal/dal/repositories/notification/rabbitmq"
	pendingrepo "github.com/biggslaundromat/laundromat/internal/dal/repositories/pending/postgres"
	"github.com/biggslaundromat/laundromat/internal/otel"
	"github.com/biggslaundromat/laundromat/internal/service/pricing"
	"github.com/biggslaundromat/laundromat/internal/service/services/catalogsvc"
	"github.com/biggslaundromat/laundromat/internal/service/services/ordersvc"
	grpctransport "github.com/biggslaundromat/laundromat/internal/transport/grpc"
	httptransport "github.com/biggslaundromat/laundromat/internal/transport/http"
	outboxworker "github.com/biggslaundromat/laundromat/internal/worker/outbox"
)

const shutdownTimeout = 10 * time.Second

// App is the API process: HTTP and gRPC transports plus the outbox worker.
type App struct {
	orderSvc       *ordersvc.OrderService
	httpTransport  *httptransport.HTTPTransport
	grpcTransport  *grpctransport.GRPCTransport
	outboxWorker   *outboxworker.Worker
	rabbitMqClient *rabbitmq.Client
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel("api")
	postgresClient := postgres.MustNewClient()
	rabbitMqClient := rabbitmq.MustNewClient()

	outboxRepository := pendingrepo.NewOutboxRepository(postgresClient.Pool())
	publisher := notificationpub.NewNotificationPublisher(rabbitMqClient, outboxRepository)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithPricingRules(pricing.RulesFromViper()),
		ordersvc.WithNotifier(publisher),
	)

	catalogSvc := catalogsvc.MustNewCatalogService(
		catalogsvc.WithCatalogRepository(catalogrepo.NewCatalogRepository(postgresClient.Pool())),
	)

	httpTransport := httptransport.NewHTTPTransport(orderSvc, catalogSvc, postgresClient)
	httpTransport.RegisterRoutes()

	grpcTransport := grpctransport.NewGRPCTransport(postgresClient)

	outboxWorker := outboxworker.NewWorker(outboxRepository, rabbitMqClient)

	return &App{
		orderSvc:       orderSvc,
		httpTransport:  httpTransport,
		grpcTransport:  grpcTransport,
		outboxWorker:   outboxWorker,
		rabbitMqClient: rabbitMqClient,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := a.httpTransport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		if err := a.grpcTransport.Run(); err != nil {
			slog.Error("gRPC server error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting outbox worker")
		a.outboxWorker.Start(ctx)
	}()

	<-stop
	slog.Info("Shutdown signal received")
	cancel()

	a.gracefulShutdown()
}

// gracefulShutdown stops the outbox worker and both transports, waits for
// queued notifications, then closes RabbitMQ, Postgres and OpenTelemetry.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.outboxWorker.Stop()
	slog.Info("Outbox worker stopped gracefully")

	if err := a.httpTransport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.grpcTransport.Shutdown(ctx); err != nil {
		slog.Error("gRPC server shutdown error", "error", err)
	} else {
		slog.Info("gRPC server stopped gracefully")
	}

	a.orderSvc.Wait()

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
		slog.Info("Application shutdown complete")
	}
}
