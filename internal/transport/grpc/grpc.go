package grpctransport

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

const (
	// ServiceName is the name reported to health probes alongside the overall "" entry.
	ServiceName = "laundromat.Orders"

	defaultHealthInterval = 10 * time.Second
	pingTimeout           = 2 * time.Second
)

type pinger interface {
	Ping(ctx context.Context) error
}

// GRPCTransport serves the standard gRPC health service, driven by database reachability.
type GRPCTransport struct {
	server   *grpc.Server
	listener net.Listener
	health   *health.Server
	db       pinger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewGRPCTransport creates a new GRPCTransport listening on server.grpc.port.
func NewGRPCTransport(db pinger) *GRPCTransport {
	listener, err := net.Listen("tcp", ":"+viper.GetString("server.grpc.port"))
	if err != nil {
		panic(err)
	}

	interval := time.Duration(viper.GetInt("server.grpc.health_interval_seconds")) * time.Second
	if interval == 0 {
		interval = defaultHealthInterval
	}

	return &GRPCTransport{
		server:   newGRPCServer(),
		listener: listener,
		health:   health.NewServer(),
		db:       db,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Run registers the services, starts the health watcher and serves until Shutdown.
func (g *GRPCTransport) Run() error {
	g.RegisterServices()
	go g.watch()

	slog.Info("Starting gRPC server", "address", g.listener.Addr().String())

	return g.server.Serve(g.listener)
}

// Shutdown gracefully shuts down the gRPC server.
func (g *GRPCTransport) Shutdown(ctx context.Context) error {
	g.stopOnce.Do(func() {
		close(g.stopCh)
		g.health.Shutdown()
	})

	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		g.server.Stop()

		return ctx.Err()
	}
}

// RegisterServices registers the gRPC services.
func (g *GRPCTransport) RegisterServices() {
	healthpb.RegisterHealthServer(g.server, g.health)
	reflection.Register(g.server)
}

func (g *GRPCTransport) watch() {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	g.checkHealth(context.Background())

	for {
		select {
		case <-g.stopCh:
			return
		case <-ticker.C:
			g.checkHealth(context.Background())
		}
	}
}

func (g *GRPCTransport) checkHealth(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := g.db.Ping(ctx); err != nil {
		slog.Warn("Database ping failed, reporting not serving", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(ServiceName, status)
}

// newGRPCServer creates a new gRPC server with keepalive settings from config.
func newGRPCServer() *grpc.Server {
	keepaliveParams := keepalive.ServerParameters{
		MaxConnectionIdle:     time.Duration(viper.GetInt("server.grpc.keepalive.max_connection_idle")) * time.Minute,
		MaxConnectionAge:      time.Duration(viper.GetInt("server.grpc.keepalive.max_connection_age")) * time.Minute,
		MaxConnectionAgeGrace: time.Duration(viper.GetInt("server.grpc.keepalive.max_connection_age_grace")) * time.Second,
		Time:                  time.Duration(viper.GetInt("server.grpc.keepalive.time")) * time.Second,
		Timeout:               time.Duration(viper.GetInt("server.grpc.keepalive.timeout")) * time.Second,
	}

	keepalivePolicy := keepalive.EnforcementPolicy{
		MinTime:             time.Duration(viper.GetInt("server.grpc.keepalive.min_time")) * time.Second,
		PermitWithoutStream: viper.GetBool("server.grpc.keepalive.permit_without_stream"),
	}

	return grpc.NewServer(
		grpc.KeepaliveParams(keepaliveParams),
		grpc.KeepaliveEnforcementPolicy(keepalivePolicy),
	)
}
