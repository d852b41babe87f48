package grpctransport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type stubDB struct {
	err error
}

func (s *stubDB) Ping(context.Context) error {
	return s.err
}

func servingStatus(t *testing.T, g *GRPCTransport, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()

	resp, err := g.health.Check(t.Context(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)

	return resp.GetStatus()
}

func TestCheckHealth(t *testing.T) {
	db := &stubDB{}
	g := &GRPCTransport{health: health.NewServer(), db: db}

	g.checkHealth(t.Context())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, g, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, g, ServiceName))

	db.err = errors.New("connection refused")
	g.checkHealth(t.Context())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, g, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, g, ServiceName))

	db.err = nil
	g.checkHealth(t.Context())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, g, ServiceName))
}
