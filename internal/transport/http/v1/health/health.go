package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/response"
)

const pingTimeout = 2 * time.Second

// Version is reported by the health endpoint. Overridden at build time with -ldflags.
var Version = "dev"

type pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// Health handles GET /health. An unreachable database turns the answer into a 503.
func Health(w http.ResponseWriter, r *http.Request, db pinger) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := healthResponse{
		Status:    "healthy",
		Version:   Version,
		Database:  "connected",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if err := db.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		response.FailWithData(w, http.StatusServiceUnavailable, "Service unhealthy", resp)

		return
	}

	response.JSON(w, http.StatusOK, "Service healthy", resp)
}
