package listservices

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/biggslaundromat/laundromat/internal/service/apperr"
	"github.com/biggslaundromat/laundromat/internal/service/models/catalog"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/converters"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/response"
	"github.com/gorilla/schema"
)

var decoder = newDecoder()

type service interface {
	ListServices(ctx context.Context, category string) ([]catalog.Group, error)
}

type listServicesRequest struct {
	Category string `schema:"category,omitempty"`
}

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

// ListServices handles GET /services.
func ListServices(w http.ResponseWriter, r *http.Request, service service) {
	query := &listServicesRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		slog.Warn("Error decoding request", "error", err)
		response.Error(w, apperr.Validation("Invalid query parameters"))

		return
	}

	groups, err := service.ListServices(r.Context(), query.Category)
	if err != nil {
		response.Error(w, err)

		return
	}

	response.JSON(w, http.StatusOK, "Services retrieved successfully", converters.GroupsToResponse(groups))
}
