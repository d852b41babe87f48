package getservice

import (
	"context"
	"net/http"
	"strconv"

	"github.com/biggslaundromat/laundromat/internal/service/apperr"
	"github.com/biggslaundromat/laundromat/internal/service/models/catalog"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/converters"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/response"
	"github.com/go-chi/chi/v5"
)

type service interface {
	GetService(ctx context.Context, id int64) (catalog.Service, error)
}

// GetService handles GET /services/{id}.
func GetService(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, apperr.Validation("Field 'id' must be a positive integer"))

		return
	}

	svc, err := service.GetService(r.Context(), id)
	if err != nil {
		response.Error(w, err)

		return
	}

	response.JSON(w, http.StatusOK, "Service retrieved successfully", converters.ServiceToResponse(svc))
}
