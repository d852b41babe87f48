package getorder

import (
	"context"
	"net/http"
	"strconv"

	"github.com/biggslaundromat/laundromat/internal/service/apperr"
	"github.com/biggslaundromat/laundromat/internal/service/models/order"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/converters"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/response"
	"github.com/go-chi/chi/v5"
)

// service is an interface for the service layer.
type service interface {
	GetOrder(ctx context.Context, id int64) (order.Order, error)
}

// GetOrder handles GET /orders/{id}.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, apperr.Validation("Field 'id' must be a positive integer"))

		return
	}

	o, err := service.GetOrder(r.Context(), id)
	if err != nil {
		response.Error(w, err)

		return
	}

	response.JSON(w, http.StatusOK, "Order retrieved successfully", converters.OrderToResponse(o, true))
}
