package trackorder

import (
	"context"
	"net/http"
	"strings"

	"github.com/biggslaundromat/laundromat/internal/service/models/order"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/converters"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/response"
	"github.com/go-chi/chi/v5"
)

// service is an interface for the service layer.
type service interface {
	TrackOrder(ctx context.Context, trackingNumber string) (order.Order, error)
}

// TrackOrder handles GET /track/{tracking_number}. Tracking numbers are matched case-insensitively.
func TrackOrder(w http.ResponseWriter, r *http.Request, service service) {
	trackingNumber := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "tracking_number")))

	o, err := service.TrackOrder(r.Context(), trackingNumber)
	if err != nil {
		response.Error(w, err)

		return
	}

	response.JSON(w, http.StatusOK, "Order found", converters.OrderToResponse(o, false))
}
