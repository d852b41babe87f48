package updateorderstatus

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/biggslaundromat/laundromat/internal/service/apperr"
	"github.com/biggslaundromat/laundromat/internal/service/models/order"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/converters"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/response"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/validation"
	"github.com/go-chi/chi/v5"
)

var validate = validation.New()

// service is an interface for the service layer.
type service interface {
	UpdateStatus(ctx context.Context, id int64, next order.Status, notes string) (order.Order, error)
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed in_progress ready_for_delivery completed cancelled"`
	Notes  string `json:"notes"  validate:"max=500"`
}

// UpdateOrderStatus handles PUT /orders/{id}/status.
func UpdateOrderStatus(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, apperr.Validation("Field 'id' must be a positive integer"))

		return
	}

	req := updateOrderStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid JSON body", nil)

		return
	}

	if errs := validation.Messages(validate.Struct(&req)); len(errs) > 0 {
		response.Error(w, apperr.Validation(errs...))

		return
	}

	next, err := order.ParseStatus(req.Status)
	if err != nil {
		response.Error(w, apperr.Validation("Field 'status' is invalid"))

		return
	}

	o, err := service.UpdateStatus(r.Context(), id, next, req.Notes)
	if err != nil {
		response.Error(w, err)

		return
	}

	response.JSON(w, http.StatusOK, "Order status updated", converters.OrderToResponse(o, true))
}
