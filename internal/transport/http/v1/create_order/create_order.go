package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/biggslaundromat/laundromat/internal/service/apperr"
	"github.com/biggslaundromat/laundromat/internal/service/models/order"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/converters"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/response"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/validation"
)

const maxBodyBytes = 1 << 20

var validate = validation.New()

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, req order.CreateRequest) (order.Confirmation, error)
}

// itemInCreateOrderRequest represents an item in a create order request.
type itemInCreateOrderRequest struct {
	ServiceID           int64  `json:"service_id"`
	Quantity            *int   `json:"quantity"`
	SpecialInstructions string `json:"special_instructions" validate:"max=500"`
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	CustomerName        string                     `json:"customer_name"        validate:"max=100"`
	CustomerPhone       string                     `json:"customer_phone"       validate:"max=20"`
	CustomerEmail       *string                    `json:"customer_email"       validate:"omitempty,email,max=100"`
	CustomerAddress     *string                    `json:"customer_address"     validate:"omitempty,max=255"`
	Items               []itemInCreateOrderRequest `json:"items"                validate:"dive"`
	OrderType           string                     `json:"order_type"           validate:"omitempty,oneof=pickup_delivery drop_off"`
	PickupAddress       string                     `json:"pickup_address"       validate:"max=255"`
	DeliveryAddress     string                     `json:"delivery_address"     validate:"max=255"`
	PickupLatitude      *float64                   `json:"pickup_latitude"`
	PickupLongitude     *float64                   `json:"pickup_longitude"`
	DeliveryLatitude    *float64                   `json:"delivery_latitude"`
	DeliveryLongitude   *float64                   `json:"delivery_longitude"`
	ScheduledPickup     *time.Time                 `json:"scheduled_pickup"`
	ScheduledDelivery   *time.Time                 `json:"scheduled_delivery"`
	DiscountCode        string                     `json:"discount_code"        validate:"max=50"`
	UseLoyaltyPoints    bool                       `json:"use_loyalty_points"`
	PaymentMethod       string                     `json:"payment_method"       validate:"omitempty,oneof=cash mpesa card"`
	SpecialInstructions string                     `json:"special_instructions" validate:"max=1000"`
}

// normalize treats blank optional strings as absent.
func (r *createOrderRequest) normalize() {
	r.CustomerEmail = blankToNil(r.CustomerEmail)
	r.CustomerAddress = blankToNil(r.CustomerAddress)
}

// toModel converts createOrderRequest to order.CreateRequest.
func (r *createOrderRequest) toModel() order.CreateRequest {
	items := make([]order.ItemRequest, len(r.Items))
	for i, item := range r.Items {
		items[i] = order.ItemRequest{
			ServiceID:           item.ServiceID,
			Quantity:            item.Quantity,
			SpecialInstructions: item.SpecialInstructions,
		}
	}

	return order.CreateRequest{
		CustomerName:        r.CustomerName,
		CustomerPhone:       r.CustomerPhone,
		CustomerEmail:       r.CustomerEmail,
		CustomerAddress:     r.CustomerAddress,
		Items:               items,
		OrderType:           r.OrderType,
		PickupAddress:       r.PickupAddress,
		DeliveryAddress:     r.DeliveryAddress,
		PickupLatitude:      r.PickupLatitude,
		PickupLongitude:     r.PickupLongitude,
		DeliveryLatitude:    r.DeliveryLatitude,
		DeliveryLongitude:   r.DeliveryLongitude,
		ScheduledPickup:     r.ScheduledPickup,
		ScheduledDelivery:   r.ScheduledDelivery,
		DiscountCode:        r.DiscountCode,
		UseLoyaltyPoints:    r.UseLoyaltyPoints,
		PaymentMethod:       r.PaymentMethod,
		SpecialInstructions: r.SpecialInstructions,
	}
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := createOrderRequest{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		slog.Warn("Error decoding request body for create order", "error", err)
		response.Fail(w, http.StatusBadRequest, "Invalid JSON body", nil)

		return
	}
	req.normalize()

	model := req.toModel()

	errs := model.Validate()
	errs = append(errs, validation.Messages(validate.Struct(&req))...)
	if len(errs) > 0 {
		response.Error(w, apperr.Validation(errs...))

		return
	}

	confirmation, err := service.CreateOrder(r.Context(), model)
	if err != nil {
		response.Error(w, err)

		return
	}

	response.JSON(w, http.StatusCreated, "Order created successfully", converters.ConfirmationToResponse(confirmation))
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}

	return s
}
