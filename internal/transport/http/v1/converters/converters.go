package converters

import (
	"time"

	"github.com/biggslaundromat/laundromat/internal/service/models/catalog"
	"github.com/biggslaundromat/laundromat/internal/service/models/order"
	"github.com/biggslaundromat/laundromat/internal/service/models/orderitem"
	"github.com/biggslaundromat/laundromat/internal/service/models/statushistory"
)

// ConfirmationResponse is returned when an order has been placed.
type ConfirmationResponse struct {
	OrderID             int64     `json:"order_id"`
	TrackingNumber      string    `json:"tracking_number"`
	TotalAmount         float64   `json:"total_amount"`
	EstimatedCompletion time.Time `json:"estimated_completion"`
}

type OrderItemResponse struct {
	ID                  int64   `json:"id"`
	ServiceID           int64   `json:"service_id"`
	ServiceName         string  `json:"service_name"`
	ServiceCategory     string  `json:"service_category"`
	Quantity            int     `json:"quantity"`
	UnitPrice           float64 `json:"unit_price"`
	TotalPrice          float64 `json:"total_price"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

type StatusHistoryResponse struct {
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderResponse struct {
	ID                  int64                   `json:"id"`
	TrackingNumber      string                  `json:"tracking_number"`
	CustomerName        string                  `json:"customer_name"`
	CustomerPhone       string                  `json:"customer_phone,omitempty"`
	OrderType           string                  `json:"order_type"`
	PickupAddress       string                  `json:"pickup_address,omitempty"`
	DeliveryAddress     string                  `json:"delivery_address,omitempty"`
	ScheduledPickup     *time.Time              `json:"scheduled_pickup,omitempty"`
	ScheduledDelivery   *time.Time              `json:"scheduled_delivery,omitempty"`
	Subtotal            float64                 `json:"subtotal"`
	DeliveryFee         float64                 `json:"delivery_fee"`
	DiscountAmount      float64                 `json:"discount_amount"`
	LoyaltyDiscount     float64                 `json:"loyalty_discount"`
	TotalAmount         float64                 `json:"total_amount"`
	Currency            string                  `json:"currency"`
	PaymentMethod       string                  `json:"payment_method"`
	PaymentStatus       string                  `json:"payment_status"`
	Status              string                  `json:"status"`
	StatusDisplay       string                  `json:"status_display"`
	SpecialInstructions string                  `json:"special_instructions,omitempty"`
	EstimatedCompletion time.Time               `json:"estimated_completion"`
	CreatedAt           time.Time               `json:"created_at"`
	Items               []OrderItemResponse     `json:"items"`
	StatusHistory       []StatusHistoryResponse `json:"status_history,omitempty"`
}

type ServiceResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	BasePrice   float64 `json:"base_price"`
	Unit        string  `json:"unit"`
}

type CategoryResponse struct {
	Category    string            `json:"category"`
	DisplayName string            `json:"display_name"`
	Services    []ServiceResponse `json:"services"`
}

func ConfirmationToResponse(c order.Confirmation) ConfirmationResponse {
	return ConfirmationResponse{
		OrderID:             c.OrderID,
		TrackingNumber:      c.TrackingNumber,
		TotalAmount:         c.TotalAmount.InexactFloat64(),
		EstimatedCompletion: c.EstimatedCompletion,
	}
}

func OrderItemToResponse(item orderitem.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:                  item.ID,
		ServiceID:           item.ServiceID,
		ServiceName:         item.ServiceName,
		ServiceCategory:     item.ServiceCategory,
		Quantity:            item.Quantity,
		UnitPrice:           item.UnitPrice.InexactFloat64(),
		TotalPrice:          item.TotalPrice.InexactFloat64(),
		SpecialInstructions: item.SpecialInstructions,
	}
}

func StatusHistoryToResponse(e statushistory.Entry) StatusHistoryResponse {
	return StatusHistoryResponse{
		Status:    e.Status,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
	}
}

// OrderToResponse converts an order. The phone number is left out of public tracking responses.
func OrderToResponse(o order.Order, includePhone bool) OrderResponse {
	items := make([]OrderItemResponse, len(o.OrderItems))
	for i, item := range o.OrderItems {
		items[i] = OrderItemToResponse(item)
	}

	var history []StatusHistoryResponse
	for _, e := range o.StatusHistory {
		history = append(history, StatusHistoryToResponse(e))
	}

	resp := OrderResponse{
		ID:                  o.ID,
		TrackingNumber:      o.TrackingNumber,
		CustomerName:        o.CustomerName,
		OrderType:           o.OrderType,
		PickupAddress:       o.PickupAddress,
		DeliveryAddress:     o.DeliveryAddress,
		ScheduledPickup:     o.ScheduledPickup,
		ScheduledDelivery:   o.ScheduledDelivery,
		Subtotal:            o.Subtotal.InexactFloat64(),
		DeliveryFee:         o.DeliveryFee.InexactFloat64(),
		DiscountAmount:      o.DiscountAmount.InexactFloat64(),
		LoyaltyDiscount:     o.LoyaltyDiscount.InexactFloat64(),
		TotalAmount:         o.TotalAmount.InexactFloat64(),
		Currency:            o.Currency.String(),
		PaymentMethod:       o.PaymentMethod,
		PaymentStatus:       o.PaymentStatus,
		Status:              o.Status.String(),
		StatusDisplay:       o.Status.DisplayName(),
		SpecialInstructions: o.SpecialInstructions,
		EstimatedCompletion: o.EstimatedCompletion,
		CreatedAt:           o.CreatedAt,
		Items:               items,
		StatusHistory:       history,
	}
	if includePhone {
		resp.CustomerPhone = o.CustomerPhone
	}

	return resp
}

func ServiceToResponse(s catalog.Service) ServiceResponse {
	return ServiceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Category:    s.Category.String(),
		BasePrice:   s.BasePrice.InexactFloat64(),
		Unit:        s.Unit,
	}
}

func GroupsToResponse(groups []catalog.Group) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(groups))
	for _, g := range groups {
		services := make([]ServiceResponse, len(g.Services))
		for i, s := range g.Services {
			services[i] = ServiceToResponse(s)
		}
		out = append(out, CategoryResponse{
			Category:    g.Category.String(),
			DisplayName: g.Category.DisplayName(),
			Services:    services,
		})
	}

	return out
}
