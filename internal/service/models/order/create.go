package order

import (
	"fmt"
	"strings"
	"time"
)

// ItemRequest is one requested service line.
type ItemRequest struct {
	ServiceID           int64
	Quantity            *int
	SpecialInstructions string
}

// CreateRequest carries everything a customer submits when placing an order.
// Optional string fields are nil when absent so repeat orders can distinguish
// "not supplied" from "cleared".
type CreateRequest struct {
	CustomerName        string
	CustomerPhone       string
	CustomerEmail       *string
	CustomerAddress     *string
	Items               []ItemRequest
	OrderType           string
	PickupAddress       string
	DeliveryAddress     string
	PickupLatitude      *float64
	PickupLongitude     *float64
	DeliveryLatitude    *float64
	DeliveryLongitude   *float64
	ScheduledPickup     *time.Time
	ScheduledDelivery   *time.Time
	DiscountCode        string
	UseLoyaltyPoints    bool
	PaymentMethod       string
	SpecialInstructions string
}

// Validate returns every violation found in the request.
func (r CreateRequest) Validate() []string {
	var errs []string

	if strings.TrimSpace(r.CustomerName) == "" {
		errs = append(errs, requiredField("customer_name"))
	}
	if strings.TrimSpace(r.CustomerPhone) == "" {
		errs = append(errs, requiredField("customer_phone"))
	}
	if len(r.Items) == 0 {
		errs = append(errs, requiredField("items"))
	}

	for i, item := range r.Items {
		if item.ServiceID <= 0 {
			errs = append(errs, requiredField(fmt.Sprintf("items[%d].service_id", i)))
		}
		if item.Quantity != nil && *item.Quantity <= 0 {
			errs = append(errs, fmt.Sprintf("Field 'items[%d].quantity' must be a positive number", i))
		}
	}

	errs = append(errs, coordinateErrors("pickup", r.PickupLatitude, r.PickupLongitude)...)
	errs = append(errs, coordinateErrors("delivery", r.DeliveryLatitude, r.DeliveryLongitude)...)

	return errs
}

// WithDefaults fills optional fields that have a default value.
func (r CreateRequest) WithDefaults() CreateRequest {
	if r.OrderType == "" {
		r.OrderType = TypePickupDelivery
	}
	if r.PaymentMethod == "" {
		r.PaymentMethod = PaymentMethodCash
	}
	r.DiscountCode = strings.TrimSpace(r.DiscountCode)
	r.CustomerName = strings.TrimSpace(r.CustomerName)

	items := make([]ItemRequest, len(r.Items))
	for i, item := range r.Items {
		if item.Quantity == nil {
			one := 1
			item.Quantity = &one
		}
		items[i] = item
	}
	r.Items = items

	return r
}

// HasPickupLocation reports whether both pickup coordinates were supplied.
func (r CreateRequest) HasPickupLocation() bool {
	return r.PickupLatitude != nil && r.PickupLongitude != nil
}

func requiredField(name string) string {
	return fmt.Sprintf("Field '%s' is required", name)
}

func coordinateErrors(prefix string, lat, lng *float64) []string {
	var errs []string
	if lat != nil && (*lat < -90 || *lat > 90) {
		errs = append(errs, fmt.Sprintf("Field '%s_latitude' must be between -90 and 90", prefix))
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		errs = append(errs, fmt.Sprintf("Field '%s_longitude' must be between -180 and 180", prefix))
	}
	if (lat == nil) != (lng == nil) {
		errs = append(errs, fmt.Sprintf("Fields '%s_latitude' and '%s_longitude' must be supplied together", prefix, prefix))
	}

	return errs
}
