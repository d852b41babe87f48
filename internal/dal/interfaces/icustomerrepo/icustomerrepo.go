package icustomerrepo

import (
	"context"

	"github.com/biggslaundromat/laundromat/internal/service/models/customer"
)

// ICustomerRepository defines the interface for customer persistence.
type ICustomerRepository interface {
	// FindByPhone returns nil when no customer has the canonical phone
	FindByPhone(ctx context.Context, phone string) (*customer.Customer, error)
	GetByID(ctx context.Context, id int64) (*customer.Customer, error)
	Insert(ctx context.Context, c customer.Customer) (customer.Customer, error)
	// Update writes only the non-nil fields of upd
	Update(ctx context.Context, id int64, upd customer.Update) error
}
