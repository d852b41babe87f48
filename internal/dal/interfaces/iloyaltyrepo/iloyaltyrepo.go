package iloyaltyrepo

import (
	"context"

	"github.com/biggslaundromat/laundromat/internal/service/models/loyalty"
)

// ILoyaltyRepository defines the interface for loyalty accounts.
type ILoyaltyRepository interface {
	// GetByCustomerID returns nil when the customer has no account yet
	GetByCustomerID(ctx context.Context, customerID int64) (*loyalty.Account, error)

	// Redeem deducts points only if the balance still covers them and
	// reports whether it did
	Redeem(ctx context.Context, customerID int64, points int64) (bool, error)

	// Accrue adds points to both lifetime and current balance, creating the account if needed
	Accrue(ctx context.Context, customerID int64, points int64) (loyalty.Account, error)

	SetTier(ctx context.Context, customerID int64, tier loyalty.Tier) error
}
