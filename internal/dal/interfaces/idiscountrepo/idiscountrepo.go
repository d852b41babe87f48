package idiscountrepo

import (
	"context"

	"github.com/biggslaundromat/laundromat/internal/service/models/discount"
)

// IDiscountRepository defines the interface for discount codes.
type IDiscountRepository interface {
	// FindActiveByCode returns nil when no active discount has the code
	FindActiveByCode(ctx context.Context, code string) (*discount.Discount, error)

	// ClaimUsage increments used_count unless the usage limit is reached and
	// reports whether the claim succeeded
	ClaimUsage(ctx context.Context, id int64) (bool, error)
}
