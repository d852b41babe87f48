package ipendingrepo

import (
	"context"

	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
)

// IPendingRepository stores notifications waiting for another attempt.
type IPendingRepository interface {
	// Park stores p. A message id that is already parked is left untouched.
	Park(ctx context.Context, p notification.Pending) error
	// Due returns up to limit entries whose next attempt is due and that have attempts left.
	Due(ctx context.Context, limit int) ([]notification.Pending, error)
	Resolve(ctx context.Context, id int64) error
	// Reschedule persists the attempt count, error and next attempt time of p.
	Reschedule(ctx context.Context, p notification.Pending) error
}
