package icatalogrepo

import (
	"context"

	"github.com/biggslaundromat/laundromat/internal/service/models/catalog"
)

// ICatalogRepository defines the interface for reading the service catalog.
type ICatalogRepository interface {
	// GetByID returns nil when the service does not exist, active or not
	GetByID(ctx context.Context, id int64) (*catalog.Service, error)
	List(ctx context.Context, query catalog.Query) ([]catalog.Service, error)
}
