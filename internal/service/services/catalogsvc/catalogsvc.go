package catalogsvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/icatalogrepo"
	"github.com/biggslaundromat/laundromat/internal/service/apperr"
	"github.com/biggslaundromat/laundromat/internal/service/models/catalog"
	"go.opentelemetry.io/otel"
)

// CatalogService serves the public service catalog.
type CatalogService struct {
	catalogRepo icatalogrepo.ICatalogRepository
}

// option is a function that configures the CatalogService.
type option func(*CatalogService)

// MustNewCatalogService creates a new CatalogService.
func MustNewCatalogService(opts ...option) *CatalogService {
	s := &CatalogService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.catalogRepo == nil {
		panic("catalogsvc: no catalog repository configured")
	}

	return s
}

// WithCatalogRepository sets the catalog repository for the CatalogService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalogRepository(repo icatalogrepo.ICatalogRepository) option {
	return func(s *CatalogService) {
		s.catalogRepo = repo
	}
}

// ListServices returns active services grouped by category. An empty category lists all of them.
func (s *CatalogService) ListServices(ctx context.Context, category string) ([]catalog.Group, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.ListServices")
	defer span.End()

	query := catalog.Query{ActiveOnly: true}
	if category != "" {
		c, err := catalog.ParseCategory(category)
		if err != nil {
			names := make([]string, 0, len(catalog.Categories))
			for _, known := range catalog.Categories {
				names = append(names, known.String())
			}

			return nil, apperr.Validation(
				fmt.Sprintf("Field 'category' must be one of: %s", strings.Join(names, ", ")),
			)
		}
		query.Category = c
	}

	services, err := s.catalogRepo.List(ctx, query)
	if err != nil {
		return nil, apperr.Infra("list services", err)
	}

	return catalog.GroupByCategory(services), nil
}

// GetService returns an orderable service. Inactive services are reported as missing.
func (s *CatalogService) GetService(ctx context.Context, id int64) (catalog.Service, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.GetService")
	defer span.End()

	svc, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return catalog.Service{}, apperr.Infra("get service", err)
	}
	if svc == nil || !svc.IsActive {
		return catalog.Service{}, apperr.NotFound("service", id)
	}

	return *svc, nil
}
