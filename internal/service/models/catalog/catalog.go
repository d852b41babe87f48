package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Category groups services on the public site.
type Category string

const (
	CategoryLaundryDryCleaning Category = "laundry_dry_cleaning"
	CategoryHomeUpholstery     Category = "home_upholstery"
	CategoryHotelsOffice       Category = "hotels_office"
	CategoryAutoDetailing      Category = "auto_detailing"
)

var ErrInvalidCategory = errors.New("invalid service category")

// Categories lists the known categories in display order.
var Categories = []Category{
	CategoryLaundryDryCleaning,
	CategoryHomeUpholstery,
	CategoryHotelsOffice,
	CategoryAutoDetailing,
}

func (c Category) String() string {
	return string(c)
}

// DisplayName is the human readable label of the category.
func (c Category) DisplayName() string {
	switch c {
	case CategoryLaundryDryCleaning:
		return "Laundry & Dry Cleaning"
	case CategoryHomeUpholstery:
		return "Home & Upholstery"
	case CategoryHotelsOffice:
		return "Hotels & Office"
	case CategoryAutoDetailing:
		return "Auto Detailing"
	default:
		return string(c)
	}
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if c.String() == s {
			return c, nil
		}
	}

	return "", ErrInvalidCategory
}

// Service is a catalog entry that can be ordered while active.
type Service struct {
	ID          int64
	Name        string
	Description string
	Category    Category
	BasePrice   decimal.Decimal
	Unit        string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Query filters catalog listings.
type Query struct {
	Category   Category
	ActiveOnly bool
}

// Group is a category together with its services.
type Group struct {
	Category Category
	Services []Service
}

// GroupByCategory buckets services, keeping the order of Categories and the order of services.
func GroupByCategory(services []Service) []Group {
	buckets := make(map[Category][]Service)
	for _, s := range services {
		buckets[s.Category] = append(buckets[s.Category], s)
	}

	groups := make([]Group, 0, len(buckets))
	for _, c := range Categories {
		if svcs, ok := buckets[c]; ok {
			groups = append(groups, Group{Category: c, Services: svcs})
			delete(buckets, c)
		}
	}
	for _, s := range services {
		if svcs, ok := buckets[s.Category]; ok {
			groups = append(groups, Group{Category: s.Category, Services: svcs})
			delete(buckets, s.Category)
		}
	}

	return groups
}
