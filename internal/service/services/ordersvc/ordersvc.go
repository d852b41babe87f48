package ordersvc

import (
	"context"
	"sync"
	"time"

	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/icatalogrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/icustomerrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/idiscountrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/iloyaltyrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/iorderitemrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/iorderrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/istatushistoryrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/postgres"
	"github.com/biggslaundromat/laundromat/internal/dal/uow"
	"github.com/biggslaundromat/laundromat/internal/service/models/currency"
	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
	"github.com/biggslaundromat/laundromat/internal/service/pricing"
	"github.com/biggslaundromat/laundromat/internal/service/tracking"
	"github.com/spf13/viper"
)

const (
	defaultTurnaround          = 24 * time.Hour
	defaultTrackingAttempts    = 5
	defaultNotificationTimeout = 10 * time.Second
)

// OrderService creates, looks up and moves orders through their lifecycle.
type OrderService struct {
	newUOW func() unitOfWork

	rules     pricing.Rules
	generator trackingGenerator
	notifier  notifier
	now       func() time.Time

	currency            currency.Currency
	turnaround          time.Duration
	trackingAttempts    int
	notificationTimeout time.Duration
	trackingURL         string

	wg sync.WaitGroup
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	CustomerRepository() icustomerrepo.ICustomerRepository
	CatalogRepository() icatalogrepo.ICatalogRepository
	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	DiscountRepository() idiscountrepo.IDiscountRepository
	LoyaltyRepository() iloyaltyrepo.ILoyaltyRepository
	StatusHistoryRepository() istatushistoryrepo.IStatusHistoryRepository
}

type trackingGenerator interface {
	Generate() (string, error)
}

type notifier interface {
	Notify(ctx context.Context, msg notification.Message) error
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService. Unset settings fall back to
// order.* and business.* config keys.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		rules:               pricing.DefaultRules(),
		generator:           tracking.NewGenerator(),
		now:                 time.Now,
		currency:            currency.CurrencyKES,
		turnaround:          defaultTurnaround,
		trackingAttempts:    defaultTrackingAttempts,
		notificationTimeout: defaultNotificationTimeout,
		trackingURL:         viper.GetString("business.tracking_url"),
	}

	if h := viper.GetInt("order.turnaround_hours"); h > 0 {
		s.turnaround = time.Duration(h) * time.Hour
	}
	if n := viper.GetInt("order.tracking_attempts"); n > 0 {
		s.trackingAttempts = n
	}
	if sec := viper.GetInt("order.notification_timeout_seconds"); sec > 0 {
		s.notificationTimeout = time.Duration(sec) * time.Second
	}
	if c, err := currency.ParseCurrency(viper.GetString("business.currency")); err == nil {
		s.currency = c
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		panic("ordersvc: no unit of work configured")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithUnitOfWorkFactory replaces the Postgres unit of work.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// WithPricingRules sets the pricing rules for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPricingRules(rules pricing.Rules) option {
	return func(s *OrderService) {
		s.rules = rules
	}
}

// WithNotifier sets where customer notifications are sent.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithNotifier(n notifier) option {
	return func(s *OrderService) {
		s.notifier = n
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithTrackingGenerator(g trackingGenerator) option {
	return func(s *OrderService) {
		s.generator = g
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *OrderService) {
		s.now = now
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithTurnaround(d time.Duration) option {
	return func(s *OrderService) {
		s.turnaround = d
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithTrackingURL(url string) option {
	return func(s *OrderService) {
		s.trackingURL = url
	}
}

// Wait blocks until every dispatched notification has finished.
func (s *OrderService) Wait() {
	s.wg.Wait()
}
