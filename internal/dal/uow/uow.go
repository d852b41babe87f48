package uow

import (
	"context"
	"errors"

	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/icatalogrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/icustomerrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/idiscountrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/iloyaltyrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/iorderitemrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/iorderrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/istatushistoryrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/postgres"
	catalogrepo "github.com/biggslaundromat/laundromat/internal/dal/repositories/catalog/postgres"
	customerrepo "github.com/biggslaundromat/laundromat/internal/dal/repositories/customer/postgres"
	discountrepo "github.com/biggslaundromat/laundromat/internal/dal/repositories/discount/postgres"
	loyaltyrepo "github.com/biggslaundromat/laundromat/internal/dal/repositories/loyalty/postgres"
	orderrepo "github.com/biggslaundromat/laundromat/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/biggslaundromat/laundromat/internal/dal/repositories/orderitem/postgres"
	statushistoryrepo "github.com/biggslaundromat/laundromat/internal/dal/repositories/statushistory/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitOfWork groups the order repositories. Before Begin they run on the pool;
// after Begin they run on the transaction.
type UnitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx

	customerRepo      icustomerrepo.ICustomerRepository
	catalogRepo       icatalogrepo.ICatalogRepository
	orderRepo         iorderrepo.IOrderRepository
	orderItemRepo     iorderitemrepo.IOrderItemRepository
	discountRepo      idiscountrepo.IDiscountRepository
	loyaltyRepo       iloyaltyrepo.ILoyaltyRepository
	statusHistoryRepo istatushistoryrepo.IStatusHistoryRepository
}

// NewUnitOfWork creates a unit of work bound to the client's pool.
func NewUnitOfWork(client *postgres.Client) *UnitOfWork {
	u := &UnitOfWork{pool: client.Pool()}
	u.bind(client.Pool())

	return u
}

func (u *UnitOfWork) bind(conn postgres.Conn) {
	u.customerRepo = customerrepo.NewCustomerRepository(conn)
	u.catalogRepo = catalogrepo.NewCatalogRepository(conn)
	u.orderRepo = orderrepo.NewPostgresOrderRepository(conn)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(conn)
	u.discountRepo = discountrepo.NewDiscountRepository(conn)
	u.loyaltyRepo = loyaltyrepo.NewLoyaltyRepository(conn)
	u.statusHistoryRepo = statushistoryrepo.NewStatusHistoryRepository(conn)
}

func (u *UnitOfWork) CustomerRepository() icustomerrepo.ICustomerRepository {
	return u.customerRepo
}

func (u *UnitOfWork) CatalogRepository() icatalogrepo.ICatalogRepository {
	return u.catalogRepo
}

func (u *UnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *UnitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *UnitOfWork) DiscountRepository() idiscountrepo.IDiscountRepository {
	return u.discountRepo
}

func (u *UnitOfWork) LoyaltyRepository() iloyaltyrepo.ILoyaltyRepository {
	return u.loyaltyRepo
}

func (u *UnitOfWork) StatusHistoryRepository() istatushistoryrepo.IStatusHistoryRepository {
	return u.statusHistoryRepo
}

// Begin starts a read-committed transaction and rebinds every repository to it.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}

	u.tx = tx
	u.bind(tx)

	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback is a no-op after a successful Commit, so it can always be deferred.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}

	return err
}
