package ordersvc

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/icatalogrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/icustomerrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/idiscountrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/iloyaltyrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/iorderitemrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/iorderrepo"
	"github.com/biggslaundromat/laundromat/internal/dal/interfaces/istatushistoryrepo"
	"github.com/biggslaundromat/laundromat/internal/service/models/catalog"
	"github.com/biggslaundromat/laundromat/internal/service/models/customer"
	"github.com/biggslaundromat/laundromat/internal/service/models/discount"
	"github.com/biggslaundromat/laundromat/internal/service/models/loyalty"
	"github.com/biggslaundromat/laundromat/internal/service/models/notification"
	"github.com/biggslaundromat/laundromat/internal/service/models/order"
	"github.com/biggslaundromat/laundromat/internal/service/models/orderitem"
	"github.com/biggslaundromat/laundromat/internal/service/models/statushistory"
)

// memData is one consistent snapshot of every table.
type memData struct {
	nextID    int64
	customers map[int64]customer.Customer
	services  map[int64]catalog.Service
	orders    map[int64]order.Order
	items     []orderitem.OrderItem
	discounts map[int64]discount.Discount
	loyalty   map[int64]loyalty.Account
	history   []statushistory.Entry
}

func newMemData() *memData {
	return &memData{
		customers: map[int64]customer.Customer{},
		services:  map[int64]catalog.Service{},
		orders:    map[int64]order.Order{},
		discounts: map[int64]discount.Discount{},
		loyalty:   map[int64]loyalty.Account{},
	}
}

func (d *memData) clone() *memData {
	c := &memData{
		nextID:    d.nextID,
		customers: make(map[int64]customer.Customer, len(d.customers)),
		services:  make(map[int64]catalog.Service, len(d.services)),
		orders:    make(map[int64]order.Order, len(d.orders)),
		items:     slices.Clone(d.items),
		discounts: make(map[int64]discount.Discount, len(d.discounts)),
		loyalty:   make(map[int64]loyalty.Account, len(d.loyalty)),
		history:   slices.Clone(d.history),
	}
	for k, v := range d.customers {
		c.customers[k] = v
	}
	for k, v := range d.services {
		c.services[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.discounts {
		c.discounts[k] = v
	}
	for k, v := range d.loyalty {
		c.loyalty[k] = v
	}

	return c
}

func (d *memData) id() int64 {
	d.nextID++

	return d.nextID
}

// memStore is the committed state shared by every unit of work of a test.
type memStore struct {
	mu   sync.Mutex
	data *memData
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{data: newMemData(), fail: map[string]error{}}
}

func (s *memStore) newUOW() unitOfWork {
	return &fakeUOW{store: s}
}

func (s *memStore) addService(svc catalog.Service) catalog.Service {
	svc.ID = s.data.id()
	s.data.services[svc.ID] = svc

	return svc
}

func (s *memStore) addDiscount(d discount.Discount) discount.Discount {
	d.ID = s.data.id()
	s.data.discounts[d.ID] = d

	return d
}

func (s *memStore) addCustomer(c customer.Customer) customer.Customer {
	c.ID = s.data.id()
	s.data.customers[c.ID] = c

	return c
}

func (s *memStore) err(op string) error {
	return s.fail[op]
}

type fakeUOW struct {
	store *memStore
	tx    *memData
}

func (u *fakeUOW) d() *memData {
	if u.tx != nil {
		return u.tx
	}

	return u.store.data
}

func (u *fakeUOW) Begin(context.Context) error {
	if err := u.store.err("begin"); err != nil {
		return err
	}
	u.store.mu.Lock()
	u.tx = u.store.data.clone()

	return nil
}

func (u *fakeUOW) Commit(context.Context) error {
	if u.tx == nil {
		return nil
	}
	defer u.store.mu.Unlock()
	if err := u.store.err("commit"); err != nil {
		u.tx = nil

		return err
	}
	u.store.data = u.tx
	u.tx = nil

	return nil
}

func (u *fakeUOW) Rollback(context.Context) error {
	if u.tx == nil {
		return nil
	}
	u.tx = nil
	u.store.mu.Unlock()

	return nil
}

func (u *fakeUOW) CustomerRepository() icustomerrepo.ICustomerRepository {
	return &fakeCustomerRepo{u: u}
}

func (u *fakeUOW) CatalogRepository() icatalogrepo.ICatalogRepository {
	return &fakeCatalogRepo{u: u}
}

func (u *fakeUOW) OrderRepository() iorderrepo.IOrderRepository {
	return &fakeOrderRepo{u: u}
}

func (u *fakeUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return &fakeOrderItemRepo{u: u}
}

func (u *fakeUOW) DiscountRepository() idiscountrepo.IDiscountRepository {
	return &fakeDiscountRepo{u: u}
}

func (u *fakeUOW) LoyaltyRepository() iloyaltyrepo.ILoyaltyRepository {
	return &fakeLoyaltyRepo{u: u}
}

func (u *fakeUOW) StatusHistoryRepository() istatushistoryrepo.IStatusHistoryRepository {
	return &fakeHistoryRepo{u: u}
}

type fakeCustomerRepo struct{ u *fakeUOW }

func (r *fakeCustomerRepo) FindByPhone(_ context.Context, phone string) (*customer.Customer, error) {
	for _, c := range r.u.d().customers {
		if c.Phone == phone {
			return &c, nil
		}
	}

	return nil, nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id int64) (*customer.Customer, error) {
	c, ok := r.u.d().customers[id]
	if !ok {
		return nil, nil
	}

	return &c, nil
}

func (r *fakeCustomerRepo) Insert(_ context.Context, c customer.Customer) (customer.Customer, error) {
	if err := r.u.store.err("insert_customer"); err != nil {
		return customer.Customer{}, err
	}
	d := r.u.d()
	c.ID = d.id()
	d.customers[c.ID] = c

	return c, nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, id int64, upd customer.Update) error {
	d := r.u.d()
	c, ok := d.customers[id]
	if !ok {
		return errors.New("customer not found")
	}
	d.customers[id] = upd.Apply(c)

	return nil
}

type fakeCatalogRepo struct{ u *fakeUOW }

func (r *fakeCatalogRepo) GetByID(_ context.Context, id int64) (*catalog.Service, error) {
	svc, ok := r.u.d().services[id]
	if !ok {
		return nil, nil
	}

	return &svc, nil
}

func (r *fakeCatalogRepo) List(_ context.Context, q catalog.Query) ([]catalog.Service, error) {
	var out []catalog.Service
	for _, svc := range r.u.d().services {
		if q.ActiveOnly && !svc.IsActive {
			continue
		}
		if q.Category != "" && svc.Category != q.Category {
			continue
		}
		out = append(out, svc)
	}

	return out, nil
}

type fakeOrderRepo struct{ u *fakeUOW }

func (r *fakeOrderRepo) Insert(_ context.Context, o order.Order) (order.Order, error) {
	if err := r.u.store.err("insert_order"); err != nil {
		return order.Order{}, err
	}
	d := r.u.d()
	for _, existing := range d.orders {
		if existing.TrackingNumber == o.TrackingNumber {
			return order.Order{}, errors.New("duplicate tracking number")
		}
	}
	o.ID = d.id()
	o.OrderItems = nil
	d.orders[o.ID] = o

	return o, nil
}

func (r *fakeOrderRepo) Query(_ context.Context, q *order.QueryOrdersModel) ([]order.Order, error) {
	d := r.u.d()
	var out []order.Order
	for _, o := range d.orders {
		if len(q.Ids) > 0 && !slices.Contains(q.Ids, o.ID) {
			continue
		}
		if len(q.TrackingNumbers) > 0 && !slices.Contains(q.TrackingNumbers, o.TrackingNumber) {
			continue
		}
		if c, ok := d.customers[o.CustomerID]; ok {
			o.CustomerName = c.Name
			o.CustomerPhone = c.Phone
		}
		out = append(out, o)
	}

	return out, nil
}

func (r *fakeOrderRepo) TrackingNumberExists(_ context.Context, tn string) (bool, error) {
	for _, o := range r.u.d().orders {
		if o.TrackingNumber == tn {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, from, to order.Status) (bool, error) {
	d := r.u.d()
	o, ok := d.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	d.orders[id] = o

	return true, nil
}

type fakeOrderItemRepo struct{ u *fakeUOW }

func (r *fakeOrderItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	d := r.u.d()
	out := make([]orderitem.OrderItem, len(items))
	for i, item := range items {
		item.ID = d.id()
		d.items = append(d.items, item)
		out[i] = item
	}

	return out, nil
}

func (r *fakeOrderItemRepo) Query(_ context.Context, q *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error) {
	var out []orderitem.OrderItem
	for _, item := range r.u.d().items {
		if len(q.OrderIds) > 0 && !slices.Contains(q.OrderIds, item.OrderID) {
			continue
		}
		out = append(out, item)
	}

	return out, nil
}

type fakeDiscountRepo struct{ u *fakeUOW }

func (r *fakeDiscountRepo) FindActiveByCode(_ context.Context, code string) (*discount.Discount, error) {
	for _, d := range r.u.d().discounts {
		if d.IsActive && strings.EqualFold(d.Code, code) {
			return &d, nil
		}
	}

	return nil, nil
}

func (r *fakeDiscountRepo) ClaimUsage(_ context.Context, id int64) (bool, error) {
	data := r.u.d()
	d, ok := data.discounts[id]
	if !ok || d.Exhausted() {
		return false, nil
	}
	d.UsedCount++
	data.discounts[id] = d

	return true, nil
}

type fakeLoyaltyRepo struct{ u *fakeUOW }

func (r *fakeLoyaltyRepo) GetByCustomerID(_ context.Context, customerID int64) (*loyalty.Account, error) {
	a, ok := r.u.d().loyalty[customerID]
	if !ok {
		return nil, nil
	}

	return &a, nil
}

func (r *fakeLoyaltyRepo) Redeem(_ context.Context, customerID int64, points int64) (bool, error) {
	d := r.u.d()
	a, ok := d.loyalty[customerID]
	if !ok || a.CurrentBalance < points {
		return false, nil
	}
	a.CurrentBalance -= points
	a.PointsRedeemed += points
	d.loyalty[customerID] = a

	return true, nil
}

func (r *fakeLoyaltyRepo) Accrue(_ context.Context, customerID int64, points int64) (loyalty.Account, error) {
	d := r.u.d()
	a, ok := d.loyalty[customerID]
	if !ok {
		a = loyalty.Account{ID: d.id(), CustomerID: customerID, Tier: loyalty.TierBronze}
	}
	a.TotalPointsEarned += points
	a.CurrentBalance += points
	d.loyalty[customerID] = a

	return a, nil
}

func (r *fakeLoyaltyRepo) SetTier(_ context.Context, customerID int64, tier loyalty.Tier) error {
	d := r.u.d()
	a := d.loyalty[customerID]
	a.Tier = tier
	d.loyalty[customerID] = a

	return nil
}

type fakeHistoryRepo struct{ u *fakeUOW }

func (r *fakeHistoryRepo) Insert(_ context.Context, e statushistory.Entry) error {
	d := r.u.d()
	e.ID = d.id()
	d.history = append(d.history, e)

	return nil
}

func (r *fakeHistoryRepo) ListByOrderID(_ context.Context, orderID int64) ([]statushistory.Entry, error) {
	var out []statushistory.Entry
	for i := len(r.u.d().history) - 1; i >= 0; i-- {
		if e := r.u.d().history[i]; e.OrderID == orderID {
			out = append(out, e)
		}
	}

	return out, nil
}

// sequenceGenerator hands out fixed tracking numbers in order.
type sequenceGenerator struct {
	mu     sync.Mutex
	values []string
}

func (g *sequenceGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.values) == 0 {
		return "", errors.New("no tracking numbers left")
	}
	v := g.values[0]
	g.values = g.values[1:]

	return v, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	err      error
	messages []notification.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)

	return n.err
}

func (n *recordingNotifier) sent() []notification.Message {
	n.mu.Lock()
	defer n.mu.Unlock()

	return slices.Clone(n.messages)
}
