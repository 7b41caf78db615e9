package order

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jmoralesq/tienda-orders/internal/catalog"
	"github.com/jmoralesq/tienda-orders/internal/user"
)

// memStore backs the in-memory fakes. A single mutex plays the role of the
// database's row serialization: every reservation and restock is atomic
// with respect to the store, mirroring the conditional-update discipline of
// the Postgres repo.
type memStore struct {
	mu       sync.Mutex
	products map[string]*catalog.Product
	users    map[string]*user.User
	orders   map[string]*Order
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]*catalog.Product),
		users:    make(map[string]*user.User),
		orders:   make(map[string]*Order),
	}
}

func (s *memStore) addProduct(id, name, price string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = &catalog.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
	}
}

func (s *memStore) addUser(id, name, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = &user.User{ID: id, Name: name, Email: email, Phone: "555-0100"}
}

func (s *memStore) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Quantity
}

type memCatalog struct{ s *memStore }

func (c memCatalog) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	p, ok := c.s.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type memUsers struct{ s *memStore }

func (u memUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr, ok := u.s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *usr
	return &cp, nil
}

type memRepo struct{ s *memStore }

func (r memRepo) Create(_ context.Context, o *Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// All-or-nothing: verify every line before touching any quantity.
	for _, it := range o.Items {
		p, ok := r.s.products[it.ProductID]
		if !ok {
			return &NotFoundError{Kind: "product", ID: it.ProductID}
		}
		if p.Quantity < it.Quantity {
			return &InsufficientStockError{ProductID: it.ProductID, Requested: it.Quantity, Available: p.Quantity}
		}
	}
	for _, it := range o.Items {
		r.s.products[it.ProductID].Quantity -= it.Quantity
	}
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	r.s.orders[o.ID] = &cp
	return nil
}

func (r memRepo) GetByID(_ context.Context, id string) (*Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	return &cp, nil
}

func (r memRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r memRepo) Transition(_ context.Context, id string, from, to Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.Status != from {
		return &InvalidTransitionError{From: o.Status, To: to}
	}
	o.Status = to
	if to == StatusCancelled {
		for _, it := range o.Items {
			if p, ok := r.s.products[it.ProductID]; ok {
				p.Quantity += it.Quantity
			}
		}
	}
	return nil
}

func (r memRepo) Stats(_ context.Context) (*Stats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s := &Stats{TotalRevenue: decimal.Zero}
	for _, o := range r.s.orders {
		s.TotalOrders++
		switch o.Status {
		case StatusPending:
			s.PendingOrders++
		case StatusProcessing:
			s.ProcessingOrders++
		case StatusShipped:
			s.ShippedOrders++
		case StatusCompleted:
			s.CompletedOrders++
			s.TotalRevenue = s.TotalRevenue.Add(o.TotalAmount)
		case StatusCancelled:
			s.CancelledOrders++
		}
	}
	for _, p := range r.s.products {
		if p.Quantity < 10 {
			s.LowStockProducts++
		}
	}
	return s, nil
}

func newTestService(s *memStore) *Service {
	return NewService(memRepo{s}, memCatalog{s}, memUsers{s})
}
