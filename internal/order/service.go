// Package order is the placement and inventory consistency core: pricing,
// reservation, the order ledger and the status state machine.
package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmoralesq/tienda-orders/internal/catalog"
	"github.com/jmoralesq/tienda-orders/internal/user"
)

// UserReader is the external identity collaborator. The host hands us a
// verified user id; we only look up the customer record behind it.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// Actor is the verified identity supplied by the upstream auth layer.
// The core never reads ambient auth state.
type Actor struct {
	ID    string
	Admin bool
}

type PlaceOrderInput struct {
	UserID          string
	Lines           []CartLine
	ShippingAddress string
	PaymentMethod   string
}

type Service struct {
	repo  Repository
	cat   catalog.Reader
	users UserReader
}

func NewService(repo Repository, cat catalog.Reader, users UserReader) *Service {
	return &Service{repo: repo, cat: cat, users: users}
}

// PlaceOrder validates the cart, prices it against the catalog snapshot and
// commits reservation plus ledger as one atomic unit. On any error no stock
// decrement and no order row survives.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, error) {
	if in.UserID == "" {
		return nil, &ValidationError{Reason: "user_id is required"}
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return nil, &ValidationError{Reason: "shipping_address is required"}
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, &ValidationError{Reason: "payment_method is required"}
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, &NotFoundError{Kind: "user", ID: in.UserID}
		}
		return nil, &PersistenceError{Op: "validate user", Err: err}
	}

	priced, subtotal, err := PriceCart(ctx, s.cat, in.Lines)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	o := &Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		Status:          StatusPending,
		TotalAmount:     subtotal,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, pl := range priced {
		o.Items = append(o.Items, Item{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ProductID:   pl.ProductID,
			ProductName: pl.ProductName,
			Quantity:    pl.Quantity,
			UnitPrice:   pl.UnitPrice,
		})
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, &NotFoundError{Kind: "order", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// QuoteCart prices a cart for display: subtotal plus the derived tax and
// shipping lines. Nothing here is reserved or persisted.
func (s *Service) QuoteCart(ctx context.Context, lines []CartLine) (*Quote, error) {
	priced, subtotal, err := PriceCart(ctx, s.cat, lines)
	if err != nil {
		return nil, err
	}
	tax := Tax(subtotal)
	shipping := ShippingFee(subtotal)
	return &Quote{
		Lines:    priced,
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}, nil
}

// SetStatus applies a status transition in two phases: the pure transition
// rule first, then the guarded commit. Cancellation restocks every item in
// the same transaction as the status change.
func (s *Service) SetStatus(ctx context.Context, id string, to Status, actor Actor) (*Order, error) {
	if !actor.Admin {
		return nil, ErrForbidden
	}
	if !to.Valid() {
		return nil, &ValidationError{Reason: "unknown status: " + string(to)}
	}
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(to) {
		return nil, &InvalidTransitionError{From: o.Status, To: to}
	}
	if err := s.repo.Transition(ctx, id, o.Status, to); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Kind: "order", ID: id}
		}
		return nil, err
	}
	return s.GetOrder(ctx, id)
}

func (s *Service) GenerateSlip(ctx context.Context, id string) (*Slip, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, o.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, &NotFoundError{Kind: "user", ID: o.UserID}
		}
		return nil, &PersistenceError{Op: "load customer", Err: err}
	}
	return BuildSlip(o, u), nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
