package order

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() (*Service, *memStore) {
	s := newMemStore()
	s.addUser("u1", "Ana Torres", "ana@example.com")
	s.addProduct("p1", "Keyboard", "10.00", 5)
	return newTestService(s), s
}

var admin = Actor{ID: "admin-1", Admin: true}

func place(t *testing.T, svc *Service, lines []CartLine) *Order {
	t.Helper()
	o, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:          "u1",
		Lines:           lines,
		ShippingAddress: "Av. Siempre Viva 742",
		PaymentMethod:   "credit_card",
	})
	require.NoError(t, err)
	return o
}

func TestPlaceOrder_HappyPath(t *testing.T) {
	svc, s := seeded()

	o := place(t, svc, []CartLine{{ProductID: "p1", Quantity: 2}})

	assert.Equal(t, StatusPending, o.Status)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("20.00")), "total: %s", o.TotalAmount)
	require.Len(t, o.Items, 1)
	assert.True(t, o.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, 3, s.stock("p1"))

	// frozen total invariant: total_amount == sum(unit_price * quantity)
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	assert.True(t, o.TotalAmount.Equal(sum))
}

func TestPlaceOrder_FrozenPricing(t *testing.T) {
	svc, s := seeded()
	o := place(t, svc, []CartLine{{ProductID: "p1", Quantity: 1}})

	// later price changes must not touch the stored order
	s.mu.Lock()
	s.products["p1"].Price = decimal.RequireFromString("99.99")
	s.mu.Unlock()

	got, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	svc, s := seeded()
	s.mu.Lock()
	s.products["p1"].Quantity = 3
	s.mu.Unlock()

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:          "u1",
		Lines:           []CartLine{{ProductID: "p1", Quantity: 10}},
		ShippingAddress: "addr",
		PaymentMethod:   "credit_card",
	})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p1", stockErr.ProductID)
	assert.Equal(t, 10, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// no side effects: stock unchanged, no order created
	assert.Equal(t, 3, s.stock("p1"))
	s.mu.Lock()
	assert.Empty(t, s.orders)
	s.mu.Unlock()
}

func TestPlaceOrder_AllOrNothing(t *testing.T) {
	svc, s := seeded()
	s.addProduct("p2", "Mouse", "5.00", 1)

	// second line fails, first line's stock must survive untouched
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:          "u1",
		Lines:           []CartLine{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 5}},
		ShippingAddress: "addr",
		PaymentMethod:   "cash",
	})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, s.stock("p1"))
	assert.Equal(t, 1, s.stock("p2"))
}

func TestPlaceOrder_Validation(t *testing.T) {
	svc, _ := seeded()
	cases := []PlaceOrderInput{
		{UserID: "", Lines: []CartLine{{ProductID: "p1", Quantity: 1}}, ShippingAddress: "a", PaymentMethod: "m"},
		{UserID: "u1", Lines: []CartLine{{ProductID: "p1", Quantity: 1}}, ShippingAddress: "  ", PaymentMethod: "m"},
		{UserID: "u1", Lines: []CartLine{{ProductID: "p1", Quantity: 1}}, ShippingAddress: "a", PaymentMethod: ""},
		{UserID: "u1", Lines: nil, ShippingAddress: "a", PaymentMethod: "m"},
	}
	for i, in := range cases {
		_, err := svc.PlaceOrder(context.Background(), in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "case %d", i)
	}
}

func TestPlaceOrder_UnknownUser(t *testing.T) {
	svc, _ := seeded()
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:          "ghost",
		Lines:           []CartLine{{ProductID: "p1", Quantity: 1}},
		ShippingAddress: "a",
		PaymentMethod:   "m",
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "user", nf.Kind)
}

func TestPlaceOrder_Concurrent(t *testing.T) {
	svc, s := seeded() // p1 has quantity 5

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.PlaceOrder(context.Background(), PlaceOrderInput{
				UserID:          "u1",
				Lines:           []CartLine{{ProductID: "p1", Quantity: 3}},
				ShippingAddress: "addr",
				PaymentMethod:   "cash",
			})
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			var stockErr *InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one placement must lose the race")
	assert.Equal(t, 2, s.stock("p1"))
}

func TestSetStatus_InvalidTransition(t *testing.T) {
	svc, _ := seeded()
	o := place(t, svc, []CartLine{{ProductID: "p1", Quantity: 1}})

	_, err := svc.SetStatus(context.Background(), o.ID, StatusShipped, admin)
	var trErr *InvalidTransitionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, StatusPending, trErr.From)
	assert.Equal(t, StatusShipped, trErr.To)
}

func TestSetStatus_CancelRestocks(t *testing.T) {
	svc, s := seeded()
	o := place(t, svc, []CartLine{{ProductID: "p1", Quantity: 2}})
	require.Equal(t, 3, s.stock("p1"))

	_, err := svc.SetStatus(context.Background(), o.ID, StatusProcessing, admin)
	require.NoError(t, err)

	got, err := svc.SetStatus(context.Background(), o.ID, StatusCancelled, admin)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, 5, s.stock("p1"))

	// a second cancellation is rejected, never double-applied
	_, err = svc.SetStatus(context.Background(), o.ID, StatusCancelled, admin)
	var trErr *InvalidTransitionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, 5, s.stock("p1"))
}

func TestSetStatus_FullLifecycle(t *testing.T) {
	svc, s := seeded()
	o := place(t, svc, []CartLine{{ProductID: "p1", Quantity: 1}})

	for _, next := range []Status{StatusProcessing, StatusShipped, StatusCompleted} {
		got, err := svc.SetStatus(context.Background(), o.ID, next, admin)
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
	}
	// completed is terminal
	_, err := svc.SetStatus(context.Background(), o.ID, StatusCancelled, admin)
	var trErr *InvalidTransitionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, 4, s.stock("p1"), "no restock after completion")
}

func TestSetStatus_Forbidden(t *testing.T) {
	svc, _ := seeded()
	o := place(t, svc, []CartLine{{ProductID: "p1", Quantity: 1}})

	_, err := svc.SetStatus(context.Background(), o.ID, StatusProcessing, Actor{ID: "u1"})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSetStatus_UnknownStatusAndOrder(t *testing.T) {
	svc, _ := seeded()
	o := place(t, svc, []CartLine{{ProductID: "p1", Quantity: 1}})

	_, err := svc.SetStatus(context.Background(), o.ID, Status("paid"), admin)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.SetStatus(context.Background(), "missing", StatusProcessing, admin)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "order", nf.Kind)
}

func TestQuoteCart(t *testing.T) {
	svc, _ := seeded()

	// under the free-shipping threshold
	q, err := svc.QuoteCart(context.Background(), []CartLine{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)
	assert.True(t, q.Subtotal.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, q.Tax.Equal(decimal.RequireFromString("2")))
	assert.True(t, q.Shipping.Equal(decimal.RequireFromString("5")))
	assert.True(t, q.Total.Equal(decimal.RequireFromString("27")))

	// over the threshold shipping is free
	q, err = svc.QuoteCart(context.Background(), []CartLine{{ProductID: "p1", Quantity: 6}})
	require.NoError(t, err)
	assert.True(t, q.Shipping.Equal(decimal.Zero))
	assert.True(t, q.Total.Equal(decimal.RequireFromString("66")))
}

func TestStats(t *testing.T) {
	svc, _ := seeded()
	o := place(t, svc, []CartLine{{ProductID: "p1", Quantity: 1}})
	for _, next := range []Status{StatusProcessing, StatusShipped, StatusCompleted} {
		_, err := svc.SetStatus(context.Background(), o.ID, next, admin)
		require.NoError(t, err)
	}
	place(t, svc, []CartLine{{ProductID: "p1", Quantity: 1}})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.CompletedOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("10.00")))
}
