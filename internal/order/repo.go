package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error)
	Transition(ctx context.Context, id string, from, to Status) error
	Stats(ctx context.Context) (*Stats, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// Create reserves stock and writes the order plus its items in a single
// transaction: either every decrement and every row commits, or nothing
// does. The conditional decrement is what keeps quantity >= 0 under
// concurrent placements.
func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return &PersistenceError{Op: "begin place order", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Ascending product id gives a deterministic lock order, so two
	// placements touching overlapping product sets cannot deadlock.
	items := append([]Item(nil), o.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	for _, it := range items {
		tag, err := tx.Exec(ctx, `
			UPDATE products
			SET quantity = quantity - $2, updated_at = NOW()
			WHERE id = $1 AND quantity >= $2
		`, it.ProductID, it.Quantity)
		if err != nil {
			return &PersistenceError{Op: "reserve stock", Err: err}
		}
		if tag.RowsAffected() == 0 {
			var available int
			err := tx.QueryRow(ctx, `SELECT quantity FROM products WHERE id=$1`, it.ProductID).Scan(&available)
			if errors.Is(err, pgx.ErrNoRows) {
				return &NotFoundError{Kind: "product", ID: it.ProductID}
			}
			if err != nil {
				return &PersistenceError{Op: "reserve stock", Err: err}
			}
			return &InsufficientStockError{ProductID: it.ProductID, Requested: it.Quantity, Available: available}
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, status, total_amount, shipping_address, payment_method, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
	`, o.ID, o.UserID, string(o.Status), o.TotalAmount, o.ShippingAddress, o.PaymentMethod, o.CreatedAt); err != nil {
		return &PersistenceError{Op: "insert order", Err: err}
	}
	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5)
		`, it.ID, o.ID, it.ProductID, it.Quantity, it.UnitPrice); err != nil {
			return &PersistenceError{Op: "insert order item", Err: err}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return &PersistenceError{Op: "commit place order", Err: err}
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	var status, total string
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, status, total_amount::text, shipping_address, payment_method, created_at, updated_at
		FROM orders WHERE id=$1
	`, id).Scan(&o.ID, &o.UserID, &status, &total, &o.ShippingAddress, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get order", Err: err}
	}
	o.Status = Status(status)
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, &PersistenceError{Op: "get order", Err: err}
	}

	rows, err := r.db.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, COALESCE(p.name,''), i.quantity, i.unit_price::text
		FROM order_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.order_id=$1
	`, id)
	if err != nil {
		return nil, &PersistenceError{Op: "get order items", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		var price string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &price); err != nil {
			return nil, &PersistenceError{Op: "get order items", Err: err}
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, &PersistenceError{Op: "get order items", Err: err}
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "get order items", Err: err}
	}
	return &o, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, status, total_amount::text, shipping_address, payment_method, created_at, updated_at
		FROM orders WHERE user_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, &PersistenceError{Op: "list orders", Err: err}
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var o Order
		var status, total string
		if err := rows.Scan(&o.ID, &o.UserID, &status, &total, &o.ShippingAddress, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, &PersistenceError{Op: "list orders", Err: err}
		}
		o.Status = Status(status)
		if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
			return nil, &PersistenceError{Op: "list orders", Err: err}
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Transition commits a validated status change. The update is guarded by the
// expected current status, so a concurrent transition that won the race makes
// it miss and everything rolls back, restock included. Stock release on
// cancellation rides the same transaction: all items restored or none.
func (r *PGRepo) Transition(ctx context.Context, id string, from, to Status) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return &PersistenceError{Op: "begin transition", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE orders SET status=$3, updated_at=NOW()
		WHERE id=$1 AND status=$2
	`, id, string(from), string(to))
	if err != nil {
		return &PersistenceError{Op: "update status", Err: err}
	}
	if tag.RowsAffected() == 0 {
		var current string
		err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return &PersistenceError{Op: "update status", Err: err}
		}
		return &InvalidTransitionError{From: Status(current), To: to}
	}

	if to == StatusCancelled {
		if err := restockItems(ctx, tx, id); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &PersistenceError{Op: "commit transition", Err: err}
	}
	return nil
}

func restockItems(ctx context.Context, tx pgx.Tx, orderID string) error {
	rows, err := tx.Query(ctx, `
		SELECT product_id, quantity FROM order_items
		WHERE order_id=$1 ORDER BY product_id
	`, orderID)
	if err != nil {
		return &PersistenceError{Op: "load items for restock", Err: err}
	}
	type line struct {
		productID string
		quantity  int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.quantity); err != nil {
			rows.Close()
			return &PersistenceError{Op: "load items for restock", Err: err}
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return &PersistenceError{Op: "load items for restock", Err: err}
	}

	for _, l := range lines {
		tag, err := tx.Exec(ctx, `
			UPDATE products SET quantity = quantity + $2, updated_at = NOW()
			WHERE id = $1
		`, l.productID, l.quantity)
		if err != nil {
			return &PersistenceError{Op: "restock", Err: err}
		}
		if tag.RowsAffected() == 0 {
			return &PersistenceError{Op: "restock", Err: fmt.Errorf("product %s missing", l.productID)}
		}
	}
	return nil
}

func (r *PGRepo) Stats(ctx context.Context) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s Stats
	var revenue string
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status='pending'),
		       COUNT(*) FILTER (WHERE status='processing'),
		       COUNT(*) FILTER (WHERE status='shipped'),
		       COUNT(*) FILTER (WHERE status='completed'),
		       COUNT(*) FILTER (WHERE status='cancelled'),
		       COALESCE(SUM(total_amount) FILTER (WHERE status='completed'), 0)::text
		FROM orders
	`).Scan(&s.TotalOrders, &s.PendingOrders, &s.ProcessingOrders, &s.ShippedOrders,
		&s.CompletedOrders, &s.CancelledOrders, &revenue)
	if err != nil {
		return nil, &PersistenceError{Op: "order stats", Err: err}
	}
	if s.TotalRevenue, err = decimal.NewFromString(revenue); err != nil {
		return nil, &PersistenceError{Op: "order stats", Err: err}
	}
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE quantity < 10`).Scan(&s.LowStockProducts); err != nil {
		return nil, &PersistenceError{Op: "order stats", Err: err}
	}
	return &s, nil
}
