// Package catalog provides the repository interface and PostgreSQL
// implementation for products and categories. Stock decrements backing
// order placement live in the order repository so they share the order
// transaction; every other quantity mutation goes through SetQuantity.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

type Query struct {
	Q          string
	CategoryID string
	LowStock   bool
	Limit      int
	Offset     int
}

// Reader is the read-only lookup the order core prices against.
type Reader interface {
	GetByID(ctx context.Context, id string) (*Product, error)
}

type Repository interface {
	Reader
	List(ctx context.Context, q Query) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product, updatePrice bool) error
	Delete(ctx context.Context, id string) (bool, error)
	SetQuantity(ctx context.Context, id string, quantity int) error

	ListCategories(ctx context.Context, search string) ([]Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Product
	var price string
	err := r.db.QueryRow(ctx, `
		SELECT id, name, slug, description, price::text, quantity,
		       COALESCE(category_id::text, ''), created_at, updated_at
		FROM products WHERE id=$1
	`, id).Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &price, &p.Quantity,
		&p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	search := strings.TrimSpace(q.Q)

	rows, err := r.db.Query(ctx, `
		SELECT id, name, slug, description, price::text, quantity,
		       COALESCE(category_id::text, ''), created_at, updated_at
		FROM products
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')
		  AND ($2 = '' OR category_id::text = $2)
		  AND (NOT $3 OR quantity < 10)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, search, q.CategoryID, q.LowStock, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		var price string
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &price, &p.Quantity,
			&p.CategoryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, slug, description, price, quantity, category_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,'')::uuid,NOW(),NOW())
	`, p.ID, p.Name, p.Slug, p.Description, p.Price, p.Quantity, p.CategoryID)
	return err
}

func (r *PGRepo) Update(ctx context.Context, p *Product, updatePrice bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if updatePrice {
		_, err := r.db.Exec(ctx, `
			UPDATE products
			SET name = COALESCE(NULLIF($2,''), name),
			    slug = COALESCE(NULLIF($3,''), slug),
			    description = COALESCE(NULLIF($4,''), description),
			    price = $5,
			    category_id = COALESCE(NULLIF($6,'')::uuid, category_id),
			    updated_at = NOW()
			WHERE id = $1
		`, p.ID, p.Name, p.Slug, p.Description, p.Price, p.CategoryID)
		return err
	}

	_, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = COALESCE(NULLIF($2,''), name),
		    slug = COALESCE(NULLIF($3,''), slug),
		    description = COALESCE(NULLIF($4,''), description),
		    category_id = COALESCE(NULLIF($5,'')::uuid, category_id),
		    updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Name, p.Slug, p.Description, p.CategoryID)
	return err
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// SetQuantity is the admin inventory edit: an absolute write, not a delta.
// Reservation and restock deltas are applied by the order repository inside
// the order transaction.
func (r *PGRepo) SetQuantity(ctx context.Context, id string, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE products SET quantity = $2, updated_at = NOW() WHERE id = $1
	`, id, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ListCategories(ctx context.Context, search string) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, slug, description, created_at, updated_at
		FROM categories
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')
		ORDER BY name
	`, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) CreateCategory(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO categories (id, name, slug, description, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NOW(),NOW())
	`, c.ID, c.Name, c.Slug, c.Description)
	return err
}

func (r *PGRepo) UpdateCategory(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE categories
		SET name = COALESCE(NULLIF($2,''), name),
		    slug = COALESCE(NULLIF($3,''), slug),
		    description = COALESCE(NULLIF($4,''), description),
		    updated_at = NOW()
		WHERE id = $1
	`, c.ID, c.Name, c.Slug, c.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *PGRepo) DeleteCategory(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
