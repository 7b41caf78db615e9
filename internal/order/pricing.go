package order

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jmoralesq/tienda-orders/internal/catalog"
)

// CartLine is a transient, client-held line. It only exists for the duration
// of a placement request and is never persisted.
type CartLine struct {
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"   example:"2"`
}

type PricedLine struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

var (
	taxRate      = decimal.NewFromFloat(0.10)
	freeShipOver = decimal.NewFromInt(50)
	flatShipFee  = decimal.NewFromInt(5)
)

// PriceCart prices every line against the current catalog snapshot. It is
// pure: no stock is touched. The returned subtotal becomes the order's
// frozen total_amount; tax and shipping never enter it.
func PriceCart(ctx context.Context, cat catalog.Reader, lines []CartLine) ([]PricedLine, decimal.Decimal, error) {
	if len(lines) == 0 {
		return nil, decimal.Zero, &ValidationError{Reason: "items are required"}
	}
	priced := make([]PricedLine, 0, len(lines))
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.ProductID == "" {
			return nil, decimal.Zero, &ValidationError{Reason: "product_id is required"}
		}
		if l.Quantity < 1 {
			return nil, decimal.Zero, &ValidationError{Reason: "quantity must be at least 1"}
		}
		p, err := cat.GetByID(ctx, l.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, decimal.Zero, &NotFoundError{Kind: "product", ID: l.ProductID}
			}
			return nil, decimal.Zero, &PersistenceError{Op: "price cart", Err: err}
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		priced = append(priced, PricedLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    l.Quantity,
			UnitPrice:   p.Price,
			LineTotal:   lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	return priced, subtotal, nil
}

// Tax is the flat 10% rate, derived at display time only.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate)
}

// ShippingFee is the cart display rule: free over $50, flat fee otherwise.
// Derived at display time only.
func ShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(freeShipOver) {
		return decimal.Zero
	}
	return flatShipFee
}
