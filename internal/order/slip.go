package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jmoralesq/tienda-orders/internal/user"
)

type SlipCustomer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address"`
}

type SlipItem struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

type SlipTotals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Slip is the customer-facing summary of an order. Recomputed on demand and
// never stored; repeated calls yield identical totals.
// swagger:model Slip
type Slip struct {
	OrderID       string       `json:"order_id"`
	OrderDate     time.Time    `json:"order_date"`
	Customer      SlipCustomer `json:"customer"`
	Items         []SlipItem   `json:"items"`
	Totals        SlipTotals   `json:"totals"`
	PaymentMethod string       `json:"payment_method"`
	Status        Status       `json:"status"`
}

func BuildSlip(o *Order, u *user.User) *Slip {
	items := make([]SlipItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, SlipItem{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
	}
	tax := Tax(o.TotalAmount)
	return &Slip{
		OrderID:   o.ID,
		OrderDate: o.CreatedAt,
		Customer: SlipCustomer{
			Name:    u.Name,
			Email:   u.Email,
			Phone:   u.Phone,
			Address: o.ShippingAddress,
		},
		Items: items,
		Totals: SlipTotals{
			Subtotal:   o.TotalAmount,
			Tax:        tax,
			GrandTotal: o.TotalAmount.Add(tax),
		},
		PaymentMethod: o.PaymentMethod,
		Status:        o.Status,
	}
}
