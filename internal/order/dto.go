package order

import "github.com/shopspring/decimal"

// PlaceOrderRequest payload de creación de orden.
// swagger:model PlaceOrderRequest
type PlaceOrderRequest struct {
	UserID          string     `json:"user_id" example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	Items           []CartLine `json:"items"`
	ShippingAddress string     `json:"shipping_address" example:"Av. Siempre Viva 742"`
	PaymentMethod   string     `json:"payment_method"   example:"credit_card"`
}

// UpdateStatusRequest payload de cambio de estado.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" example:"processing"`
}

// QuoteRequest payload de cotización de carrito.
// swagger:model QuoteRequest
type QuoteRequest struct {
	Items []CartLine `json:"items"`
}

// Quote is the cart display pricing. All derived values; never persisted.
// swagger:model Quote
type Quote struct {
	Lines    []PricedLine    `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}
