package orders

import "time"

type Order struct {
	ID              string    `json:"id"`
	UserID          *string   `json:"user_id,omitempty"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Address         string    `json:"address"`
	Status          Status    `json:"status"`
	PaymentMethod   string    `json:"payment_method"`
	PaymentIntentID *string   `json:"payment_intent_id,omitempty"`
	TotalCents      int64     `json:"total_cents"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Items           []Item    `json:"items,omitempty"`
}

type Item struct {
	ID            string `json:"id"`
	OrderID       string `json:"-"`
	ProductID     string `json:"product_id"`
	Title         string `json:"title"`
	Quantity      int    `json:"quantity"`
	PriceCents    int64  `json:"price_cents"`
	SubtotalCents int64  `json:"subtotal_cents"`
}

// NewItem is one line of an order about to be placed; price is the cart
// snapshot, not a catalog lookup.
type NewItem struct {
	ProductID  string
	Title      string
	Quantity   int
	PriceCents int64
}

type CreateParams struct {
	UserID          *string
	Name            string
	Email           string
	Address         string
	Status          Status
	PaymentMethod   string
	PaymentIntentID *string
	TotalCents      int64
	Items           []NewItem
	CouponID        *string // redeemed inside the same transaction when set
}
