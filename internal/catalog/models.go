package catalog

import "time"

type Product struct {
	ID                   string     `json:"id"`
	Slug                 string     `json:"slug"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	PriceCents           int64      `json:"price_cents"`
	DiscountedPriceCents *int64     `json:"discounted_price_cents,omitempty"`
	SKU                  *string    `json:"sku,omitempty"`
	Stock                int        `json:"stock"`
	IsActive             bool       `json:"is_active"`
	IsFeatured           bool       `json:"is_featured"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	Images               []Image    `json:"images,omitempty"`
	Variants             []Variant  `json:"variants,omitempty"`
	Categories           []Category `json:"categories,omitempty"`
}

// UnitPriceCents is the price a cart snapshot takes: the discounted
// price when one is set, the list price otherwise.
func (p *Product) UnitPriceCents() int64 {
	if p.DiscountedPriceCents != nil {
		return *p.DiscountedPriceCents
	}
	return p.PriceCents
}

type Image struct {
	ID        string `json:"id"`
	ProductID string `json:"-"`
	Path      string `json:"path"`
	Position  int    `json:"position"`
}

type Variant struct {
	ID              string `json:"id"`
	ProductID       string `json:"-"`
	Name            string `json:"name"`
	PriceDeltaCents int64  `json:"price_delta_cents"`
	Stock           int    `json:"stock"`
}

type Category struct {
	ID       string     `json:"id"`
	Slug     string     `json:"slug"`
	Name     string     `json:"name"`
	ParentID *string    `json:"parent_id,omitempty"`
	Children []Category `json:"children,omitempty"`
}
