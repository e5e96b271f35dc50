package cart

import (
	"errors"
	"fmt"
)

var ErrLineNotFound = errors.New("cart line not found")

// Line is a session-held snapshot of one product(+variant). Title, price
// and image are denormalized at add time so rendering the cart does not
// touch the catalog again; the price snapshot is also what checkout sums.
type Line struct {
	ProductID  string  `json:"product_id"`
	VariantID  *string `json:"variant_id,omitempty"`
	Title      string  `json:"title"`
	PriceCents int64   `json:"price_cents"`
	Quantity   int     `json:"quantity"`
	Image      *string `json:"image,omitempty"`
}

func (l Line) SubtotalCents() int64 {
	return l.PriceCents * int64(l.Quantity)
}

// Cart maps line key -> line. Key is product_id, or product_id:variant_id
// when a variant was chosen.
type Cart map[string]Line

func LineKey(productID string, variantID *string) string {
	if variantID != nil && *variantID != "" {
		return fmt.Sprintf("%s:%s", productID, *variantID)
	}
	return productID
}

// Add coalesces into an existing line when the same key is present,
// otherwise inserts the snapshot as a new line.
func (c Cart) Add(l Line) {
	key := LineKey(l.ProductID, l.VariantID)
	if existing, ok := c[key]; ok {
		existing.Quantity += l.Quantity
		c[key] = existing
		return
	}
	c[key] = l
}

func (c Cart) Update(key string, quantity int) error {
	l, ok := c[key]
	if !ok {
		return ErrLineNotFound
	}
	l.Quantity = quantity
	c[key] = l
	return nil
}

// Remove is a no-op when the key is absent.
func (c Cart) Remove(key string) {
	delete(c, key)
}

func (c Cart) TotalCents() int64 {
	var total int64
	for _, l := range c {
		total += l.SubtotalCents()
	}
	return total
}
