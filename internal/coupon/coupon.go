package coupon

import "time"

const (
	TypePercent = "percent"
	TypeFixed   = "fixed"
)

type Coupon struct {
	ID           string     `json:"id"`
	Code         string     `json:"code"`
	DiscountType string     `json:"discount_type"`
	Value        int64      `json:"value"` // percent points, or cents for fixed
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	IsActive     bool       `json:"is_active"`
	UsageLimit   *int       `json:"usage_limit,omitempty"`
	UsedCount    int        `json:"used_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// Usable reports whether the coupon may be applied to a new cart.
// The usage limit is not checked here; it is consumed atomically inside
// the order transaction.
func (c *Coupon) Usable(now time.Time) bool {
	return c.IsActive && !c.Expired(now)
}
