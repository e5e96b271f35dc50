package coupon

import "github.com/shopspring/decimal"

// ApplyDiscount returns the total after the discount, in cents.
// Percent coupons scale the total and are never clamped; fixed coupons
// subtract their value and floor at zero.
func ApplyDiscount(totalCents int64, discountType string, value int64) int64 {
	switch discountType {
	case TypePercent:
		total := decimal.NewFromInt(totalCents)
		factor := decimal.NewFromInt(1).Sub(decimal.NewFromInt(value).Div(decimal.NewFromInt(100)))
		return total.Mul(factor).Round(0).IntPart()
	case TypeFixed:
		out := totalCents - value
		if out < 0 {
			return 0
		}
		return out
	default:
		return totalCents
	}
}
