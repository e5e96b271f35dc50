package redisx

import "time"

const (
	// Session cart: cart:{session_id} -> JSON map of line key -> line
	KeyCart = "cart:%s"

	// Applied coupon snapshot: coupon:{session_id} -> JSON {id, code, type, value}
	KeyCoupon = "coupon:%s"

	// Pending card payment: intent:{session_id} -> payment_intent_id
	KeyPendingIntent = "intent:%s"
)

var (
	TTLCart          = 7 * 24 * time.Hour
	TTLCoupon        = 7 * 24 * time.Hour
	TTLPendingIntent = 1 * time.Hour
)
