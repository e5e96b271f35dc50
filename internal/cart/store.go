package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// CouponSnapshot is the session copy of an applied coupon, taken when
// the code is applied so checkout does not depend on later coupon edits.
type CouponSnapshot struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	DiscountType string `json:"discount_type"`
	Value        int64  `json:"value"`
}

// Store keeps carts, coupon snapshots and pending payment-intent ids in
// Redis keyed by session id. Nothing here touches Postgres.
type Store struct {
	RDB *redis.Client
}

func (s *Store) Get(ctx context.Context, sessionID string) (Cart, error) {
	key := fmt.Sprintf(redisx.KeyCart, sessionID)
	data, err := s.RDB.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return c, nil
}

func (s *Store) Save(ctx context.Context, sessionID string, c Cart) error {
	key := fmt.Sprintf(redisx.KeyCart, sessionID)
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.RDB.Set(ctx, key, b, redisx.TTLCart).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf(redisx.KeyCart, sessionID)
	if err := s.RDB.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}

func (s *Store) SaveCoupon(ctx context.Context, sessionID string, snap CouponSnapshot) error {
	key := fmt.Sprintf(redisx.KeyCoupon, sessionID)
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal coupon: %w", err)
	}
	if err := s.RDB.Set(ctx, key, b, redisx.TTLCoupon).Err(); err != nil {
		return fmt.Errorf("redis set coupon: %w", err)
	}
	return nil
}

// Coupon returns nil when no coupon is applied in the session.
func (s *Store) Coupon(ctx context.Context, sessionID string) (*CouponSnapshot, error) {
	key := fmt.Sprintf(redisx.KeyCoupon, sessionID)
	data, err := s.RDB.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get coupon: %w", err)
	}
	var snap CouponSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal coupon: %w", err)
	}
	return &snap, nil
}

func (s *Store) ClearCoupon(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf(redisx.KeyCoupon, sessionID)
	if err := s.RDB.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del coupon: %w", err)
	}
	return nil
}

func (s *Store) SetPendingIntent(ctx context.Context, sessionID, intentID string) error {
	key := fmt.Sprintf(redisx.KeyPendingIntent, sessionID)
	if err := s.RDB.Set(ctx, key, intentID, redisx.TTLPendingIntent).Err(); err != nil {
		return fmt.Errorf("redis set pending intent: %w", err)
	}
	return nil
}

func (s *Store) PendingIntent(ctx context.Context, sessionID string) (string, error) {
	key := fmt.Sprintf(redisx.KeyPendingIntent, sessionID)
	v, err := s.RDB.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get pending intent: %w", err)
	}
	return v, nil
}

func (s *Store) ClearPendingIntent(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf(redisx.KeyPendingIntent, sessionID)
	if err := s.RDB.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del pending intent: %w", err)
	}
	return nil
}
