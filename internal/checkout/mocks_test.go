package checkout

import (
	"context"

	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/payment"
	kafkago "github.com/segmentio/kafka-go"
)

// mockLedger implements OrderLedger; it captures the params and echoes
// them back as a persisted order.
type mockLedger struct {
	Created *orders.CreateParams
	Err     error
}

func (m *mockLedger) CreateOrderTx(_ context.Context, p orders.CreateParams) (*orders.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Created = &p
	o := &orders.Order{
		ID:              "ord-1",
		UserID:          p.UserID,
		Name:            p.Name,
		Email:           p.Email,
		Address:         p.Address,
		Status:          p.Status,
		PaymentMethod:   p.PaymentMethod,
		PaymentIntentID: p.PaymentIntentID,
		TotalCents:      p.TotalCents,
	}
	for i, it := range p.Items {
		o.Items = append(o.Items, orders.Item{
			ID:         string(rune('a' + i)),
			OrderID:    o.ID,
			ProductID:  it.ProductID,
			Title:      it.Title,
			Quantity:   it.Quantity,
			PriceCents: it.PriceCents,
		})
	}
	return o, nil
}

// mockStore implements SessionStore backed by plain fields.
type mockStore struct {
	Cart    cart.Cart
	Snap    *cart.CouponSnapshot
	Pending string

	CartCleared    bool
	CouponCleared  bool
	PendingCleared bool
}

func (m *mockStore) Get(_ context.Context, _ string) (cart.Cart, error) { return m.Cart, nil }

func (m *mockStore) Clear(_ context.Context, _ string) error {
	m.CartCleared = true
	return nil
}

func (m *mockStore) Coupon(_ context.Context, _ string) (*cart.CouponSnapshot, error) {
	return m.Snap, nil
}

func (m *mockStore) ClearCoupon(_ context.Context, _ string) error {
	m.CouponCleared = true
	return nil
}

func (m *mockStore) SetPendingIntent(_ context.Context, _, intentID string) error {
	m.Pending = intentID
	return nil
}

func (m *mockStore) PendingIntent(_ context.Context, _ string) (string, error) {
	return m.Pending, nil
}

func (m *mockStore) ClearPendingIntent(_ context.Context, _ string) error {
	m.PendingCleared = true
	return nil
}

type mockPayments struct {
	Intent payment.Intent
	Err    error

	AmountCents int64
}

func (m *mockPayments) CreateIntent(_ context.Context, amountCents int64, _ string) (*payment.Intent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.AmountCents = amountCents
	return &m.Intent, nil
}

type sentMail struct {
	To      string
	Subject string
}

type mockMailer struct {
	Sent []sentMail
}

func (m *mockMailer) Send(to, subject, _ string) error {
	m.Sent = append(m.Sent, sentMail{To: to, Subject: subject})
	return nil
}

type mockEvents struct {
	Keys   [][]byte
	Values [][]byte
}

func (m *mockEvents) Publish(key, value []byte, _ ...kafkago.Header) {
	m.Keys = append(m.Keys, key)
	m.Values = append(m.Values, value)
}
