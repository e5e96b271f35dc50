package checkout

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/coupon"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/mailer"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/payment"
	"github.com/ariefcatur/go-storefront.git/internal/session"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

var (
	ErrCartEmpty      = errors.New("cart is empty")
	ErrInvalidInput   = errors.New("missing or invalid checkout fields")
	ErrIntentMismatch = errors.New("payment intent does not match this session")
)

// PaymentMethodCard is the method value that goes through the provider;
// anything else (cash on delivery, bank transfer) creates the order
// synchronously.
const PaymentMethodCard = "stripe"

const currency = "usd"

type OrderLedger interface {
	CreateOrderTx(ctx context.Context, p orders.CreateParams) (*orders.Order, error)
}

type SessionStore interface {
	Get(ctx context.Context, sessionID string) (cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
	Coupon(ctx context.Context, sessionID string) (*cart.CouponSnapshot, error)
	ClearCoupon(ctx context.Context, sessionID string) error
	SetPendingIntent(ctx context.Context, sessionID, intentID string) error
	PendingIntent(ctx context.Context, sessionID string) (string, error)
	ClearPendingIntent(ctx context.Context, sessionID string) error
}

type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service turns a session cart plus an optional coupon snapshot into a
// persisted order. Everything inside the ledger call is one transaction;
// email and the placed event run after commit and never fail the order.
type Service struct {
	Ledger     OrderLedger
	Store      SessionStore
	Payments   payment.IntentCreator
	Mailer     mailer.Mailer
	Events     EventPublisher
	AdminEmail string
	Service    string
}

type Input struct {
	Name          string
	Email         string
	Address       string
	PaymentMethod string
	TraceID       string
}

func (in Input) validate() error {
	if in.Name == "" || in.Address == "" || in.PaymentMethod == "" {
		return ErrInvalidInput
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return ErrInvalidInput
	}
	return nil
}

type Result struct {
	Order *orders.Order `json:"order,omitempty"`
	// ClientSecret is set only on the card path; the browser confirms
	// the intent with it and the order is created by Confirm.
	ClientSecret string `json:"client_secret,omitempty"`
}

// totalCents sums the snapshotted line prices and applies the session
// coupon. Snapshots, not fresh catalog prices: a price change after
// add-to-cart resolves in the customer's favor.
func totalCents(c cart.Cart, snap *cart.CouponSnapshot) int64 {
	total := c.TotalCents()
	if snap != nil {
		total = coupon.ApplyDiscount(total, snap.DiscountType, snap.Value)
	}
	return total
}

func newItems(c cart.Cart) []orders.NewItem {
	items := make([]orders.NewItem, 0, len(c))
	for _, l := range c {
		items = append(items, orders.NewItem{
			ProductID:  l.ProductID,
			Title:      l.Title,
			Quantity:   l.Quantity,
			PriceCents: l.PriceCents,
		})
	}
	return items
}

// Process handles POST /checkout. The card path stops after creating a
// payment intent; the order itself is written by Confirm once the
// client reports the payment done.
func (s *Service) Process(ctx context.Context, sess *session.Session, in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.Store.Get(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return nil, ErrCartEmpty
	}
	snap, err := s.Store.Coupon(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	total := totalCents(c, snap)

	if in.PaymentMethod == PaymentMethodCard {
		intent, err := s.Payments.CreateIntent(ctx, total, currency)
		if err != nil {
			return nil, err
		}
		if err := s.Store.SetPendingIntent(ctx, sess.ID, intent.ID); err != nil {
			return nil, err
		}
		return &Result{ClientSecret: intent.ClientSecret}, nil
	}

	o, err := s.createOrder(ctx, sess, c, snap, in, orders.StatusPending, nil, total)
	if err != nil {
		return nil, err
	}
	return &Result{Order: o}, nil
}

// Confirm finalizes a card checkout. The intent id must match the one
// this session created; the cart is re-read and re-summed from the
// session, independently of the amount the intent was opened for.
func (s *Service) Confirm(ctx context.Context, sess *session.Session, intentID string, in Input) (*orders.Order, error) {
	if intentID == "" {
		return nil, ErrIntentMismatch
	}
	pending, err := s.Store.PendingIntent(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if pending == "" || pending != intentID {
		return nil, ErrIntentMismatch
	}
	in.PaymentMethod = PaymentMethodCard
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.Store.Get(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return nil, ErrCartEmpty
	}
	snap, err := s.Store.Coupon(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	total := totalCents(c, snap)

	o, err := s.createOrder(ctx, sess, c, snap, in, orders.StatusProcessing, &intentID, total)
	if err != nil {
		return nil, err
	}
	if err := s.Store.ClearPendingIntent(ctx, sess.ID); err != nil {
		log.Printf("clear pending intent: %v", err)
	}
	return o, nil
}

func (s *Service) createOrder(ctx context.Context, sess *session.Session, c cart.Cart,
	snap *cart.CouponSnapshot, in Input, status orders.Status, intentID *string, total int64) (*orders.Order, error) {

	var userID *string
	if sess.LoggedIn() {
		uid := sess.UserID
		userID = &uid
	}
	var couponID *string
	if snap != nil {
		cid := snap.ID
		couponID = &cid
	}

	o, err := s.Ledger.CreateOrderTx(ctx, orders.CreateParams{
		UserID:          userID,
		Name:            in.Name,
		Email:           in.Email,
		Address:         in.Address,
		Status:          status,
		PaymentMethod:   in.PaymentMethod,
		PaymentIntentID: intentID,
		TotalCents:      total,
		Items:           newItems(c),
		CouponID:        couponID,
	})
	if err != nil {
		return nil, err
	}

	s.notify(o, in.TraceID)

	if err := s.Store.Clear(ctx, sess.ID); err != nil {
		log.Printf("clear cart after order %s: %v", o.ID, err)
	}
	if err := s.Store.ClearCoupon(ctx, sess.ID); err != nil {
		log.Printf("clear coupon after order %s: %v", o.ID, err)
	}
	return o, nil
}

// notify sends confirmation email and publishes the placed event.
// Both are best-effort: failures are logged and swallowed.
func (s *Service) notify(o *orders.Order, traceID string) {
	subject, body := mailer.OrderConfirmation(o)
	if err := s.Mailer.Send(o.Email, subject, body); err != nil {
		log.Printf("order %s: customer email: %v", o.ID, err)
	}
	if s.AdminEmail != "" {
		if err := s.Mailer.Send(s.AdminEmail, subject, body); err != nil {
			log.Printf("order %s: admin email: %v", o.ID, err)
		}
	}

	items := make([]orders.PlacedItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orders.PlacedItem{ProductID: it.ProductID, Qty: it.Quantity, PriceCents: it.PriceCents})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Service,
		TraceID:       traceID,
		CorrelationID: o.ID,
	}
	ev.Payload = kafkax.MustMarshal(orders.OrderPlacedPayload{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Email:         o.Email,
		PaymentMethod: o.PaymentMethod,
		Items:         items,
		TotalCents:    o.TotalCents,
	})
	s.Events.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
