package checkout

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/coupon"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/payment"
	"github.com/ariefcatur/go-storefront.git/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(store *mockStore, ledger *mockLedger, pay *mockPayments) (*Service, *mockMailer, *mockEvents) {
	m := &mockMailer{}
	ev := &mockEvents{}
	return &Service{
		Ledger:     ledger,
		Store:      store,
		Payments:   pay,
		Mailer:     m,
		Events:     ev,
		AdminEmail: "admin@shop.test",
		Service:    "storefront-test",
	}, m, ev
}

func guestSession() *session.Session {
	return &session.Session{ID: "sess-1"}
}

func validInput(method string) Input {
	return Input{
		Name:          "Ada Lovelace",
		Email:         "ada@example.com",
		Address:       "12 Engine St",
		PaymentMethod: method,
		TraceID:       "trace-1",
	}
}

func twentyDollarMugs(qty int) cart.Cart {
	c := cart.Cart{}
	c.Add(cart.Line{ProductID: "p1", Title: "Mug", PriceCents: 2000, Quantity: qty})
	return c
}

func TestProcess_CashOnDelivery(t *testing.T) {
	store := &mockStore{Cart: twentyDollarMugs(3)}
	ledger := &mockLedger{}
	svc, m, ev := newService(store, ledger, &mockPayments{})

	res, err := svc.Process(context.Background(), guestSession(), validInput("cod"))

	require.NoError(t, err)
	require.NotNil(t, res.Order)
	assert.Empty(t, res.ClientSecret)
	assert.Equal(t, orders.StatusPending, res.Order.Status)
	assert.Equal(t, int64(6000), res.Order.TotalCents)
	require.Len(t, res.Order.Items, 1)
	assert.Equal(t, 3, res.Order.Items[0].Quantity)
	assert.Nil(t, ledger.Created.UserID)
	assert.Nil(t, ledger.Created.PaymentIntentID)

	assert.True(t, store.CartCleared)
	assert.True(t, store.CouponCleared)
	// customer plus admin confirmation
	require.Len(t, m.Sent, 2)
	assert.Equal(t, "ada@example.com", m.Sent[0].To)
	assert.Equal(t, "admin@shop.test", m.Sent[1].To)
	assert.Len(t, ev.Values, 1)
}

func TestProcess_LoggedInUserOnOrder(t *testing.T) {
	store := &mockStore{Cart: twentyDollarMugs(1)}
	ledger := &mockLedger{}
	svc, _, _ := newService(store, ledger, &mockPayments{})

	sess := &session.Session{ID: "sess-1", UserID: "user-7"}
	_, err := svc.Process(context.Background(), sess, validInput("cod"))

	require.NoError(t, err)
	require.NotNil(t, ledger.Created.UserID)
	assert.Equal(t, "user-7", *ledger.Created.UserID)
}

func TestProcess_CouponApplied(t *testing.T) {
	store := &mockStore{
		Cart: twentyDollarMugs(3),
		Snap: &cart.CouponSnapshot{ID: "c1", Code: "SAVE10", DiscountType: coupon.TypePercent, Value: 10},
	}
	ledger := &mockLedger{}
	svc, _, _ := newService(store, ledger, &mockPayments{})

	res, err := svc.Process(context.Background(), guestSession(), validInput("cod"))

	require.NoError(t, err)
	assert.Equal(t, int64(5400), res.Order.TotalCents)
	require.NotNil(t, ledger.Created.CouponID)
	assert.Equal(t, "c1", *ledger.Created.CouponID)
}

func TestProcess_EmptyCart(t *testing.T) {
	svc, m, ev := newService(&mockStore{Cart: cart.Cart{}}, &mockLedger{}, &mockPayments{})

	_, err := svc.Process(context.Background(), guestSession(), validInput("cod"))

	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Empty(t, m.Sent)
	assert.Empty(t, ev.Values)
}

func TestProcess_InvalidInput(t *testing.T) {
	svc, _, _ := newService(&mockStore{Cart: twentyDollarMugs(1)}, &mockLedger{}, &mockPayments{})

	in := validInput("cod")
	in.Email = "not-an-email"
	_, err := svc.Process(context.Background(), guestSession(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = validInput("cod")
	in.Address = ""
	_, err = svc.Process(context.Background(), guestSession(), in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProcess_InsufficientStockPropagates(t *testing.T) {
	store := &mockStore{Cart: twentyDollarMugs(99)}
	svc, m, ev := newService(store, &mockLedger{Err: orders.ErrInsufficientStock}, &mockPayments{})

	_, err := svc.Process(context.Background(), guestSession(), validInput("cod"))

	assert.ErrorIs(t, err, orders.ErrInsufficientStock)
	assert.False(t, store.CartCleared)
	assert.Empty(t, m.Sent)
	assert.Empty(t, ev.Values)
}

func TestProcess_CardPathDefersOrder(t *testing.T) {
	store := &mockStore{Cart: twentyDollarMugs(3)}
	ledger := &mockLedger{}
	pay := &mockPayments{Intent: payment.Intent{ID: "pi_1", ClientSecret: "pi_1_secret"}}
	svc, m, ev := newService(store, ledger, pay)

	res, err := svc.Process(context.Background(), guestSession(), validInput(PaymentMethodCard))

	require.NoError(t, err)
	assert.Nil(t, res.Order)
	assert.Equal(t, "pi_1_secret", res.ClientSecret)
	assert.Equal(t, int64(6000), pay.AmountCents)
	assert.Equal(t, "pi_1", store.Pending)
	assert.Nil(t, ledger.Created)
	assert.False(t, store.CartCleared)
	assert.Empty(t, m.Sent)
	assert.Empty(t, ev.Values)
}

func TestConfirm_CreatesProcessingOrder(t *testing.T) {
	store := &mockStore{Cart: twentyDollarMugs(2), Pending: "pi_1"}
	ledger := &mockLedger{}
	svc, _, ev := newService(store, ledger, &mockPayments{})

	o, err := svc.Confirm(context.Background(), guestSession(), "pi_1", validInput(""))

	require.NoError(t, err)
	assert.Equal(t, orders.StatusProcessing, o.Status)
	assert.Equal(t, int64(4000), o.TotalCents)
	assert.Equal(t, PaymentMethodCard, o.PaymentMethod)
	require.NotNil(t, o.PaymentIntentID)
	assert.Equal(t, "pi_1", *o.PaymentIntentID)
	assert.True(t, store.PendingCleared)
	assert.True(t, store.CartCleared)
	assert.Len(t, ev.Values, 1)
}

func TestConfirm_IntentMismatch(t *testing.T) {
	store := &mockStore{Cart: twentyDollarMugs(1), Pending: "pi_1"}
	ledger := &mockLedger{}
	svc, _, _ := newService(store, ledger, &mockPayments{})

	_, err := svc.Confirm(context.Background(), guestSession(), "pi_2", validInput(""))
	assert.ErrorIs(t, err, ErrIntentMismatch)

	_, err = svc.Confirm(context.Background(), guestSession(), "", validInput(""))
	assert.ErrorIs(t, err, ErrIntentMismatch)

	assert.Nil(t, ledger.Created)
	assert.False(t, store.PendingCleared)
}

func TestConfirm_CouponExhaustedPropagates(t *testing.T) {
	store := &mockStore{
		Cart:    twentyDollarMugs(1),
		Snap:    &cart.CouponSnapshot{ID: "c1", Code: "LAST1", DiscountType: coupon.TypeFixed, Value: 500},
		Pending: "pi_1",
	}
	svc, _, _ := newService(store, &mockLedger{Err: orders.ErrCouponExhausted}, &mockPayments{})

	_, err := svc.Confirm(context.Background(), guestSession(), "pi_1", validInput(""))

	assert.ErrorIs(t, err, orders.ErrCouponExhausted)
	assert.False(t, store.PendingCleared)
	assert.False(t, store.CartCleared)
}
