package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/session"
	"github.com/ariefcatur/go-storefront.git/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrdersReader struct {
	Orders map[string]*orders.Order
	ByUser []orders.Order
}

func (m *mockOrdersReader) ByID(_ context.Context, id string) (*orders.Order, error) {
	o, ok := m.Orders[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	return o, nil
}

func (m *mockOrdersReader) ListByUser(_ context.Context, _ string, _, _ int) ([]orders.Order, error) {
	return m.ByUser, nil
}

type mockUserGetter struct {
	Users map[string]*users.User
}

func (m *mockUserGetter) ByID(_ context.Context, id string) (*users.User, error) {
	u, ok := m.Users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

// withTestSession injects the session the cookie middleware would have
// resolved in production.
func withTestSession(s *session.Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeySession, s)))
		})
	}
}

func ordersRouter(t *testing.T, sess *session.Session, repo OrdersReader) *chi.Mux {
	t.Helper()
	getter := &mockUserGetter{Users: map[string]*users.User{
		"owner-1": {ID: "owner-1", Role: users.RoleCustomer},
		"other-1": {ID: "other-1", Role: users.RoleCustomer},
		"admin-1": {ID: "admin-1", Role: users.RoleAdmin},
	}}
	r := chi.NewRouter()
	r.Use(withTestSession(sess))
	h := &OrdersHandler{Repo: repo, Users: getter}
	h.Register(r)
	return r
}

func ownedOrder() *orders.Order {
	owner := "owner-1"
	return &orders.Order{ID: "ord-1", UserID: &owner, Email: "owner@example.com", TotalCents: 4200}
}

func TestShowOrder_Owner(t *testing.T) {
	repo := &mockOrdersReader{Orders: map[string]*orders.Order{"ord-1": ownedOrder()}}
	r := ordersRouter(t, &session.Session{ID: "s1", UserID: "owner-1"}, repo)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/ord-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got orders.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "ord-1", got.ID)
	assert.Equal(t, int64(4200), got.TotalCents)
}

func TestShowOrder_NonOwnerForbidden(t *testing.T) {
	repo := &mockOrdersReader{Orders: map[string]*orders.Order{"ord-1": ownedOrder()}}
	r := ordersRouter(t, &session.Session{ID: "s1", UserID: "other-1"}, repo)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/ord-1", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestShowOrder_AdminAllowed(t *testing.T) {
	repo := &mockOrdersReader{Orders: map[string]*orders.Order{"ord-1": ownedOrder()}}
	r := ordersRouter(t, &session.Session{ID: "s1", UserID: "admin-1"}, repo)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/ord-1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestShowOrder_GuestUnauthorized(t *testing.T) {
	repo := &mockOrdersReader{Orders: map[string]*orders.Order{"ord-1": ownedOrder()}}
	r := ordersRouter(t, &session.Session{ID: "s1"}, repo)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/ord-1", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestShowOrder_NotFound(t *testing.T) {
	repo := &mockOrdersReader{Orders: map[string]*orders.Order{}}
	r := ordersRouter(t, &session.Session{ID: "s1", UserID: "owner-1"}, repo)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrders_OwnOnly(t *testing.T) {
	owner := "owner-1"
	repo := &mockOrdersReader{ByUser: []orders.Order{
		{ID: "ord-1", UserID: &owner},
		{ID: "ord-2", UserID: &owner},
	}}
	r := ordersRouter(t, &session.Session{ID: "s1", UserID: "owner-1"}, repo)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []orders.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got, 2)
}
