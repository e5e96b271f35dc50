package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/users"
	"github.com/go-chi/chi/v5"
)

type OrdersReader interface {
	ByID(ctx context.Context, id string) (*orders.Order, error)
	ListByUser(ctx context.Context, userID string, page, perPage int) ([]orders.Order, error)
}

type OrdersHandler struct {
	Repo  OrdersReader
	Users UserGetter
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.Users))
		r.Get("/orders", h.list)
		r.Get("/orders/{id}", h.show)
	})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	page, perPage := pageParams(r, 20)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.Repo.ListByUser(ctx, sess.UserID, page, perPage)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "listing failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// show is restricted to the order's owner or an account that can manage
// the store; everyone else gets a hard denial even for valid ids.
func (h *OrdersHandler) show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u := UserFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.ByID(ctx, id)
	if errors.Is(err, orders.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	owner := o.UserID != nil && *o.UserID == u.ID
	if !owner && !u.Can(users.CapManageStore) {
		writeErr(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, o)
}
