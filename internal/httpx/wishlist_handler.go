package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/wishlist"
	"github.com/go-chi/chi/v5"
)

type WishlistHandler struct {
	Repo  *wishlist.Repo
	Users UserGetter
}

func (h *WishlistHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.Users))
		r.Get("/wishlist", h.list)
		r.Post("/wishlist", h.add)
		r.Delete("/wishlist/{productID}", h.remove)
	})
}

func (h *WishlistHandler) list(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	page, perPage := pageParams(r, 20)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.Repo.List(ctx, sess.UserID, page, perPage)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "listing failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type wishlistReq struct {
	ProductID string `json:"product_id"`
}

func (h *WishlistHandler) add(w http.ResponseWriter, r *http.Request) {
	var req wishlistReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" {
		writeErr(w, http.StatusBadRequest, "product_id is required")
		return
	}

	sess := SessionFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Add(ctx, sess.UserID, req.ProductID); err != nil {
		writeErr(w, http.StatusInternalServerError, "could not add to wishlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

func (h *WishlistHandler) remove(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	sess := SessionFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Remove(ctx, sess.UserID, productID); err != nil {
		writeErr(w, http.StatusInternalServerError, "could not remove from wishlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
