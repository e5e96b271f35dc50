package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	Catalog *catalog.Repo
	Store   *cart.Store
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/cart", h.show)
	r.Post("/cart/items", h.add)
	r.Put("/cart/items/{key}", h.update)
	r.Delete("/cart/items/{key}", h.remove)
	r.Delete("/cart", h.clear)
}

type cartView struct {
	Lines      cart.Cart `json:"lines"`
	TotalCents int64     `json:"total_cents"`
}

func (h *CartHandler) show(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Store.Get(ctx, sess.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "cart unavailable")
		return
	}
	writeJSON(w, http.StatusOK, cartView{Lines: c, TotalCents: c.TotalCents()})
}

type addReq struct {
	ProductID string  `json:"product_id"`
	VariantID *string `json:"variant_id,omitempty"`
	Quantity  int     `json:"quantity"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req addReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" {
		writeErr(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		writeErr(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	sess := SessionFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Catalog.ByID(ctx, req.ProductID)
	if errors.Is(err, catalog.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if !p.IsActive {
		writeErr(w, http.StatusNotFound, "product not found")
		return
	}
	if req.VariantID != nil {
		found := false
		for _, v := range p.Variants {
			if v.ID == *req.VariantID {
				found = true
				break
			}
		}
		if !found {
			writeErr(w, http.StatusNotFound, "variant not found")
			return
		}
	}

	// Snapshot title/price/image now; render and checkout use these, not
	// a fresh catalog read.
	var image *string
	if len(p.Images) > 0 {
		image = &p.Images[0].Path
	}
	line := cart.Line{
		ProductID:  p.ID,
		VariantID:  req.VariantID,
		Title:      p.Title,
		PriceCents: p.UnitPriceCents(),
		Quantity:   req.Quantity,
		Image:      image,
	}

	c, err := h.Store.Get(ctx, sess.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "cart unavailable")
		return
	}
	c.Add(line)
	if err := h.Store.Save(ctx, sess.ID, c); err != nil {
		writeErr(w, http.StatusInternalServerError, "cart unavailable")
		return
	}
	writeJSON(w, http.StatusOK, cartView{Lines: c, TotalCents: c.TotalCents()})
}

type updateReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req updateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Quantity < 1 {
		writeErr(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	sess := SessionFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Store.Get(ctx, sess.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "cart unavailable")
		return
	}
	if err := c.Update(key, req.Quantity); errors.Is(err, cart.ErrLineNotFound) {
		writeErr(w, http.StatusNotFound, "item not found")
		return
	}
	if err := h.Store.Save(ctx, sess.ID, c); err != nil {
		writeErr(w, http.StatusInternalServerError, "cart unavailable")
		return
	}
	writeJSON(w, http.StatusOK, cartView{Lines: c, TotalCents: c.TotalCents()})
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	sess := SessionFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Store.Get(ctx, sess.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "cart unavailable")
		return
	}
	c.Remove(key)
	if err := h.Store.Save(ctx, sess.ID, c); err != nil {
		writeErr(w, http.StatusInternalServerError, "cart unavailable")
		return
	}
	writeJSON(w, http.StatusOK, cartView{Lines: c, TotalCents: c.TotalCents()})
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Store.Clear(ctx, sess.ID); err != nil {
		writeErr(w, http.StatusInternalServerError, "cart unavailable")
		return
	}
	writeJSON(w, http.StatusOK, cartView{Lines: cart.Cart{}, TotalCents: 0})
}
