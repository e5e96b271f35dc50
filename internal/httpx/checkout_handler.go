package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/checkout"
	"github.com/ariefcatur/go-storefront.git/internal/coupon"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	Svc     *checkout.Service
	Store   *cart.Store
	Coupons *coupon.Repo
}

func (h *CheckoutHandler) Register(r *chi.Mux) {
	r.Get("/checkout", h.show)
	r.Post("/checkout/coupon", h.applyCoupon)
	r.Post("/checkout", h.process)
	r.Post("/checkout/confirm", h.confirm)
}

func (h *CheckoutHandler) show(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Store.Get(ctx, sess.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "cart unavailable")
		return
	}
	if len(c) == 0 {
		writeErr(w, http.StatusBadRequest, "cart is empty")
		return
	}
	snap, err := h.Store.Coupon(ctx, sess.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "cart unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lines":       c,
		"total_cents": c.TotalCents(),
		"coupon":      snap,
	})
}

type couponReq struct {
	Code string `json:"code"`
}

func (h *CheckoutHandler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Code == "" {
		writeErr(w, http.StatusBadRequest, "code is required")
		return
	}

	sess := SessionFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cp, err := h.Coupons.ByCode(ctx, req.Code)
	if errors.Is(err, coupon.ErrNotFound) {
		writeErr(w, http.StatusBadRequest, "invalid or expired coupon")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "coupon lookup failed")
		return
	}
	if !cp.Usable(time.Now()) {
		writeErr(w, http.StatusBadRequest, "invalid or expired coupon")
		return
	}

	snap := cart.CouponSnapshot{ID: cp.ID, Code: cp.Code, DiscountType: cp.DiscountType, Value: cp.Value}
	if err := h.Store.SaveCoupon(ctx, sess.ID, snap); err != nil {
		writeErr(w, http.StatusInternalServerError, "could not apply coupon")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type checkoutReq struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method"`
}

func (h *CheckoutHandler) process(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	sess := SessionFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Svc.Process(ctx, sess, checkout.Input{
		Name:          req.Name,
		Email:         req.Email,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		TraceID:       r.Header.Get("X-Request-Id"),
	})
	if err != nil {
		writeCheckoutErr(w, err)
		return
	}
	if res.ClientSecret != "" {
		writeJSON(w, http.StatusOK, map[string]string{"client_secret": res.ClientSecret})
		return
	}
	writeJSON(w, http.StatusCreated, res.Order)
}

type confirmReq struct {
	PaymentIntent string `json:"payment_intent"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

func (h *CheckoutHandler) confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	sess := SessionFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Svc.Confirm(ctx, sess, req.PaymentIntent, checkout.Input{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		TraceID: r.Header.Get("X-Request-Id"),
	})
	if err != nil {
		writeCheckoutErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// writeCheckoutErr maps orchestrator errors to responses. Transactional
// failures stay generic toward the client; the cause is in the log.
func writeCheckoutErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrCartEmpty):
		writeErr(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, checkout.ErrInvalidInput):
		writeErr(w, http.StatusBadRequest, "missing or invalid checkout fields")
	case errors.Is(err, checkout.ErrIntentMismatch):
		writeErr(w, http.StatusBadRequest, "payment could not be verified")
	case errors.Is(err, orders.ErrInsufficientStock):
		writeErr(w, http.StatusConflict, "insufficient stock")
	case errors.Is(err, orders.ErrCouponExhausted):
		writeErr(w, http.StatusConflict, "coupon usage limit reached")
	default:
		writeErr(w, http.StatusInternalServerError, "could not create order")
	}
}
