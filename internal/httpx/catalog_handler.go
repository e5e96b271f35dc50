package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	"github.com/ariefcatur/go-storefront.git/internal/reviews"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CatalogReader interface {
	List(ctx context.Context, params catalog.ListParams) ([]catalog.Product, int, error)
	BySlug(ctx context.Context, slug string) (*catalog.Product, error)
	Featured(ctx context.Context, limit int) ([]catalog.Product, error)
	CategoryTree(ctx context.Context) ([]catalog.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (*catalog.Category, error)
}

type ReviewLister interface {
	ListByProduct(ctx context.Context, productID string) ([]reviews.Review, error)
}

type CatalogHandler struct {
	Catalog CatalogReader
	Reviews ReviewLister
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/home", h.home)
	r.Get("/products", h.listProducts)
	r.Get("/products/{slug}", h.showProduct)
	r.Get("/categories", h.listCategories)
	r.Get("/categories/{slug}", h.showCategory)
}

// home bundles what the storefront landing page needs in one request.
func (h *CatalogHandler) home(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	featured, err := h.Catalog.Featured(ctx, 8)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	tree, err := h.Catalog.CategoryTree(ctx)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"featured": featured, "categories": tree})
}

// parsePriceCents turns a query value like "19.99" into cents; nil when
// absent, error when malformed.
func parsePriceCents(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return &cents, nil
}

type productPage struct {
	Products []catalog.Product `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PerPage  int               `json:"per_page"`
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minPrice, err := parsePriceCents(q.Get("min_price"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid min_price")
		return
	}
	maxPrice, err := parsePriceCents(q.Get("max_price"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid max_price")
		return
	}
	page, perPage := pageParams(r, 12)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	products, total, err := h.Catalog.List(ctx, catalog.ListParams{
		Query:         q.Get("q"),
		CategorySlug:  q.Get("category"),
		MinPriceCents: minPrice,
		MaxPriceCents: maxPrice,
		Page:          page,
		PerPage:       perPage,
	})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "listing failed")
		return
	}
	writeJSON(w, http.StatusOK, productPage{Products: products, Total: total, Page: page, PerPage: perPage})
}

func (h *CatalogHandler) showProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Catalog.BySlug(ctx, slug)
	if errors.Is(err, catalog.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	revs, err := h.Reviews.ListByProduct(ctx, p.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": p, "reviews": revs})
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tree, err := h.Catalog.CategoryTree(ctx)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "listing failed")
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (h *CatalogHandler) showCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	page, perPage := pageParams(r, 12)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Catalog.CategoryBySlug(ctx, slug)
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	products, total, err := h.Catalog.List(ctx, catalog.ListParams{
		CategorySlug: slug,
		Page:         page,
		PerPage:      perPage,
	})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "listing failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": c,
		"products": productPage{Products: products, Total: total, Page: page, PerPage: perPage},
	})
}
