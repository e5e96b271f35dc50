package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	"github.com/ariefcatur/go-storefront.git/internal/reviews"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCatalogReader struct {
	Products map[string]*catalog.Product
}

func (m *mockCatalogReader) List(_ context.Context, _ catalog.ListParams) ([]catalog.Product, int, error) {
	return nil, 0, nil
}

func (m *mockCatalogReader) BySlug(_ context.Context, slug string) (*catalog.Product, error) {
	p, ok := m.Products[slug]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

func (m *mockCatalogReader) Featured(_ context.Context, _ int) ([]catalog.Product, error) {
	return nil, nil
}

func (m *mockCatalogReader) CategoryTree(_ context.Context) ([]catalog.Category, error) {
	return nil, nil
}

func (m *mockCatalogReader) CategoryBySlug(_ context.Context, _ string) (*catalog.Category, error) {
	return nil, catalog.ErrCategoryNotFound
}

type mockReviewLister struct{}

func (m *mockReviewLister) ListByProduct(_ context.Context, _ string) ([]reviews.Review, error) {
	return nil, nil
}

func catalogRouter(products map[string]*catalog.Product) *chi.Mux {
	r := chi.NewRouter()
	h := &CatalogHandler{Catalog: &mockCatalogReader{Products: products}, Reviews: &mockReviewLister{}}
	h.Register(r)
	return r
}

// Detail by slug serves the product even when it is unlisted; only the
// public listing filters on is_active.
func TestShowProduct_InactiveStillServed(t *testing.T) {
	r := catalogRouter(map[string]*catalog.Product{
		"old-mug": {ID: "p1", Slug: "old-mug", Title: "Old Mug", PriceCents: 1500, IsActive: false},
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/old-mug", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Product catalog.Product `json:"product"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "old-mug", got.Product.Slug)
	assert.False(t, got.Product.IsActive)
}

func TestShowProduct_UnknownSlug(t *testing.T) {
	r := catalogRouter(map[string]*catalog.Product{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
