package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	"github.com/ariefcatur/go-storefront.git/internal/coupon"
	"github.com/ariefcatur/go-storefront.git/internal/storage"
	"github.com/go-chi/chi/v5"
)

func (h *AdminHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage := pageParams(r, 20)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	products, total, err := h.Catalog.List(ctx, catalog.ListParams{
		Query:         q.Get("q"),
		CategorySlug:  q.Get("category"),
		Page:          page,
		PerPage:       perPage,
		IncludeHidden: true,
	})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "listing failed")
		return
	}
	writeJSON(w, http.StatusOK, productPage{Products: products, Total: total, Page: page, PerPage: perPage})
}

// productInput reads the multipart fields shared by create and update.
// Prices arrive as decimal strings ("19.99") and are stored as cents.
func productInput(r *http.Request) (catalog.ProductInput, error) {
	var in catalog.ProductInput
	in.Slug = r.FormValue("slug")
	in.Title = r.FormValue("title")
	in.Description = r.FormValue("description")
	if in.Slug == "" || in.Title == "" {
		return in, errors.New("slug and title are required")
	}

	price, err := parsePriceCents(r.FormValue("price"))
	if err != nil || price == nil {
		return in, errors.New("invalid price")
	}
	in.PriceCents = *price
	if in.DiscountedPriceCents, err = parsePriceCents(r.FormValue("discounted_price")); err != nil {
		return in, errors.New("invalid discounted price")
	}
	if v := r.FormValue("sku"); v != "" {
		in.SKU = &v
	}
	if in.Stock, err = strconv.Atoi(r.FormValue("stock")); err != nil || in.Stock < 0 {
		return in, errors.New("invalid stock")
	}
	in.IsActive = r.FormValue("is_active") == "true"
	in.IsFeatured = r.FormValue("is_featured") == "true"
	in.CategoryIDs = r.Form["category_ids"]
	return in, nil
}

func (h *AdminHandler) saveImages(r *http.Request, productID string, existing int) error {
	if r.MultipartForm == nil {
		return nil
	}
	for i, fh := range r.MultipartForm.File["images"] {
		if fh.Size > maxUploadBytes {
			return errors.New("image too large")
		}
		f, err := fh.Open()
		if err != nil {
			return err
		}
		path, err := h.Files.Save(storage.BucketProducts, fh.Filename, f)
		f.Close()
		if err != nil {
			return err
		}
		if _, err := h.Catalog.AddImage(r.Context(), productID, path, existing+i); err != nil {
			h.Files.DeleteAll([]string{path})
			return err
		}
	}
	return nil
}

func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 * maxUploadBytes); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid form")
		return
	}
	in, err := productInput(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	p, err := h.Catalog.Create(ctx, in)
	if errors.Is(err, catalog.ErrSlugTaken) {
		writeErr(w, http.StatusConflict, "slug already in use")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not create product")
		return
	}
	if err := h.saveImages(r.WithContext(ctx), p.ID, 0); err != nil {
		writeErr(w, http.StatusInternalServerError, "image upload failed")
		return
	}
	p, err = h.Catalog.ByID(ctx, p.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 * maxUploadBytes); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid form")
		return
	}
	in, err := productInput(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	p, err := h.Catalog.Update(ctx, id, in)
	if errors.Is(err, catalog.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	if errors.Is(err, catalog.ErrSlugTaken) {
		writeErr(w, http.StatusConflict, "slug already in use")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not update product")
		return
	}
	if err := h.saveImages(r.WithContext(ctx), id, len(p.Images)); err != nil {
		writeErr(w, http.StatusInternalServerError, "image upload failed")
		return
	}
	p, err = h.Catalog.ByID(ctx, id)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	paths, err := h.Catalog.Delete(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "delete failed")
		return
	}
	h.Files.DeleteAll(paths)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type categoryReq struct {
	Slug     string  `json:"slug"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

func (h *AdminHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Slug == "" || req.Name == "" {
		writeErr(w, http.StatusBadRequest, "slug and name are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Catalog.CreateCategory(ctx, catalog.CategoryInput{Slug: req.Slug, Name: req.Name, ParentID: req.ParentID})
	if errors.Is(err, catalog.ErrSlugTaken) {
		writeErr(w, http.StatusConflict, "slug already in use")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not create category")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *AdminHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Slug == "" || req.Name == "" {
		writeErr(w, http.StatusBadRequest, "slug and name are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Catalog.UpdateCategory(ctx, chi.URLParam(r, "id"),
		catalog.CategoryInput{Slug: req.Slug, Name: req.Name, ParentID: req.ParentID})
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	if errors.Is(err, catalog.ErrSlugTaken) {
		writeErr(w, http.StatusConflict, "slug already in use")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not update category")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *AdminHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Catalog.DeleteCategory(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "delete failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type adminCouponReq struct {
	Code         string     `json:"code"`
	DiscountType string     `json:"discount_type"`
	Value        int64      `json:"value"`
	ExpiresAt    *time.Time `json:"expires_at"`
	IsActive     bool       `json:"is_active"`
	UsageLimit   *int       `json:"usage_limit"`
}

func (req *adminCouponReq) validate() error {
	if req.Code == "" {
		return errors.New("code is required")
	}
	switch req.DiscountType {
	case coupon.TypePercent:
		if req.Value < 1 || req.Value > 100 {
			return errors.New("percent value must be between 1 and 100")
		}
	case coupon.TypeFixed:
		if req.Value < 1 {
			return errors.New("fixed value must be positive")
		}
	default:
		return errors.New("unknown discount type")
	}
	return nil
}

func (req *adminCouponReq) model() coupon.Coupon {
	return coupon.Coupon{
		Code:         req.Code,
		DiscountType: req.DiscountType,
		Value:        req.Value,
		ExpiresAt:    req.ExpiresAt,
		IsActive:     req.IsActive,
		UsageLimit:   req.UsageLimit,
	}
}

func (h *AdminHandler) listCoupons(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r, 20)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.Coupons.List(ctx, page, perPage)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "listing failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var req adminCouponReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := req.validate(); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Coupons.Create(ctx, req.model())
	if errors.Is(err, coupon.ErrCodeTaken) {
		writeErr(w, http.StatusConflict, "code already in use")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not create coupon")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *AdminHandler) updateCoupon(w http.ResponseWriter, r *http.Request) {
	var req adminCouponReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := req.validate(); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Coupons.Update(ctx, chi.URLParam(r, "id"), req.model())
	if errors.Is(err, coupon.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	if errors.Is(err, coupon.ErrCodeTaken) {
		writeErr(w, http.StatusConflict, "code already in use")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not update coupon")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *AdminHandler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Coupons.Delete(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, coupon.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "delete failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
