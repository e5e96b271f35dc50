package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	"github.com/ariefcatur/go-storefront.git/internal/reviews"
	"github.com/ariefcatur/go-storefront.git/internal/storage"
	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 5 << 20 // per review image

type ReviewsHandler struct {
	Reviews *reviews.Repo
	Catalog *catalog.Repo
	Files   *storage.Disk
	Users   UserGetter
}

func (h *ReviewsHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.Users))
		r.Post("/products/{slug}/reviews", h.create)
	})
}

// create accepts multipart form data: rating, optional comment, optional
// image files under "images".
func (h *ReviewsHandler) create(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := r.ParseMultipartForm(4 * maxUploadBytes); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid form")
		return
	}
	rating, err := strconv.Atoi(r.FormValue("rating"))
	if err != nil || rating < 1 || rating > 5 {
		writeErr(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	var comment *string
	if v := r.FormValue("comment"); v != "" {
		comment = &v
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
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

	var paths []string
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			if fh.Size > maxUploadBytes {
				writeErr(w, http.StatusBadRequest, "image too large")
				return
			}
			f, err := fh.Open()
			if err != nil {
				writeErr(w, http.StatusBadRequest, "invalid upload")
				return
			}
			path, err := h.Files.Save(storage.BucketReviews, fh.Filename, f)
			f.Close()
			if err != nil {
				writeErr(w, http.StatusInternalServerError, "upload failed")
				return
			}
			paths = append(paths, path)
		}
	}

	sess := SessionFrom(r.Context())
	rev, err := h.Reviews.Create(ctx, p.ID, sess.UserID, rating, comment, paths)
	if err != nil {
		h.Files.DeleteAll(paths)
		writeErr(w, http.StatusInternalServerError, "could not save review")
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}
