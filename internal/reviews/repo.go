package reviews

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

type Review struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name,omitempty"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	ImagePaths []string  `json:"image_paths,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, productID, userID string, rating int, comment *string, imagePaths []string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rev := Review{
		ID:         uuid.NewString(),
		ProductID:  productID,
		UserID:     userID,
		Rating:     rating,
		Comment:    comment,
		ImagePaths: imagePaths,
	}
	err = tx.QueryRow(ctx, `INSERT INTO reviews (id, product_id, user_id, rating, comment)
		VALUES ($1,$2,$3,$4,$5) RETURNING created_at`,
		rev.ID, rev.ProductID, rev.UserID, rev.Rating, rev.Comment).Scan(&rev.CreatedAt)
	if err != nil {
		return nil, err
	}
	for _, p := range imagePaths {
		if _, err := tx.Exec(ctx, `INSERT INTO review_images (id, review_id, path) VALUES ($1,$2,$3)`,
			uuid.NewString(), rev.ID, p); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &rev, nil
}

// ListByProduct returns reviews newest-first with reviewer names and
// attached image paths.
func (r *Repo) ListByProduct(ctx context.Context, productID string) ([]Review, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT rv.id, rv.product_id, rv.user_id, u.name, rv.rating, rv.comment, rv.created_at
		FROM reviews rv JOIN users u ON u.id = rv.user_id
		WHERE rv.product_id=$1 ORDER BY rv.created_at DESC, rv.id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	ids := []string{}
	for rows.Next() {
		var rev Review
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.UserName, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rev)
		ids = append(ids, rev.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	imgRows, err := r.DB.Query(ctx, `SELECT review_id, path FROM review_images WHERE review_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer imgRows.Close()
	paths := map[string][]string{}
	for imgRows.Next() {
		var rid, path string
		if err := imgRows.Scan(&rid, &path); err != nil {
			return nil, err
		}
		paths[rid] = append(paths[rid], path)
	}
	if err := imgRows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].ImagePaths = paths[out[i].ID]
	}
	return out, nil
}
