package wishlist

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	ProductID  string    `json:"product_id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	PriceCents int64     `json:"price_cents"`
	AddedAt    time.Time `json:"added_at"`
}

type Repo struct{ DB *pgxpool.Pool }

// Add is idempotent: a second add of the same (user, product) pair is a
// no-op.
func (r *Repo) Add(ctx context.Context, userID, productID string) error {
	_, err := r.DB.Exec(ctx, `INSERT INTO wishlists (user_id, product_id)
		VALUES ($1,$2) ON CONFLICT (user_id, product_id) DO NOTHING`, userID, productID)
	return err
}

// Remove is idempotent as well.
func (r *Repo) Remove(ctx context.Context, userID, productID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM wishlists WHERE user_id=$1 AND product_id=$2`, userID, productID)
	return err
}

func (r *Repo) List(ctx context.Context, userID string, page, perPage int) ([]Entry, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	rows, err := r.DB.Query(ctx, `
		SELECT w.product_id, p.title, p.slug, p.price_cents, w.created_at
		FROM wishlists w JOIN products p ON p.id = w.product_id
		WHERE w.user_id=$1 ORDER BY w.created_at DESC LIMIT $2 OFFSET $3`,
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ProductID, &e.Title, &e.Slug, &e.PriceCents, &e.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
