package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

type ListParams struct {
	Query         string
	CategorySlug  string
	MinPriceCents *int64
	MaxPriceCents *int64
	Page          int
	PerPage       int
	IncludeHidden bool // admin listing sees inactive products too
}

const productCols = `p.id, p.slug, p.title, p.description, p.price_cents, p.discounted_price_cents,
	p.sku, p.stock, p.is_active, p.is_featured, p.created_at, p.updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.PriceCents, &p.DiscountedPriceCents,
		&p.SKU, &p.Stock, &p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List filters active products by free-text query (title/slug/description,
// case-insensitive substring), category slug and price bounds, in
// insertion order. Total is the unpaginated match count.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Product, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = 12
	}

	var conds []string
	var args []any
	if !params.IncludeHidden {
		conds = append(conds, "p.is_active = TRUE")
	}
	if params.Query != "" {
		args = append(args, "%"+params.Query+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.title ILIKE $%d OR p.slug ILIKE $%d OR p.description ILIKE $%d)", n, n, n))
	}
	if params.CategorySlug != "" {
		args = append(args, params.CategorySlug)
		conds = append(conds, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM product_categories pc JOIN categories c ON c.id = pc.category_id
			 WHERE pc.product_id = p.id AND c.slug = $%d)`, len(args)))
	}
	if params.MinPriceCents != nil {
		args = append(args, *params.MinPriceCents)
		conds = append(conds, fmt.Sprintf("p.price_cents >= $%d", len(args)))
	}
	if params.MaxPriceCents != nil {
		args = append(args, *params.MaxPriceCents)
		conds = append(conds, fmt.Sprintf("p.price_cents <= $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.PerPage, (params.Page-1)*params.PerPage)
	q := fmt.Sprintf(`SELECT %s FROM products p%s ORDER BY p.created_at, p.id LIMIT $%d OFFSET $%d`,
		productCols, where, len(args)-1, len(args))
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attach(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repo) BySlug(ctx context.Context, slug string) (*Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products p WHERE p.slug = $1`, slug)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	ps := []Product{p}
	if err := r.attach(ctx, ps); err != nil {
		return nil, err
	}
	return &ps[0], nil
}

func (r *Repo) ByID(ctx context.Context, id string) (*Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products p WHERE p.id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	ps := []Product{p}
	if err := r.attach(ctx, ps); err != nil {
		return nil, err
	}
	return &ps[0], nil
}

func (r *Repo) Featured(ctx context.Context, limit int) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products p
		WHERE p.is_active = TRUE AND p.is_featured = TRUE
		ORDER BY p.created_at, p.id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attach(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attach loads images, variants and categories for the given page of
// products in three queries instead of per-product round trips.
func (r *Repo) attach(ctx context.Context, ps []Product) error {
	if len(ps) == 0 {
		return nil
	}
	idx := make(map[string]*Product, len(ps))
	ids := make([]string, 0, len(ps))
	for i := range ps {
		idx[ps[i].ID] = &ps[i]
		ids = append(ids, ps[i].ID)
	}

	rows, err := r.DB.Query(ctx, `SELECT id, product_id, path, position FROM product_images
		WHERE product_id = ANY($1) ORDER BY product_id, position`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ProductID, &img.Path, &img.Position); err != nil {
			rows.Close()
			return err
		}
		if p, ok := idx[img.ProductID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.DB.Query(ctx, `SELECT id, product_id, name, price_delta_cents, stock FROM product_variants
		WHERE product_id = ANY($1) ORDER BY product_id, name`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.PriceDeltaCents, &v.Stock); err != nil {
			rows.Close()
			return err
		}
		if p, ok := idx[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.DB.Query(ctx, `SELECT pc.product_id, c.id, c.slug, c.name, c.parent_id
		FROM product_categories pc JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1) ORDER BY c.slug`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var pid string
		var c Category
		if err := rows.Scan(&pid, &c.ID, &c.Slug, &c.Name, &c.ParentID); err != nil {
			rows.Close()
			return err
		}
		if p, ok := idx[pid]; ok {
			p.Categories = append(p.Categories, c)
		}
	}
	rows.Close()
	return rows.Err()
}

type ProductInput struct {
	Slug                 string
	Title                string
	Description          string
	PriceCents           int64
	DiscountedPriceCents *int64
	SKU                  *string
	Stock                int
	IsActive             bool
	IsFeatured           bool
	CategoryIDs          []string
}

func (r *Repo) Create(ctx context.Context, in ProductInput) (*Product, error) {
	id := uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products (id, slug, title, description, price_cents, discounted_price_cents,
			sku, stock, is_active, is_featured)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		id, in.Slug, in.Title, in.Description, in.PriceCents, in.DiscountedPriceCents,
		in.SKU, in.Stock, in.IsActive, in.IsFeatured)
	if isUniqueViolation(err) {
		return nil, ErrSlugTaken
	}
	if err != nil {
		return nil, err
	}
	if err := r.SyncCategories(ctx, id, in.CategoryIDs); err != nil {
		return nil, err
	}
	return r.ByID(ctx, id)
}

func (r *Repo) Update(ctx context.Context, id string, in ProductInput) (*Product, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET slug=$2, title=$3, description=$4, price_cents=$5,
			discounted_price_cents=$6, sku=$7, stock=$8, is_active=$9, is_featured=$10, updated_at=now()
		WHERE id=$1`,
		id, in.Slug, in.Title, in.Description, in.PriceCents, in.DiscountedPriceCents,
		in.SKU, in.Stock, in.IsActive, in.IsFeatured)
	if isUniqueViolation(err) {
		return nil, ErrSlugTaken
	}
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	if in.CategoryIDs != nil {
		if err := r.SyncCategories(ctx, id, in.CategoryIDs); err != nil {
			return nil, err
		}
	}
	return r.ByID(ctx, id)
}

// SyncCategories replaces the product's category set with the given ids.
func (r *Repo) SyncCategories(ctx context.Context, productID string, categoryIDs []string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM product_categories WHERE product_id=$1`, productID); err != nil {
		return err
	}
	for _, cid := range categoryIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO product_categories (product_id, category_id)
			VALUES ($1,$2) ON CONFLICT DO NOTHING`, productID, cid); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repo) AddImage(ctx context.Context, productID, path string, position int) (*Image, error) {
	img := Image{ID: uuid.NewString(), ProductID: productID, Path: path, Position: position}
	_, err := r.DB.Exec(ctx, `INSERT INTO product_images (id, product_id, path, position)
		VALUES ($1,$2,$3,$4)`, img.ID, img.ProductID, img.Path, img.Position)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// Delete removes the product and returns the stored image paths so the
// caller can clean up files after the row is gone.
func (r *Repo) Delete(ctx context.Context, id string) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT path FROM product_images WHERE product_id=$1`, id)
	if err != nil {
		return nil, err
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return nil, err
		}
		paths = append(paths, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return paths, nil
}
