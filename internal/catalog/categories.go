package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrSlugTaken        = errors.New("slug already in use")
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CategoryTree returns all categories with children nested one level
// under their parents.
func (r *Repo) CategoryTree(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, slug, name, parent_id FROM categories ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.ParentID); err != nil {
			return nil, err
		}
		all = append(all, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byID := make(map[string]*Category, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}
	var roots []Category
	for i := range all {
		if all[i].ParentID != nil {
			if parent, ok := byID[*all[i].ParentID]; ok {
				parent.Children = append(parent.Children, all[i])
				continue
			}
		}
		roots = append(roots, all[i])
	}
	// Children were appended to the backing slice entries; re-read roots
	// so nested children survive.
	out := make([]Category, 0, len(roots))
	for _, root := range roots {
		out = append(out, *byID[root.ID])
	}
	return out, nil
}

func (r *Repo) CategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	var c Category
	err := r.DB.QueryRow(ctx, `SELECT id, slug, name, parent_id FROM categories WHERE slug=$1`, slug).
		Scan(&c.ID, &c.Slug, &c.Name, &c.ParentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type CategoryInput struct {
	Slug     string
	Name     string
	ParentID *string
}

func (r *Repo) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	c := Category{ID: uuid.NewString(), Slug: in.Slug, Name: in.Name, ParentID: in.ParentID}
	_, err := r.DB.Exec(ctx, `INSERT INTO categories (id, slug, name, parent_id) VALUES ($1,$2,$3,$4)`,
		c.ID, c.Slug, c.Name, c.ParentID)
	if isUniqueViolation(err) {
		return nil, ErrSlugTaken
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*Category, error) {
	ct, err := r.DB.Exec(ctx, `UPDATE categories SET slug=$2, name=$3, parent_id=$4 WHERE id=$1`,
		id, in.Slug, in.Name, in.ParentID)
	if isUniqueViolation(err) {
		return nil, ErrSlugTaken
	}
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrCategoryNotFound
	}
	return &Category{ID: id, Slug: in.Slug, Name: in.Name, ParentID: in.ParentID}, nil
}

func (r *Repo) DeleteCategory(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
