package coupon

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("coupon not found")
	ErrCodeTaken = errors.New("coupon code already in use")
)

type Repo struct{ DB *pgxpool.Pool }

const cols = `id, code, discount_type, value, expires_at, is_active, usage_limit, used_count, created_at, updated_at`

func scan(row pgx.Row) (Coupon, error) {
	var c Coupon
	err := row.Scan(&c.ID, &c.Code, &c.DiscountType, &c.Value, &c.ExpiresAt, &c.IsActive,
		&c.UsageLimit, &c.UsedCount, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repo) ByCode(ctx context.Context, code string) (*Coupon, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+cols+` FROM coupons WHERE code=$1`, strings.ToUpper(code))
	c, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) List(ctx context.Context, page, perPage int) ([]Coupon, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	rows, err := r.DB.Query(ctx, `SELECT `+cols+` FROM coupons ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Coupon
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, c Coupon) (*Coupon, error) {
	c.ID = uuid.NewString()
	c.Code = strings.ToUpper(c.Code)
	_, err := r.DB.Exec(ctx, `
		INSERT INTO coupons (id, code, discount_type, value, expires_at, is_active, usage_limit)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.Code, c.DiscountType, c.Value, c.ExpiresAt, c.IsActive, c.UsageLimit)
	if isUniqueViolation(err) {
		return nil, ErrCodeTaken
	}
	if err != nil {
		return nil, err
	}
	return r.ByCode(ctx, c.Code)
}

func (r *Repo) Update(ctx context.Context, id string, c Coupon) (*Coupon, error) {
	c.Code = strings.ToUpper(c.Code)
	ct, err := r.DB.Exec(ctx, `
		UPDATE coupons SET code=$2, discount_type=$3, value=$4, expires_at=$5, is_active=$6,
			usage_limit=$7, updated_at=now()
		WHERE id=$1`,
		id, c.Code, c.DiscountType, c.Value, c.ExpiresAt, c.IsActive, c.UsageLimit)
	if isUniqueViolation(err) {
		return nil, ErrCodeTaken
	}
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.ByCode(ctx, c.Code)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM coupons WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
