package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBlocked            = errors.New("account is blocked")
)

type Repo struct{ DB *pgxpool.Pool }

const cols = `id, name, email, password_hash, phone, role, is_blocked, created_at, updated_at, deleted_at`

func scan(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role,
		&u.IsBlocked, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	return u, err
}

func (r *Repo) Register(ctx context.Context, name, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	_, err = r.DB.Exec(ctx, `INSERT INTO users (id, name, email, password_hash) VALUES ($1,$2,$3,$4)`,
		id, name, email, string(hash))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return r.ByID(ctx, id)
}

// Authenticate checks credentials and account state; blocked and
// soft-deleted accounts cannot log in.
func (r *Repo) Authenticate(ctx context.Context, email, password string) (*User, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+cols+` FROM users WHERE email=$1 AND deleted_at IS NULL`, email)
	u, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if u.IsBlocked {
		return nil, ErrBlocked
	}
	return &u, nil
}

func (r *Repo) ByID(ctx context.Context, id string) (*User, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+cols+` FROM users WHERE id=$1 AND deleted_at IS NULL`, id)
	u, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type ProfileUpdate struct {
	Name     string
	Email    string
	Phone    *string
	Password string // empty = keep current hash
}

func (r *Repo) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*User, error) {
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		_, err = r.DB.Exec(ctx, `UPDATE users SET name=$2, email=$3, phone=$4, password_hash=$5, updated_at=now()
			WHERE id=$1 AND deleted_at IS NULL`, id, in.Name, in.Email, in.Phone, string(hash))
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		if err != nil {
			return nil, err
		}
	} else {
		_, err := r.DB.Exec(ctx, `UPDATE users SET name=$2, email=$3, phone=$4, updated_at=now()
			WHERE id=$1 AND deleted_at IS NULL`, id, in.Name, in.Email, in.Phone)
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		if err != nil {
			return nil, err
		}
	}
	return r.ByID(ctx, id)
}

func (r *Repo) List(ctx context.Context, page, perPage int) ([]User, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	rows, err := r.DB.Query(ctx, `SELECT `+cols+` FROM users WHERE deleted_at IS NULL
		ORDER BY created_at, id LIMIT $1 OFFSET $2`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateRole(ctx context.Context, id, role string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE users SET role=$2, updated_at=now() WHERE id=$1 AND deleted_at IS NULL`, id, role)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleBlock flips is_blocked and returns the new value.
func (r *Repo) ToggleBlock(ctx context.Context, id string) (bool, error) {
	var blocked bool
	err := r.DB.QueryRow(ctx, `UPDATE users SET is_blocked = NOT is_blocked, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL RETURNING is_blocked`, id).Scan(&blocked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	return blocked, err
}

func (r *Repo) SoftDelete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE users SET deleted_at=now() WHERE id=$1 AND deleted_at IS NULL`, id)
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
