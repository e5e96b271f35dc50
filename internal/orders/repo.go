package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCouponExhausted   = errors.New("coupon usage limit reached")
)

type Repo struct{ DB *pgxpool.Pool }

// CreateOrderTx persists the order, its items, the per-product stock
// decrements and the coupon redemption in one transaction. Stock rows
// are locked FOR UPDATE and a shortfall aborts the whole order, so
// concurrent checkouts cannot oversell.
func (r *Repo) CreateOrderTx(ctx context.Context, p CreateParams) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderID := uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, name, email, address, status, payment_method, payment_intent_id, total_cents)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		orderID, p.UserID, p.Name, p.Email, p.Address, string(p.Status), p.PaymentMethod, p.PaymentIntentID, p.TotalCents)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(p.Items))
	for _, it := range p.Items {
		var stock int
		err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, it.ProductID).Scan(&stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		if stock < it.Quantity {
			return nil, ErrInsufficientStock
		}
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`,
			it.ProductID, it.Quantity); err != nil {
			return nil, err
		}

		item := Item{
			ID:            uuid.NewString(),
			OrderID:       orderID,
			ProductID:     it.ProductID,
			Title:         it.Title,
			Quantity:      it.Quantity,
			PriceCents:    it.PriceCents,
			SubtotalCents: it.PriceCents * int64(it.Quantity),
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, title, quantity, price_cents, subtotal_cents)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			item.ID, item.OrderID, item.ProductID, item.Title, item.Quantity, item.PriceCents, item.SubtotalCents); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if p.CouponID != nil {
		ct, err := tx.Exec(ctx, `
			UPDATE coupons SET used_count = used_count + 1, updated_at = now()
			WHERE id = $1 AND (usage_limit IS NULL OR used_count < usage_limit)`, *p.CouponID)
		if err != nil {
			return nil, err
		}
		if ct.RowsAffected() == 0 {
			return nil, ErrCouponExhausted
		}
	}

	var o Order
	err = tx.QueryRow(ctx, `SELECT id, user_id, name, email, address, status, payment_method,
		payment_intent_id, total_cents, created_at, updated_at FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.UserID, &o.Name, &o.Email, &o.Address, &o.Status, &o.PaymentMethod,
			&o.PaymentIntentID, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Items = items

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

const orderCols = `id, user_id, name, email, address, status, payment_method, payment_intent_id, total_cents, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Name, &o.Email, &o.Address, &o.Status, &o.PaymentMethod,
		&o.PaymentIntentID, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *Repo) ByID(ctx context.Context, id string) (*Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `SELECT id, order_id, product_id, title, quantity, price_cents, subtotal_cents
		FROM order_items WHERE order_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Title, &it.Quantity, &it.PriceCents, &it.SubtotalCents); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string, page, perPage int) ([]Order, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	rows, err := r.DB.Query(ctx, `SELECT `+orderCols+` FROM orders
		WHERE user_id=$1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListAll is the admin view, optionally filtered by status.
func (r *Repo) ListAll(ctx context.Context, status string, page, perPage int) ([]Order, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}
	q := `SELECT ` + orderCols + ` FROM orders`
	args := []any{}
	if status != "" {
		q += ` WHERE status=$1`
		args = append(args, status)
	}
	args = append(args, perPage, (page-1)*perPage)
	if status != "" {
		q += ` ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`
	} else {
		q += ` ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	}

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateStatus(ctx context.Context, id string, status Status) error {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, id, string(status))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type DashboardStats struct {
	DeliveredSalesCents int64        `json:"delivered_sales_cents"`
	UserCount           int          `json:"user_count"`
	TopProducts         []TopProduct `json:"top_products"`
}

type TopProduct struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	TimesSold int    `json:"times_sold"`
}

func (r *Repo) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	err := r.DB.QueryRow(ctx, `SELECT COALESCE(SUM(total_cents), 0) FROM orders WHERE status=$1`,
		string(StatusDelivered)).Scan(&stats.DeliveredSalesCents)
	if err != nil {
		return nil, err
	}
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&stats.UserCount); err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.title, COUNT(oi.id) AS times_sold
		FROM products p JOIN order_items oi ON oi.product_id = p.id
		GROUP BY p.id, p.title ORDER BY times_sold DESC, p.id LIMIT 6`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Title, &tp.TimesSold); err != nil {
			return nil, err
		}
		stats.TopProducts = append(stats.TopProducts, tp)
	}
	return &stats, rows.Err()
}
