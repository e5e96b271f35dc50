package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestRepo(t *testing.T) (*Repo, func()) {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:16-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("testuser"),
		pgcontainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%d/testdb?sslmode=disable", host, port.Int())
	require.NoError(t, postgres.Migrate(dsn, "../../migrations"))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return &Repo{DB: pool}, cleanup
}

func seedProduct(t *testing.T, db *pgxpool.Pool, title string, priceCents int64, stock int) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(context.Background(), `
		INSERT INTO products (id, slug, title, price_cents, stock)
		VALUES ($1,$2,$3,$4,$5)`, id, title+"-"+id[:8], title, priceCents, stock)
	require.NoError(t, err)
	return id
}

func seedCoupon(t *testing.T, db *pgxpool.Pool, usageLimit, usedCount int) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(context.Background(), `
		INSERT INTO coupons (id, code, discount_type, value, usage_limit, used_count)
		VALUES ($1,$2,'percent',10,$3,$4)`, id, "SAVE10-"+id[:8], usageLimit, usedCount)
	require.NoError(t, err)
	return id
}

func productStock(t *testing.T, db *pgxpool.Pool, id string) int {
	t.Helper()
	var stock int
	require.NoError(t, db.QueryRow(context.Background(),
		`SELECT stock FROM products WHERE id=$1`, id).Scan(&stock))
	return stock
}

func countRows(t *testing.T, db *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestCreateOrderTx_PersistsOrderItemsStockAndCoupon(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	mugID := seedProduct(t, repo.DB, "mug", 1500, 10)
	teeID := seedProduct(t, repo.DB, "tee", 2500, 5)
	couponID := seedCoupon(t, repo.DB, 5, 0)

	o, err := repo.CreateOrderTx(ctx, CreateParams{
		Name:          "Ana",
		Email:         "ana@example.com",
		Address:       "1 Main St",
		Status:        StatusPending,
		PaymentMethod: "cod",
		TotalCents:    4950,
		Items: []NewItem{
			{ProductID: mugID, Title: "mug", Quantity: 2, PriceCents: 1500},
			{ProductID: teeID, Title: "tee", Quantity: 1, PriceCents: 2500},
		},
		CouponID: &couponID,
	})
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, int64(3000), o.Items[0].SubtotalCents)

	assert.Equal(t, 8, productStock(t, repo.DB, mugID))
	assert.Equal(t, 4, productStock(t, repo.DB, teeID))
	assert.Equal(t, 2, countRows(t, repo.DB, "order_items"))

	var usedCount int
	require.NoError(t, repo.DB.QueryRow(ctx,
		`SELECT used_count FROM coupons WHERE id=$1`, couponID).Scan(&usedCount))
	assert.Equal(t, 1, usedCount)
}

// A stock shortfall on the second line must undo the whole checkout:
// no order row, no item rows, first line's decrement rolled back.
func TestCreateOrderTx_InsufficientStockRollsBackEverything(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	mugID := seedProduct(t, repo.DB, "mug", 1500, 10)
	teeID := seedProduct(t, repo.DB, "tee", 2500, 1)

	_, err := repo.CreateOrderTx(ctx, CreateParams{
		Name:          "Ana",
		Email:         "ana@example.com",
		Address:       "1 Main St",
		Status:        StatusPending,
		PaymentMethod: "cod",
		TotalCents:    10500,
		Items: []NewItem{
			{ProductID: mugID, Title: "mug", Quantity: 2, PriceCents: 1500},
			{ProductID: teeID, Title: "tee", Quantity: 3, PriceCents: 2500},
		},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 0, countRows(t, repo.DB, "orders"))
	assert.Equal(t, 0, countRows(t, repo.DB, "order_items"))
	assert.Equal(t, 10, productStock(t, repo.DB, mugID))
	assert.Equal(t, 1, productStock(t, repo.DB, teeID))
}

func TestCreateOrderTx_ExhaustedCouponAborts(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	mugID := seedProduct(t, repo.DB, "mug", 1500, 10)
	couponID := seedCoupon(t, repo.DB, 1, 1)

	_, err := repo.CreateOrderTx(ctx, CreateParams{
		Name:          "Ana",
		Email:         "ana@example.com",
		Address:       "1 Main St",
		Status:        StatusPending,
		PaymentMethod: "cod",
		TotalCents:    1350,
		Items:         []NewItem{{ProductID: mugID, Title: "mug", Quantity: 1, PriceCents: 1500}},
		CouponID:      &couponID,
	})
	require.ErrorIs(t, err, ErrCouponExhausted)

	assert.Equal(t, 0, countRows(t, repo.DB, "orders"))
	assert.Equal(t, 0, countRows(t, repo.DB, "order_items"))
	assert.Equal(t, 10, productStock(t, repo.DB, mugID))

	var usedCount int
	require.NoError(t, repo.DB.QueryRow(ctx,
		`SELECT used_count FROM coupons WHERE id=$1`, couponID).Scan(&usedCount))
	assert.Equal(t, 1, usedCount)
}

func TestCreateOrderTx_UnknownProduct(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	_, err := repo.CreateOrderTx(context.Background(), CreateParams{
		Name:          "Ana",
		Email:         "ana@example.com",
		Address:       "1 Main St",
		Status:        StatusPending,
		PaymentMethod: "cod",
		TotalCents:    1500,
		Items:         []NewItem{{ProductID: uuid.NewString(), Title: "ghost", Quantity: 1, PriceCents: 1500}},
	})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, countRows(t, repo.DB, "orders"))
}
