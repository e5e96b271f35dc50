package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	"github.com/ariefcatur/go-storefront.git/internal/checkout"
	"github.com/ariefcatur/go-storefront.git/internal/config"
	"github.com/ariefcatur/go-storefront.git/internal/coupon"
	"github.com/ariefcatur/go-storefront.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/mailer"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/payment"
	"github.com/ariefcatur/go-storefront.git/internal/postgres"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/ariefcatur/go-storefront.git/internal/reviews"
	"github.com/ariefcatur/go-storefront.git/internal/session"
	"github.com/ariefcatur/go-storefront.git/internal/storage"
	"github.com/ariefcatur/go-storefront.git/internal/users"
	"github.com/ariefcatur/go-storefront.git/internal/wishlist"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if err := postgres.Migrate(cfg.PostgresDSN, cfg.MigrationsPath); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	prod.Start()

	// Repos
	catalogRepo := &catalog.Repo{DB: db}
	couponRepo := &coupon.Repo{DB: db}
	ordersRepo := &orders.Repo{DB: db}
	usersRepo := &users.Repo{DB: db}
	reviewsRepo := &reviews.Repo{DB: db}
	wishlistRepo := &wishlist.Repo{DB: db}
	store := &cart.Store{RDB: rdb}
	files := &storage.Disk{Root: cfg.UploadDir}

	svc := &checkout.Service{
		Ledger:     ordersRepo,
		Store:      store,
		Payments:   payment.NewStripeClient(cfg.StripeSecret),
		Mailer:     &mailer.SMTP{Addr: cfg.SMTPAddr, From: cfg.SMTPFrom},
		Events:     prod,
		AdminEmail: cfg.AdminEmail,
		Service:    cfg.ServiceName,
	}

	sessions := session.NewManager(cfg.SessionSecret)
	router := httpx.NewRouter()
	router.Use(httpx.WithSession(sessions))

	for _, h := range []interface{ Register(*chi.Mux) }{
		&httpx.AuthHandler{Users: usersRepo, Sessions: sessions},
		&httpx.CatalogHandler{Catalog: catalogRepo, Reviews: reviewsRepo},
		&httpx.CartHandler{Catalog: catalogRepo, Store: store},
		&httpx.CheckoutHandler{Svc: svc, Store: store, Coupons: couponRepo},
		&httpx.OrdersHandler{Repo: ordersRepo, Users: usersRepo},
		&httpx.ReviewsHandler{Reviews: reviewsRepo, Catalog: catalogRepo, Files: files, Users: usersRepo},
		&httpx.WishlistHandler{Repo: wishlistRepo, Users: usersRepo},
		&httpx.AdminHandler{Catalog: catalogRepo, Coupons: couponRepo, Orders: ordersRepo, Users: usersRepo, Files: files},
	} {
		h.Register(router)
	}

	// HTTP server
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: otelhttp.NewHandler(router, cfg.ServiceName),
	}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	prod.WaitClosed()
}
