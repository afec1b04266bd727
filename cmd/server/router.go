package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/walletfc/backend/internal/config"
	"github.com/walletfc/backend/internal/handlers"
	"github.com/walletfc/backend/internal/ledger"
	"github.com/walletfc/backend/internal/metrics"
	mW "github.com/walletfc/backend/internal/middleware"
	"github.com/walletfc/backend/internal/notify"
	"github.com/walletfc/backend/internal/services"
)

// backend is everything the HTTP layer needs from a store.
type backend interface {
	ledger.Store
	ledger.ReplaySource
	notify.Writer
	services.UserStore
	services.WalletReader
	services.ProductStore
	services.NotificationStore
	services.AdminStore
}

type app struct {
	cfg    *config.Config
	store  backend
	redis  *redis.Client
	engine *ledger.Engine
}

func newApp(cfg *config.Config, store backend, redisClient *redis.Client) *app {
	engine := ledger.NewEngine(store, notify.NewService(store, redisClient), nil, ledger.Config{
		MaxRetries:   cfg.Ledger.MaxRetries,
		RetryBackoff: cfg.Ledger.RetryBackoff,
		MintPolicy:   ledger.MintPolicy(cfg.Ledger.MintPolicy),
	})
	return &app{cfg: cfg, store: store, redis: redisClient, engine: engine}
}

func (a *app) router() http.Handler {
	authService := services.NewAuthService(a.store, a.redis)
	walletService := services.NewWalletService(a.engine, a.store)
	catalogService := services.NewCatalogService(a.store)
	notificationService := services.NewNotificationService(a.store)
	adminService := services.NewAdminService(a.engine, a.store, ledger.NewVerifier(a.store), nil)
	authenticator := mW.NewAuthenticator(a.store, a.redis)

	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(metrics.Instrument)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/register", authService.Register)
		r.Post("/auth/login", authService.Login)
		r.Post("/auth/logout", authService.Logout)
		r.Get("/products", catalogService.ListProducts)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(authenticator.Middleware)

			r.Get("/auth/me", authService.Me)

			r.Get("/wallet", walletService.GetWallet)
			r.Post("/transfer", walletService.Transfer)
			r.Post("/products/{productId}/purchase", walletService.Purchase)

			r.Get("/transactions", walletService.ListTransactions)
			r.Get("/transactions/{txId}", walletService.GetTransaction)

			r.Get("/notifications", notificationService.ListNotifications)
			r.Patch("/notifications/{id}/read", notificationService.MarkRead)

			if a.redis != nil {
				paymentRequests := handlers.NewPaymentRequestHandler(services.NewPaymentRequestService(
					a.redis, a.cfg.PaymentRequests.TTL, a.cfg.PaymentRequests.ImageSize))
				r.Post("/payment-requests", paymentRequests.Create)
				r.Get("/payment-requests/{code}", paymentRequests.Resolve)
			}

			r.Route("/admin", func(r chi.Router) {
				r.Use(mW.RequireAdmin)

				r.Post("/create-money", adminService.CreateMoney)
				r.Post("/credit-account", adminService.CreditAccount)
				r.Get("/users", adminService.ListUsers)
				r.Put("/users/{userId}/block", adminService.BlockUser)
				r.Put("/users/{userId}/unblock", adminService.UnblockUser)
				r.Post("/products", catalogService.CreateProduct)
				r.Get("/ledger/verify", adminService.VerifyLedger)
			})
		})
	})

	return r
}
