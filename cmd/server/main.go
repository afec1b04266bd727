package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/walletfc/backend/docs"
	"github.com/walletfc/backend/internal/config"
	"github.com/walletfc/backend/internal/database"
	"github.com/walletfc/backend/internal/services"
	"github.com/walletfc/backend/internal/store"
)

// @title Wallet Ledger API
// @version 1.0
// @description FC/USD wallet ledger: transfers, purchases and admin money operations
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	configFile := flag.String("config", ".env", "path to the config file")
	flag.Parse()

	// Initialize config
	config.Init(*configFile)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port

	ctx := context.Background()

	redisClient := database.InitRedis(ctx)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var backing backend
	switch cfg.StoreBackend {
	case "memory":
		mem := store.NewMemory()
		seedAdmin(ctx, cfg, mem)
		backing = mem
		log.Println("[STORE] Using in-memory store, data is lost on shutdown")
	default:
		db := openDatabase(ctx, cfg)
		defer db.Close()
		backing = store.NewPostgres(db)
	}

	a := newApp(cfg, backing, redisClient)

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      a.router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}

func openDatabase(ctx context.Context, cfg *config.Config) *sql.DB {
	db, err := database.InitDB(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if cfg.AutoMigrate {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		log.Printf("[DB] Applied %d migrations", applied)
	}
	return db
}

func seedAdmin(ctx context.Context, cfg *config.Config, users services.UserStore) {
	if cfg.Admin.Email == "" {
		log.Println("[STORE] ADMIN_EMAIL not set, no admin account seeded")
		return
	}
	admin, err := services.CreateAdmin(ctx, users, cfg.Admin.Email, cfg.Admin.Password, "Wallet", "Admin")
	if err != nil {
		log.Fatalf("Failed to seed admin %s: %v", cfg.Admin.Email, err)
	}
	log.Printf("[STORE] Seeded admin %s", admin.Email)
}
