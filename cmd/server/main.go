package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/config"
	"github.com/AdvythVaman05/TradeCraft-Platform/internal/handler"
	"github.com/AdvythVaman05/TradeCraft-Platform/internal/middleware"
	"github.com/AdvythVaman05/TradeCraft-Platform/internal/repository"
	"github.com/AdvythVaman05/TradeCraft-Platform/internal/service"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/auth"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/db"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/helpers"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/logger"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/metrics"
)

func main() {
	log := logger.NewLogger("trade-service")

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Warnf(".env file not found: %v", err)
	}

	cfg := config.LoadConfig()

	// Database connection
	conn, err := db.NewConnection(db.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()
	log.Info("Successfully connected to database")

	// Fail fast on schema drift
	guard := db.NewSchemaGuard(conn.DB)
	if err := guard.ValidateTables(db.CoreTables()); err != nil {
		log.Fatalf("Schema validation failed: %v", err)
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(conn.DB)
	listingRepo := repository.NewListingRepository(conn.DB)
	transactionRepo := repository.NewTransactionRepository(conn.DB)
	userRepo := repository.NewUserRepository(conn.DB)
	chatRepo := repository.NewChatRepository(conn.DB)

	// Initialize helper services
	idGen := helpers.NewIDGenerator()
	validator := helpers.NewCustomValidator()
	m := metrics.NewMetrics("trade")

	// Initialize services
	tradePolicy := service.NewTradePolicy(transactionRepo)
	chatService := service.NewChatService(chatRepo, listingRepo, transactionRepo)
	settlementService := service.NewSettlementService(
		transactionRepo,
		accountRepo,
		listingRepo,
		tradePolicy,
		chatService,
		idGen,
		log,
	)
	listingService := service.NewListingService(listingRepo, userRepo)
	userService := service.NewUserService(userRepo)

	// Token validation against the shared identity tables
	tokenValidator := auth.NewDBTokenValidator(conn.DB)

	// Register handlers
	mux := http.NewServeMux()
	handler.NewTransactionHandler(settlementService, validator, m).Register(mux)
	handler.NewListingHandler(listingService, validator).Register(mux)
	handler.NewChatHandler(chatService, validator).Register(mux)
	handler.NewUserHandler(userService, validator).Register(mux)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := conn.Ping(); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// Build middleware chain: metrics -> logging -> CORS -> auth -> mux
	var root http.Handler = middleware.AuthMiddleware(tokenValidator)(mux)
	root = withPublicRoutes(mux, root)
	root = middleware.CORSMiddleware(root)
	root = logger.Middleware(log)(root)
	root = metrics.Middleware(m)(root)

	server := &http.Server{
		Addr:              ":" + cfg.Server.HTTPPort,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Periodically export DB pool stats
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			stats := conn.DB.Stats()
			m.RecordDBPoolStats(stats.OpenConnections, stats.InUse, stats.Idle, stats.WaitCount, stats.WaitDuration)
		}
	}()

	go func() {
		log.Infof("Trade service listening on port %s", cfg.Server.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Forced shutdown: %v", err)
	}
	log.Info("Server stopped")
}

// withPublicRoutes lets the health, metrics and public listing reads
// bypass authentication; everything else goes through the auth chain.
func withPublicRoutes(mux *http.ServeMux, authed http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/healthz" || r.URL.Path == "/metrics":
			mux.ServeHTTP(w, r)
		case r.Method == http.MethodGet && (r.URL.Path == "/api/listings" || isListingRead(r.URL.Path)):
			mux.ServeHTTP(w, r)
		default:
			authed.ServeHTTP(w, r)
		}
	})
}

func isListingRead(path string) bool {
	const prefix = "/api/listings/"
	if len(path) <= len(prefix) || path[:len(prefix)] != prefix {
		return false
	}
	// Listing detail only; chat threads under the listing stay authed
	for _, c := range path[len(prefix):] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
