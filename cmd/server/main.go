package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/colmward/hamper/internal/config"
	"github.com/colmward/hamper/internal/database"
	"github.com/colmward/hamper/internal/handlers"
	"github.com/colmward/hamper/internal/logging"
	"github.com/colmward/hamper/internal/middleware"
	"github.com/colmward/hamper/internal/services"
	"github.com/colmward/hamper/migrations"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", logging.Fields{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := logging.ParseLevel(cfg.Server.LogLevel)
	logger.SetLevel(level)
	logging.SetDefaultLevel(level)

	logger.Info("Starting hamper server...")

	ctx := context.Background()

	logger.Info("Connecting to PostgreSQL", logging.Fields{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgres(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	migrator, err := database.NewMigrator(cfg.Database.DSN(), migrations.Files)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	changed, err := migrator.Up()
	if err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	version, _, _ := migrator.Version()
	_ = migrator.Close()
	if changed {
		logger.Info("Schema migrated", logging.Fields{"version": version})
	} else {
		logger.Info("Schema up to date", logging.Fields{"version": version})
	}

	logger.Info("Connecting to Redis", logging.Fields{"addr": cfg.Redis.Addr()})
	cache, err := database.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = cache.Close() }()
	logger.Info("Connected to Redis")

	// Services
	dbAdapter := services.NewPoolAdapter(db.Pool)
	redisAdapter := services.NewRedisAdapter(cache.Client)

	userService := services.NewUserService(dbAdapter)
	authService := services.NewAuthService(dbAdapter, redisAdapter, userService)
	emailService := services.NewEmailService(&cfg.Email)
	itemService := services.NewRequestedItemService(dbAdapter)
	relationService := services.NewRelationService(dbAdapter, cfg.Server.BaseURL)
	commentService := services.NewCommentService(dbAdapter, itemService)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, cache)
	authHandler := handlers.NewAuthHandler(userService, authService, cfg.Server.Secure)
	itemHandler := handlers.NewRequestedItemHandler(itemService)
	relationHandler := handlers.NewRelationHandler(relationService, itemService, emailService)
	commentHandler := handlers.NewCommentHandler(commentService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(authService, cfg.Server.LoginPath)
	csrfMiddleware := middleware.NewCSRF(cfg.Server.Secure)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Server.Secure)
	compress := middleware.NewCompress()
	requestLogger := middleware.NewRequestLogger(logger)
	authRateLimiter := middleware.NewAuthRateLimiter(cache.Client)

	requireAuth := authMiddleware.RequireAuth

	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// CSRF token endpoint
	mux.HandleFunc("GET /api/csrf", csrfMiddleware.Token)

	// Auth endpoints
	mux.Handle("POST /api/auth/register", authRateLimiter.Limit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", authRateLimiter.Limit(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(authHandler.Me)))

	// Requested item endpoints
	mux.Handle("GET /api/requested-items", requireAuth(http.HandlerFunc(itemHandler.List)))
	mux.Handle("POST /api/requested-items", requireAuth(http.HandlerFunc(itemHandler.Create)))
	mux.Handle("GET /api/requested-items/{id}", requireAuth(http.HandlerFunc(itemHandler.Get)))
	mux.Handle("PUT /api/requested-items/{id}", requireAuth(http.HandlerFunc(itemHandler.Update)))
	mux.Handle("DELETE /api/requested-items/{id}", requireAuth(http.HandlerFunc(itemHandler.Delete)))
	mux.Handle("POST /api/requested-items/{id}/claim", requireAuth(http.HandlerFunc(itemHandler.Claim)))

	// Comment endpoints
	mux.Handle("GET /api/requested-items/{id}/comments", requireAuth(http.HandlerFunc(commentHandler.ListForItem)))
	mux.Handle("POST /api/requested-items/{id}/comments", requireAuth(http.HandlerFunc(commentHandler.Create)))
	mux.Handle("DELETE /api/comments/{id}", requireAuth(http.HandlerFunc(commentHandler.Delete)))

	// Shopper endpoints (requester side)
	mux.Handle("GET /api/shoppers", requireAuth(http.HandlerFunc(relationHandler.ListShoppers)))
	mux.Handle("GET /api/shoppers/{id}", requireAuth(http.HandlerFunc(relationHandler.GetShopper)))
	mux.Handle("DELETE /api/shoppers/{id}", requireAuth(http.HandlerFunc(relationHandler.RemoveShopper)))
	mux.Handle("POST /api/shoppers/invite", requireAuth(http.HandlerFunc(relationHandler.CreateInviteLink)))
	mux.Handle("POST /api/shoppers/invite/email", requireAuth(http.HandlerFunc(relationHandler.EmailInvite)))

	// Requester endpoints (shopper side)
	mux.Handle("GET /api/requesters", requireAuth(http.HandlerFunc(relationHandler.ListRequesters)))
	mux.Handle("GET /api/requesters/{id}", requireAuth(http.HandlerFunc(relationHandler.GetRequester)))
	mux.Handle("GET /api/requesters/{id}/items", requireAuth(http.HandlerFunc(relationHandler.ListRequesterItems)))

	// Invite acceptance link from email or shared URL
	mux.Handle("GET /add-shopper/{id}/{token}", requireAuth(http.HandlerFunc(relationHandler.AcceptInvite)))

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = csrfMiddleware.Protect(handler)
	handler = compress.Apply(handler)
	handler = securityHeaders.Apply(handler)
	handler = requestLogger.Apply(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", logging.Fields{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", logging.Fields{"addr": addr})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}
