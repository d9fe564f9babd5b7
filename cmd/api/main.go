package main

import (
	"context"
	"errors"
	"jetsuite-backend/config"
	_ "jetsuite-backend/docs" // Important for Swagger
	v1 "jetsuite-backend/internal/delivery/http/v1"
	"jetsuite-backend/internal/repository/postgres"
	"jetsuite-backend/internal/usecase"
	"jetsuite-backend/pkg/auth"
	"jetsuite-backend/pkg/database"
	"jetsuite-backend/pkg/logger"
	pkgredis "jetsuite-backend/pkg/redis"
	"jetsuite-backend/pkg/security"
	"jetsuite-backend/pkg/validation"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// @title           JetSuite Access API
// @version         1.0
// @description     Access guard and entitlement control plane for the JetSuite shell.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting jetsuite backend", "port", cfg.Port)

	securityLogger := security.NewSecurityLogger("jetsuite-backend", security.Environment())
	defer func() { _ = securityLogger.Sync() }()

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional)
	var redisClient *goredis.Client
	var entitlementCache usecase.EntitlementCache
	redisClient, err = pkgredis.NewClient(ctx, pkgredis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword})
	switch {
	case errors.Is(err, pkgredis.ErrNotConfigured):
		redisClient = nil
	case err != nil:
		logger.Log.Warn("Redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	default:
		defer redisClient.Close()
		entitlementCache = pkgredis.NewJSONCache(redisClient, "entitlement:", cfg.Guard.EntitlementCacheTTL)
	}

	// 5. Setup Repositories
	subscriptionRepo := postgres.NewSubscriptionRepository(dbPool)
	profileRepo := postgres.NewBusinessProfileRepository(dbPool)

	// 6. Setup Auth (HS256 secret and/or JWKS)
	var jwksProvider *auth.Provider
	if jwksURL := cfg.JWKSURL(); jwksURL != "" {
		jwksProvider = auth.NewProvider(jwksURL)
	}
	verifier := auth.NewVerifier(cfg.SupabaseJWTSecret, jwksProvider)

	// 7. Setup UseCases
	entitlementUC := usecase.NewEntitlementUsecase(subscriptionRepo, entitlementCache, usecase.EntitlementRedirects{
		Denied:        cfg.Guard.DeniedRedirect,
		PaymentFailed: cfg.Guard.PaymentFailedRedirect,
	})
	profileUC := usecase.NewProfileUsecase(profileRepo)
	accessUC := usecase.NewAccessUsecase(usecase.AccessUsecaseDeps{
		Verifier:     verifier,
		Entitlements: entitlementUC,
		Profiles:     profileRepo,
		Validate:     validation.New(),
		Logger:       logger.Log,
		Audit:        securityLogger,
	}, usecase.ReconcilerConfig{
		SessionTimeout: cfg.Guard.SessionTimeout,
		DeniedRedirect: cfg.Guard.DeniedRedirect,
	}, cfg.Guard.DenialCountdown, cfg.Guard.ResolveTimeout)

	checks := map[string]usecase.HealthChecker{
		"database": dbPool.Ping,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return pkgredis.HealthCheck(ctx, redisClient) }
	}

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AccessUC:     accessUC,
		Entitlements: entitlementUC,
		ProfileUC:    profileUC,
		Verifier:     verifier,
		Redis:        redisClient,
		Audit:        securityLogger,
		Health:       usecase.NewHealthUsecase(checks, 2*time.Second),
		Config:       cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
