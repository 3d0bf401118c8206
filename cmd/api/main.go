package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgerbook/internal/config"
	"ledgerbook/internal/database"
	"ledgerbook/internal/logger"
	"ledgerbook/internal/ratelimit"
	"ledgerbook/internal/server"
	"ledgerbook/internal/services"
	"ledgerbook/internal/store"
	"ledgerbook/internal/validator"
)

// @title           Ledgerbook API
// @version         1.0
// @description     Ledgerbook records a small business's cash and credit entries, settles receivables and payables, and reports cash and accrual views.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(appConfig.Env, appConfig.LogLevel)
	defer logger.Sync()
	log := logger.Get()

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	clock := services.SystemClock(appConfig.Location)
	limiter := ratelimit.NewPerOwner(appConfig.RateLimitPerMinute, appConfig.RateLimitBurst)
	deps := server.NewDependencies(store.NewGormStore(dbManager.DB()), appConfig, clock, limiter)

	router := server.NewRouter(deps, server.RouterConfig{
		JWTSecret: []byte(appConfig.JWTSecret),
		JWTIssuer: appConfig.JWTIssuer,
		OpsAPIKey: appConfig.OpsAPIKey,
		DB:        dbManager,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepLimiter(ctx, limiter)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Ledgerbook server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sweepLimiter drops idle per-owner buckets so the limiter does not grow
// with every owner ever seen.
func sweepLimiter(ctx context.Context, limiter *ratelimit.PerOwner) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(30 * time.Minute); n > 0 {
				logger.Get().Debugf("Swept %d idle rate limit buckets", n)
			}
		}
	}
}
