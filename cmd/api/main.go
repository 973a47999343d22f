package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/ejdotp/digiWallet/internal/api"
	"github.com/ejdotp/digiWallet/internal/auth"
	"github.com/ejdotp/digiWallet/internal/config"
	"github.com/ejdotp/digiWallet/internal/db"
	"github.com/ejdotp/digiWallet/internal/logger"
	"github.com/ejdotp/digiWallet/internal/metrics"
	"github.com/ejdotp/digiWallet/internal/middleware"
	"github.com/ejdotp/digiWallet/internal/rates"
	"github.com/ejdotp/digiWallet/internal/repository/postgres"
	"github.com/ejdotp/digiWallet/internal/services"
	"github.com/ejdotp/digiWallet/internal/worker"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	metrics.Init()

	var rateCache *redis.Client
	if cfg.RedisAddr != "" {
		rateCache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rateCache.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, rate cache disabled", "err", err)
			rateCache = nil
		}
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	rateSrc := rates.New(cfg.CurrencyAPIURL, cfg.CurrencyAPIKey, cfg.NativeCurrency, rateCache, cfg.RateCacheTTL)

	userSvc := services.NewUserService(repos.Users, tm)
	ledgerSvc := services.NewLedgerService(repos.Ledger, repos.Users, repos.Products, repos.AuditLogs, rateSrc, cfg.NativeCurrency, wp)
	catalogSvc := services.NewCatalogService(repos.Products)
	authMW := middleware.NewAuthMiddleware(tm, userSvc)

	r := api.NewRouter(cfg, userSvc, ledgerSvc, catalogSvc, authMW)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
