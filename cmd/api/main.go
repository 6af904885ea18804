package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ninja813/NFT-marketplace/internal/cache"
	"github.com/ninja813/NFT-marketplace/internal/config"
	"github.com/ninja813/NFT-marketplace/internal/handlers"
	"github.com/ninja813/NFT-marketplace/internal/services"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := cfg.NewLogger()

	// Prices and balances travel as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := services.OpenBackend(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to open %s backend: %v", cfg.Database.Driver, err)
	}
	defer backend.Close()

	var c cache.Cache = cache.NewMemoryWithLimits(cache.DefaultMemorySize, cfg.Redis.CacheTTL.Duration)
	if cfg.Redis.Addr != "" {
		rc, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		defer rc.Close()
		c = rc
	}

	hub := handlers.NewHub(log)
	go hub.Run(ctx)

	market := services.NewMarketplaceService(backend.Stores, c, hub, cfg.Market, cfg.Redis.CacheTTL.Duration, log)
	deps := handlers.Dependencies{
		Config:      cfg,
		Log:         log,
		Auth:        services.NewAuthService(backend.Stores, services.NewWalletService(), cfg.Auth, cfg.Market, log),
		Market:      market,
		Collections: services.NewCollectionService(backend.Stores, cfg.Market, log),
		Users:       services.NewUserService(backend.Stores, market, log),
		Hub:         hub,
		AuthLimiter: handlers.NewRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateBurst, log),
	}
	deps.AuthLimiter.StartCleanup(ctx, 10*time.Minute)

	ticker := services.NewTickerService(backend.Stores, hub, cfg.Market, log)
	if err := ticker.Start(ctx); err != nil {
		log.Fatalf("failed to start ticker: %v", err)
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handlers.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":    server.Addr,
			"backend": cfg.Database.Driver,
			"redis":   cfg.Redis.Addr != "",
		}).Info("API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	ticker.Stop()
	log.Info("Server stopped")
}
