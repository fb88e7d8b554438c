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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rongwang/studyswap/internal/api"
	"github.com/rongwang/studyswap/internal/config"
	"github.com/rongwang/studyswap/internal/identity"
	"github.com/rongwang/studyswap/internal/ledger"
	"github.com/rongwang/studyswap/internal/listings"
	"github.com/rongwang/studyswap/internal/observability/metrics"
	"github.com/rongwang/studyswap/internal/repository"
	"github.com/rongwang/studyswap/internal/service"
	"github.com/rongwang/studyswap/internal/session"
	"github.com/rongwang/studyswap/internal/storage"
	"github.com/rongwang/studyswap/internal/users"
	"github.com/rongwang/studyswap/internal/utils"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()
	logger := utils.NewLogger(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up storage
	backend, err := config.OpenBackend(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	store := storage.NewAdapter(backend, logger)
	defer store.Close()

	// Create repository
	repo := repository.New(store, logger)
	if err := repo.Load(ctx); err != nil {
		logger.Error("failed to load data", "error", err)
		os.Exit(1)
	}
	if cfg.SeedSampleListings {
		seeded, err := repo.SeedListings(ctx, listings.SampleListings())
		if err != nil {
			logger.Error("failed to seed listings", "error", err)
			os.Exit(1)
		}
		if seeded {
			logger.Info("sample listings seeded")
		}
	}

	userStore := users.NewStore(repo, users.WithBcryptCost(cfg.Auth.BcryptCost))

	sess := session.New(store, logger)
	if err := sess.Restore(ctx, userStore); err != nil {
		logger.Error("failed to restore session", "error", err)
		os.Exit(1)
	}
	repo.OnUserChange(sess.Sync)

	// Create service
	svc := service.NewDefaultService(service.Dependencies{
		Repository: repo,
		Users:      userStore,
		Ledger:     ledger.New(repo),
		Listings:   listings.NewStore(repo),
		Session:    sess,
		Verifier:   identity.NewHMACVerifier(cfg.Auth.FederatedSecret, cfg.Auth.FederatedIssuer, cfg.Auth.FederatedAudience),
		Logger:     logger,
	}, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Create API handler
	handler := api.NewHandler(svc, logger)

	// Set up Gin router
	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(metrics.GinMiddleware())

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(cfg.Auth.JWTSecret))
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Start server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
}
