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

	"github.com/dimitrije/martsy-api/internal/cache"
	"github.com/dimitrije/martsy-api/internal/config"
	"github.com/dimitrije/martsy-api/internal/database"
	"github.com/dimitrije/martsy-api/internal/handlers"
	"github.com/dimitrije/martsy-api/internal/llm"
	"github.com/dimitrije/martsy-api/internal/logger"
	authmw "github.com/dimitrije/martsy-api/internal/middleware"
	"github.com/dimitrije/martsy-api/internal/oauth"
	"github.com/dimitrije/martsy-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

const (
	tokenCleanupInterval = time.Hour
	shutdownTimeout      = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.DebugMode || !cfg.IsProduction())
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	deps := map[string]handlers.Pinger{"database": db}

	var usageStore services.UsageStore
	if cfg.RedisURL != "" {
		redisCache, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer func() { _ = redisCache.Close() }()
		usageStore = redisCache
		deps["redis"] = redisCache
	} else {
		log.Warn("REDIS_URL not set, usage counting disabled")
	}

	outbound := &http.Client{Timeout: cfg.Repo.OutboundTimeout}
	llmClient, err := llm.New(cfg.OpenAI, outbound)
	if err != nil {
		log.WithError(err).Fatal("failed to create llm client")
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	apiKeyService := services.NewAPIKeyService(db)
	usageService := services.NewUsageService(usageStore, log)
	readmeFetcher := services.NewReadmeFetcher(cfg.Repo, log)
	analysisService := services.NewAnalysisService(llmClient, cfg.Repo.ReadmeMaxChars, log)

	providers := oauth.NewProviders(cfg)
	for name := range providers {
		log.Info("oauth provider enabled", "provider", name)
	}

	authHandler := handlers.NewAuthHandler(cfg.FrontendCallbackURL, providers, userService, tokenService, jwtService, log)
	userHandler := handlers.NewUserHandler(userService, log)
	apiKeyHandler := handlers.NewAPIKeyHandler(apiKeyService, usageService, log)
	summarizerHandler := handlers.NewSummarizerHandler(apiKeyService, readmeFetcher, analysisService, usageService, log)
	healthHandler := handlers.NewHealthHandler(deps, log)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", handlers.APIKeyHeader},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api")

	api.Get("/health", healthHandler.Check)

	auth := api.Group("/auth")
	auth.Get("/:provider/consent", authHandler.GetConsentURL)
	auth.Get("/:provider/callback", authHandler.Callback)
	auth.Post("/exchange", authHandler.ExchangeCode)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	api.Post("/validate-key", apiKeyHandler.Validate)
	api.Post("/github-summarizer", summarizerHandler.Summarize)

	protected := api.Group("")
	protected.Use(authmw.Session(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)

	protected.Post("/keys/create", apiKeyHandler.Create)
	protected.Get("/keys", apiKeyHandler.List)
	protected.Patch("/keys/:id", apiKeyHandler.Rename)
	protected.Delete("/keys/:id", apiKeyHandler.Delete)

	go authHandler.RunSweeper(ctx)
	go cleanupRefreshTokens(ctx, tokenService, log)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           authmw.RequestLogger(log, app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		log.WithError(err).Error("server failed")
	case <-ctx.Done():
		log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func cleanupRefreshTokens(ctx context.Context, tokens *services.TokenService, log *logger.Logger) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := tokens.CleanupExpired(ctx)
			if err != nil {
				log.WithError(err).Warn("refresh token cleanup failed")
				continue
			}
			if purged > 0 {
				log.Info("expired refresh tokens purged", "count", purged)
			}
		}
	}
}
