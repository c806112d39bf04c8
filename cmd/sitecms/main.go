package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/crypto/bcrypt"

	"sitecms/internal/auth"
	"sitecms/internal/config"
	"sitecms/internal/content"
	"sitecms/internal/handlers"
	"sitecms/internal/middleware"
	"sitecms/internal/router"
	"sitecms/internal/storage"
	"sitecms/internal/storage/sqlite"
	"sitecms/internal/telemetry"
)

type App struct {
	Server *http.Server
	Logger *slog.Logger
	Config *config.Config
}

func NewApp(cfg *config.Config, logger *slog.Logger, handler http.Handler) *App {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.Timeouts.Read,
		WriteTimeout: cfg.HTTP.Timeouts.Write,
		IdleTimeout:  cfg.HTTP.Timeouts.Idle,
	}

	return &App{
		Server: server,
		Logger: logger,
		Config: cfg,
	}
}

func (a *App) Run(ctx context.Context) error {
	srvErrChan := make(chan error, 1)

	go func() {
		a.Logger.Info("server starting", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErrChan <- err
		}
	}()

	select {
	case err := <-srvErrChan:
		return fmt.Errorf("server startup failed: %w", err)
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
	}

	// attempt clean shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.Timeouts.Shutdown)
	defer cancel()

	a.Logger.Info("draining connections...")
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		// graceful shutdown timed out
		if closeErr := a.Server.Close(); closeErr != nil {
			return fmt.Errorf("graceful shutdown failed: %w", errors.Join(err, closeErr))
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	a.Logger.Info("server stopped")
	return nil
}

// bootstrapAdmin seeds the first admin account from config when none exists.
func bootstrapAdmin(ctx context.Context, store storage.Store, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Auth.AdminUser == "" || cfg.Auth.AdminPassword == "" {
		return nil
	}

	count, err := store.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user, err := store.CreateUser(ctx, cfg.Auth.AdminUser, string(hash), auth.RoleAdmin)
	if err != nil {
		return err
	}

	logger.Info("admin account created", "id", user.ID, "username", user.Username)
	return nil
}

func main() {
	cfg := config.LoadWithDefaults()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	stderr := os.Stderr
	logHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Logger.Level})
	logger := slog.New(logHandler).With("app", cfg.App.Name)

	logger.Info("application starting", "pid", os.Getpid())
	logger.Info("configuration loaded",
		"name", cfg.App.Name,
		"env", cfg.App.Environment,
		"port", cfg.HTTP.Port,
		"uploads_backend", cfg.Uploads.Backend,
		"rate_limit_rps", cfg.Limiter.RPS,
		"trusted_proxy", cfg.Proxy.Trusted,
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Init(rootCtx, "sitecms", "1.0.0", cfg.App.Environment, cfg.Metrics.OtelEndpoint, cfg.Metrics.EnableTelemetry, logger)
	if err != nil {
		logger.Error("could not initialise telemetry", "err", err)
		os.Exit(1)
	}
	defer tel.Shutdown(context.Background())

	metrics, err := telemetry.NewMetrics(tel.Meter)
	if err != nil {
		logger.Error("could not create metrics", "err", err)
		os.Exit(1)
	}

	store, err := sqlite.NewStore(cfg.DB.Path)
	if err != nil {
		logger.Error("could not open database", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(cfg.DB.MigrationsPath); err != nil {
		logger.Error("could not run migrations", "err", err)
		os.Exit(1)
	}

	if err := bootstrapAdmin(rootCtx, store, cfg, logger); err != nil {
		logger.Error("could not bootstrap admin account", "err", err)
		os.Exit(1)
	}

	var provider storage.Provider
	switch cfg.Uploads.Backend {
	case "s3":
		provider, err = storage.NewS3Store(cfg.Uploads.S3)
		if err != nil {
			logger.Error("could not create s3 store", "err", err)
			os.Exit(1)
		}
	default:
		provider = storage.NewLocalStorage(cfg.Uploads.Dir)
	}

	assets := content.NewAssetLibrary(provider)
	posts := content.NewService(store, assets, logger)

	sessions := auth.NewManager(cfg.Auth.SessionSecret, cfg.Auth.CookieName, cfg.Auth.TokenTTL, cfg.IsProd())
	gate := middleware.NewAccessGate(sessions, logger, metrics)

	limiter := middleware.NewIPRateLimiter(rootCtx, cfg.Limiter.RPS, cfg.Limiter.Burst, cfg.Proxy.Trusted, metrics)
	authLimiter := middleware.NewIPRateLimiter(rootCtx, 2, 5, cfg.Proxy.Trusted, metrics)

	handler := router.NewRouter(router.RouterDependencies{
		Cfg:          cfg,
		Logger:       logger,
		PostHandler:  handlers.NewPostHandler(posts, logger, metrics, cfg.Uploads.MaxSize),
		AuthHandler:  handlers.NewAuthHandler(store, sessions, logger),
		AssetHandler: &handlers.AssetHandler{Assets: assets, Logger: logger},
		Gate:         gate,
		Limiter:      limiter,
		AuthLimiter:  authLimiter,
		Tracer:       tel.Tracer,
		Metrics:      metrics,
		CSRF:         middleware.NewCSRF(cfg.IsProd(), "/posts", "/posts/*", "/auth/session"),
		CSP:          middleware.NewCSP(cfg.IsProd()),
	})

	app := NewApp(cfg, logger, handler)

	if err := app.Run(rootCtx); err != nil {
		logger.Error("server crashed", "err", err)
		os.Exit(1)
	}

	logger.Info("application exited successfully")
	os.Exit(0)
}
