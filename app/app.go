package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeniistore/jenii-admin/internal/cache"
	"github.com/jeniistore/jenii-admin/internal/config"
	"github.com/jeniistore/jenii-admin/internal/db"
	"github.com/jeniistore/jenii-admin/internal/email"
	"github.com/jeniistore/jenii-admin/internal/handlers"
	"github.com/jeniistore/jenii-admin/internal/services"
	"github.com/jeniistore/jenii-admin/internal/shiprocket"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *pgxpool.Pool
	CacheProvider cache.Provider
	Handlers      *handlers.Handlers
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	database, err := db.Connect(startupCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	orderStore := db.NewOrderStore(database)
	cancellationStore := db.NewCancellationStore(database)
	productStore := db.NewProductStore(database)
	catalogStore := db.NewCatalogStore(database)
	couponStore := db.NewCouponStore(database)
	userStore := db.NewUserStore(database)
	dashboardStore := db.NewDashboardStore(database)

	carrier := shiprocket.NewClient(cfg.ShiprocketBaseURL, cfg.ShiprocketAPIToken)

	emailSender, err := newEmailSender(cfg)
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, err
	}

	lifecycleService := services.NewLifecycleService(
		orderStore,
		emailSender,
		cfg.Lifecycle,
		logger.With("component", "lifecycle_service"),
	)
	cancellationService := services.NewCancellationService(
		cancellationStore,
		orderStore,
		carrier,
		emailSender,
		logger.With("component", "cancellation_service"),
	)
	catalogService := services.NewCatalogService(productStore, catalogStore, logger.With("component", "catalog_service"))
	couponService := services.NewCouponService(couponStore, logger.With("component", "coupon_service"))
	dashboardService := services.NewDashboardService(dashboardStore, userStore, orderStore, logger.With("component", "dashboard_service"))

	h, err := handlers.New(handlers.Dependencies{
		Config:              cfg,
		DB:                  database,
		CacheProvider:       cacheProvider,
		LifecycleService:    lifecycleService,
		CancellationService: cancellationService,
		CatalogService:      catalogService,
		CouponService:       couponService,
		DashboardService:    dashboardService,
		Logger:              logger,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		DB:            database,
		CacheProvider: cacheProvider,
		Handlers:      h,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// newEmailSender builds the notification sender. An empty EMAIL_API_KEY
// disables customer emails without failing startup.
func newEmailSender(cfg *config.Config) (services.OrderEmailSender, error) {
	if cfg.EmailAPIKey == "" {
		return nil, nil
	}

	provider, err := email.NewProvider(email.Config{
		Provider: cfg.EmailProvider,
		APIKey:   cfg.EmailAPIKey,
		From:     cfg.EmailFrom,
		Domain:   cfg.MailgunDomain,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email provider: %w", err)
	}

	sender, err := services.NewTemplatedEmailSender(provider, cfg.StoreName, cfg.StoreURL)
	if err != nil {
		return nil, err
	}
	return sender, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	case "text", "":
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level: cfg.LogLevel,
		}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: cfg.LogLevel}))
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
