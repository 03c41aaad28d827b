package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	checkoutapp "github.com/armory/backend/internal/application/checkout"
	fulfillmentapp "github.com/armory/backend/internal/application/fulfillment"
	statusapp "github.com/armory/backend/internal/application/status"
	"github.com/armory/backend/internal/domain/shared"
	"github.com/armory/backend/internal/infrastructure/auth"
	"github.com/armory/backend/internal/infrastructure/billing"
	"github.com/armory/backend/internal/infrastructure/cache"
	"github.com/armory/backend/internal/infrastructure/catalog"
	"github.com/armory/backend/internal/infrastructure/config"
	"github.com/armory/backend/internal/infrastructure/logger"
	"github.com/armory/backend/internal/infrastructure/persistence"
	"github.com/armory/backend/internal/infrastructure/scheduler"
	"github.com/armory/backend/internal/interfaces/http/handler"
	"github.com/armory/backend/internal/interfaces/http/middleware"
	"github.com/armory/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Armory Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Production deployments run the SQL migrations via cmd/migrate;
	// local setups get the schema directly.
	if cfg.App.Env != "production" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database schema", zap.Error(err))
		}
	}

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	grantRepo := persistence.NewGormGrantRepository(db.DB)
	xpRepo := persistence.NewGormXPRepository(db.DB)
	webhookEventRepo := persistence.NewGormWebhookEventRepository(db.DB)
	ledger := persistence.NewGormFulfillmentLedger(db.DB)

	// Redis-backed stores, with in-memory fallback for local development
	storeFactory := cache.NewStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.CreateIdempotencyStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	statusCache, err := storeFactory.CreateStatusCache()
	if err != nil {
		log.Fatal("Failed to create status cache", zap.Error(err))
	}

	// Stripe Checkout adapter
	stripeAdapter, err := billing.NewStripeAdapter(&billing.StripeConfig{
		SecretKey:        cfg.Stripe.SecretKey,
		WebhookSecret:    cfg.Stripe.WebhookSecret,
		IsTestMode:       cfg.Stripe.IsTestMode,
		Currency:         cfg.Stripe.Currency,
		SuccessURL:       cfg.Stripe.SuccessURL,
		CancelURL:        cfg.Stripe.CancelURL,
		ShippingFee:      cfg.Stripe.ShippingFee,
		ShippingLabel:    cfg.Stripe.ShippingLabel,
		AllowedCountries: cfg.Stripe.AllowedCountries,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize Stripe adapter", zap.Error(err))
	}

	// Printify catalog behind a TTL cache so checkout pricing does not hit
	// the catalog API on every cart
	printifyConfig := catalog.NewPrintifyConfig(cfg.Catalog.APIKey, cfg.Catalog.ShopID)
	if cfg.Catalog.BaseURL != "" {
		printifyConfig.APIBaseURL = cfg.Catalog.BaseURL
	}
	if cfg.Catalog.Timeout > 0 {
		printifyConfig.TimeoutSeconds = int(cfg.Catalog.Timeout.Seconds())
	}
	printify, err := catalog.NewPrintifyAdapter(printifyConfig)
	if err != nil {
		log.Fatal("Failed to initialize Printify catalog", zap.Error(err))
	}
	storeCatalog := catalog.NewCachedCatalog(printify, cfg.Catalog.CacheTTL)

	// Token verifier for bearer tokens minted by the identity service
	tokenVerifier := auth.NewTokenVerifier(cfg.JWT)

	// Application services
	checkoutService := checkoutapp.NewService(checkoutapp.ServiceConfig{
		OrderRepo:   orderRepo,
		Catalog:     storeCatalog,
		Sessions:    stripeAdapter,
		Currency:    cfg.Stripe.Currency,
		ShippingFee: cfg.Stripe.ShippingFee,
		Logger:      log,
	})
	webhookService := fulfillmentapp.NewWebhookService(fulfillmentapp.WebhookServiceConfig{
		WebhookSecret:    cfg.Stripe.WebhookSecret,
		Ledger:           ledger,
		IdempotencyStore: idempotencyStore,
		IdempotencyCfg:   shared.DefaultIdempotencyConfig(),
		Logger:           log,
	})
	statusServiceCfg := statusapp.ServiceConfig{
		OrderRepo: orderRepo,
		GrantRepo: grantRepo,
		XPRepo:    xpRepo,
		CacheTTL:  cfg.Status.CacheTTL,
		Logger:    log,
	}
	if cfg.Status.CacheEnabled {
		statusServiceCfg.Cache = statusCache
	}
	statusService := statusapp.NewService(statusServiceCfg)

	// Delivery reconciler advances granted items through the delivery
	// lifecycle in the background
	reconciler := scheduler.NewDeliveryReconciler(scheduler.DeliveryReconcilerConfig{
		Interval:         cfg.Scheduler.Interval,
		AdvanceAfter:     cfg.Scheduler.AdvanceAfter,
		BatchSize:        cfg.Scheduler.BatchSize,
		ActivityLookback: cfg.Scheduler.ActivityLookback,
	}, grantRepo, webhookEventRepo, log)
	if cfg.Scheduler.Enabled {
		if err := reconciler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start delivery reconciler", zap.Error(err))
		}
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Checkout creation is the only endpoint a hostile client can make
	// expensive, so the rate limit sits on that handler alone
	checkoutMiddleware := []gin.HandlerFunc{middleware.OptionalAuth(tokenVerifier)}
	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		checkoutMiddleware = append(checkoutMiddleware, middleware.RateLimit(rateLimiter))
	}

	r := router.NewRouter(engine)
	r.Register(handler.NewSystemHandler())
	r.Register(handler.NewCheckoutHandler(checkoutService, checkoutMiddleware...))
	r.Register(handler.NewStripeWebhookHandler(webhookService))
	r.Register(handler.NewStatusHandler(statusService, middleware.RequireAuth(tokenVerifier, log)))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Scheduler.Enabled {
		if err := reconciler.Stop(ctx); err != nil {
			log.Error("Delivery reconciler shutdown failed", zap.Error(err))
		}
	}
	if rateLimiter != nil {
		rateLimiter.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
