package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/propman/backend/internal/application/identity"
	leasingapp "github.com/propman/backend/internal/application/leasing"
	ledgerapp "github.com/propman/backend/internal/application/ledger"
	portfolioapp "github.com/propman/backend/internal/application/portfolio"
	propertyapp "github.com/propman/backend/internal/application/property"
	"github.com/propman/backend/internal/domain/ledger"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/infrastructure/auth"
	"github.com/propman/backend/internal/infrastructure/cache"
	"github.com/propman/backend/internal/infrastructure/config"
	"github.com/propman/backend/internal/infrastructure/event"
	"github.com/propman/backend/internal/infrastructure/logger"
	"github.com/propman/backend/internal/infrastructure/payment"
	"github.com/propman/backend/internal/infrastructure/persistence"
	"github.com/propman/backend/internal/infrastructure/telemetry"
	"github.com/propman/backend/internal/interfaces/http/handler"
	"github.com/propman/backend/internal/interfaces/http/middleware"
	"github.com/propman/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting property management backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Tracing and log export come up before the database so queries run
	// against an instrumented connection from the start
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	defer func() {
		if err := loggerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	if loggerProvider.IsEnabled() {
		level, _ := zapcore.ParseLevel(cfg.Log.Level)
		log = telemetry.BridgeLogger(log, loggerProvider.NewZapBridgeCore(cfg.Telemetry.ServiceName, level))
	}

	// Database connection with a GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	queryTracer := telemetry.NewQueryTracer(telemetry.QueryTracingConfig{
		Enabled: tracerProvider.IsEnabled() && cfg.Telemetry.TraceQueries,
	}, log)
	if err := queryTracer.Register(db.DB); err != nil {
		log.Fatal("Failed to register query tracing", zap.Error(err))
	}

	// Repositories
	actorRepo := persistence.NewGormActorRepository(db.DB)
	unitRepo := persistence.NewGormUnitRepository(db.DB)
	leaseRepo := persistence.NewGormLeaseRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)

	// Idempotency store for processor confirmations. Redis shares state
	// across instances; a single instance falls back to memory.
	var idempotencyStore shared.IdempotencyStore
	redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
		memStore := cache.NewInMemoryIdempotencyStore()
		defer func() { _ = memStore.Close() }()
		idempotencyStore = memStore
	} else {
		defer func() { _ = redisStore.Close() }()
		idempotencyStore = redisStore
	}

	// Event bus for cross-context integration
	eventBus := event.NewInMemoryEventBus(log)

	// Metrics
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:             meterProvider.Meter("propman"),
			Logger:            log,
			PortfolioProvider: leaseRepo,
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		eventBus.Subscribe(telemetry.NewMetricsEventHandler(businessMetrics))
		businessMetrics.StartPeriodicCollection(ctx, 0)
		defer businessMetrics.Stop()
		log.Info("Telemetry enabled", zap.String("endpoint", cfg.Telemetry.CollectorEndpoint))
	}

	// Late fee policy from config
	var lateFeePolicy ledger.LateFeePolicy
	if cfg.LateFee.Policy == "accrual" {
		rate, err := decimal.NewFromString(cfg.LateFee.AccrualDailyRate)
		if err != nil {
			log.Fatal("Invalid late fee daily rate", zap.String("rate", cfg.LateFee.AccrualDailyRate))
		}
		lateFeePolicy = ledger.NewAccrualLateFeePolicy(cfg.LateFee.AccrualThreshold, rate)
	} else {
		lateFeePolicy = ledger.NewFlatLateFeePolicy()
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(identityapp.AuthServiceConfig{
		ActorRepo:  actorRepo,
		JWTService: jwtService,
		Logger:     log,
	})
	actorService := identityapp.NewActorService(identityapp.ActorServiceConfig{
		ActorRepo: actorRepo,
		Logger:    log,
	})
	unitService := propertyapp.NewUnitService(propertyapp.UnitServiceConfig{
		UnitRepo:       unitRepo,
		LeaseRepo:      leaseRepo,
		EventPublisher: eventBus,
		Logger:         log,
	})
	leaseService := leasingapp.NewLeaseService(leasingapp.LeaseServiceConfig{
		LeaseRepo:      leaseRepo,
		UnitRepo:       unitRepo,
		ActorRepo:      actorRepo,
		EventPublisher: eventBus,
		Logger:         log,
	})
	paymentServiceCfg := ledgerapp.PaymentServiceConfig{
		PaymentRepo:    paymentRepo,
		LeaseRepo:      leaseRepo,
		EventPublisher: eventBus,
		LateFeePolicy:  lateFeePolicy,
		Logger:         log,
	}
	if businessMetrics != nil {
		paymentServiceCfg.Metrics = businessMetrics
	}
	paymentService := ledgerapp.NewPaymentService(paymentServiceCfg)

	callbackCfg := ledgerapp.PaymentCallbackServiceConfig{
		PaymentRepo:      paymentRepo,
		IdempotencyStore: idempotencyStore,
		EventPublisher:   eventBus,
		Logger:           log,
	}
	if businessMetrics != nil {
		callbackCfg.Metrics = businessMetrics
	}
	callbackService := ledgerapp.NewPaymentCallbackService(callbackCfg)
	if cfg.Webhook.SigningSecret != "" {
		processor, err := payment.NewWebhookProcessor(&payment.WebhookConfig{
			ProviderName:  cfg.Webhook.Provider,
			SigningSecret: cfg.Webhook.SigningSecret,
		})
		if err != nil {
			log.Fatal("Failed to configure webhook processor", zap.Error(err))
		}
		callbackService.RegisterProcessor(processor)
		log.Info("Payment processor registered", zap.String("processor", cfg.Webhook.Provider))
	} else {
		log.Warn("No webhook signing secret configured, processor confirmations disabled")
	}

	overviewService := portfolioapp.NewOverviewService(portfolioapp.OverviewServiceConfig{
		UnitRepo:      unitRepo,
		LeaseRepo:     leaseRepo,
		PaymentRepo:   paymentRepo,
		ActorRepo:     actorRepo,
		LeaseExpirer:  leaseService,
		LateFeePolicy: lateFeePolicy,
		Logger:        log,
	})

	// HTTP layer
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}
	engine.Use(middleware.RequestID())
	if tracerProvider.IsEnabled() {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
		engine.Use(middleware.CORSWithConfig(corsCfg))
	}

	router.Setup(engine, router.Config{
		Auth: middleware.AuthConfig{
			JWTService: jwtService,
			ActorRepo:  actorRepo,
			Logger:     log,
		},
		AuthHandler:      handler.NewAuthHandler(authService),
		ActorHandler:     handler.NewActorHandler(actorService),
		UnitHandler:      handler.NewUnitHandler(unitService),
		LeaseHandler:     handler.NewLeaseHandler(leaseService),
		PaymentHandler:   handler.NewPaymentHandler(paymentService),
		CallbackHandler:  handler.NewPaymentCallbackHandler(callbackService, log),
		PortfolioHandler: handler.NewPortfolioHandler(overviewService),
	})

	// Background reconciliation of elapsed leases
	expiryCtx, stopExpiry := context.WithCancel(ctx)
	defer stopExpiry()
	go runLeaseExpiryLoop(expiryCtx, leaseService, cfg.Leasing.ExpiryInterval, log)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

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
	stopExpiry()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runLeaseExpiryLoop periodically transitions active leases whose end date
// has passed to expired, so reads never see a stale active lease for longer
// than one interval.
func runLeaseExpiryLoop(ctx context.Context, leaseService *leasingapp.LeaseService, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := leaseService.ExpireElapsedLeases(ctx, time.Now())
			if err != nil {
				log.Warn("Lease expiry reconciliation failed", zap.Error(err))
				continue
			}
			if count > 0 {
				log.Info("Expired elapsed leases", zap.Int("count", count))
			}
		}
	}
}
