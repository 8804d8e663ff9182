package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/timeout"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/haulport/logistics-backend/internal/auth"
	"github.com/haulport/logistics-backend/internal/drivers"
	"github.com/haulport/logistics-backend/internal/events"
	"github.com/haulport/logistics-backend/internal/kyc"
	"github.com/haulport/logistics-backend/internal/orders"
	"github.com/haulport/logistics-backend/internal/payments"
	"github.com/haulport/logistics-backend/internal/presence"
	"github.com/haulport/logistics-backend/internal/reports"
	"github.com/haulport/logistics-backend/internal/wallet"
	"github.com/haulport/logistics-backend/internal/withdrawals"
	"github.com/haulport/logistics-backend/pkg/common"
	"github.com/haulport/logistics-backend/pkg/config"
	"github.com/haulport/logistics-backend/pkg/database"
	"github.com/haulport/logistics-backend/pkg/logger"
	"github.com/haulport/logistics-backend/pkg/middleware"
	"github.com/haulport/logistics-backend/pkg/redis"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load("api")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Server.Environment,
			Release:     version,
		}); err != nil {
			logger.Error("Sentry initialization failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Postgres
	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.RunMigrations(&cfg.Database, "migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Read-side handle for reporting
	sqlDB, err := database.NewSQLDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open reporting database handle", zap.Error(err))
	}
	defer sqlDB.Close()

	// Redis
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Events
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.Enabled {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	// Repositories
	ledgerRepo := wallet.NewRepository(pool)
	orderRepo := orders.NewRepository(pool, ledgerRepo)
	driverRepo := drivers.NewRepository(pool)
	withdrawalRepo := withdrawals.NewRepository(pool, ledgerRepo)
	paymentRepo := payments.NewRepository(pool)
	authRepo := auth.NewRepository(pool)
	reportRepo := reports.NewRepository(sqlDB)

	// Services
	presenceStore := presence.NewStore(redisClient.Client)
	verifier := kyc.NewHTTPVerifier(cfg.KYC.BaseURL, cfg.KYC.APIKey)
	driverService := drivers.NewService(driverRepo, presenceStore, verifier, cfg.Business)
	orderService := orders.NewService(orderRepo, driverRepo, driverService, publisher, cfg.Business)
	walletService := wallet.NewService(ledgerRepo, &cfg.Business)
	withdrawalService := withdrawals.NewService(withdrawalRepo, publisher)
	cardProvider := payments.NewCardProvider(cfg.Payment.StripeSecretKey, cfg.Payment.StripeWebhookSecret)
	redirectProvider := payments.NewRedirectProvider(cfg.Payment.RedirectGatewayURL, cfg.Payment.RedirectGatewaySecret)
	paymentService := payments.NewService(paymentRepo, orderRepo, cardProvider, redirectProvider)
	authService := auth.NewService(authRepo, cfg.JWT)
	reportService := reports.NewService(reportRepo)

	// Handlers
	orderHandler := orders.NewHandler(orderService)
	driverHandler := drivers.NewHandler(driverService)
	walletHandler := wallet.NewHandler(walletService)
	withdrawalHandler := withdrawals.NewHandler(withdrawalService)
	paymentHandler := payments.NewHandler(paymentService)
	authHandler := auth.NewHandler(authService)
	reportHandler := reports.NewHandler(reportService)

	router := buildRouter(cfg, pool, redisClient,
		orderHandler, driverHandler, walletHandler, withdrawalHandler,
		paymentHandler, authHandler, reportHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("API server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func buildRouter(
	cfg *config.Config,
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	orderHandler *orders.Handler,
	driverHandler *drivers.Handler,
	walletHandler *wallet.Handler,
	withdrawalHandler *withdrawals.Handler,
	paymentHandler *payments.Handler,
	authHandler *auth.Handler,
	reportHandler *reports.Handler,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(cfg.Server.ServiceName))
	router.Use(middleware.SecurityHeaders())
	if cfg.Sentry.Enabled {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", common.HealthCheck(cfg.Server.ServiceName, version, map[string]func() error{
		"postgres": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(ctx)
		},
		"redis": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		},
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Webhooks authenticate via signature, not JWT
	router.POST("/api/v1/webhooks/card", paymentHandler.CardWebhook)

	api := router.Group("/api/v1")
	api.Use(timeout.New(timeout.WithTimeout(time.Duration(cfg.Server.WriteTimeout) * time.Second)))

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		authed.GET("/auth/me", authHandler.Me)

		// Orders
		authed.POST("/orders", middleware.RequireRole("customer"), orderHandler.Create)
		authed.GET("/orders", orderHandler.ListMine)
		authed.GET("/orders/open", middleware.RequireRole("driver"), orderHandler.ListOpen)
		authed.GET("/orders/:id", orderHandler.Get)
		authed.POST("/orders/:id/claim", middleware.RequireRole("driver"), orderHandler.Claim)
		authed.POST("/orders/:id/start", middleware.RequireRole("driver"), orderHandler.Start)
		authed.POST("/orders/:id/complete", middleware.RequireRole("driver"), orderHandler.Complete)
		authed.POST("/orders/:id/cancel", middleware.RequireRole("customer"), orderHandler.Cancel)

		// Drivers
		authed.GET("/drivers/me", middleware.RequireRole("driver"), driverHandler.GetProfile)
		authed.PUT("/drivers/me/online", middleware.RequireRole("driver"), driverHandler.SetOnline)
		authed.POST("/drivers/me/heartbeat", middleware.RequireRole("driver"), driverHandler.Heartbeat)
		authed.POST("/drivers/me/kyc", middleware.RequireRole("driver"), driverHandler.SubmitKYC)

		// Wallet
		authed.GET("/wallet/balance", walletHandler.GetBalance)
		authed.GET("/wallet/transactions", walletHandler.GetTransactions)
		authed.GET("/reports/wallet", reportHandler.WalletStatement)

		// Withdrawals
		authed.POST("/withdrawals", middleware.RequireRole("driver"), withdrawalHandler.Request)
		authed.GET("/withdrawals", withdrawalHandler.ListMine)
		authed.GET("/withdrawals/:id", withdrawalHandler.Get)

		// Payments
		authed.POST("/payments/initialize", middleware.RequireRole("customer"), paymentHandler.Initialize)
		authed.GET("/payments/:reference/verify", paymentHandler.Verify)

		// Admin
		admin := authed.Group("/admin")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.GET("/withdrawals/pending", withdrawalHandler.ListPending)
			admin.POST("/withdrawals/:id/review", withdrawalHandler.Review)
			admin.GET("/wallets/:user_id/consistency", walletHandler.CheckConsistency)
			admin.GET("/reports/summary", reportHandler.PlatformSummary)
		}
	}

	return router
}
