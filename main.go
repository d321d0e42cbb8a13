package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/clients"
	"storefront/config"
	"storefront/controllers"
	"storefront/database"
	apperrors "storefront/errors"
	"storefront/events"
	"storefront/logger"
	"storefront/middleware"
	"storefront/models"
	pkgaws "storefront/pkg/aws"
	"storefront/repository"
	"storefront/routes"
	"storefront/services"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const serviceName = "storefront"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.Initialize(cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var awsCfg sdkaws.Config
	if cfg.NeedsAWS() {
		awsCfg, err = pkgaws.LoadAWSConfig(ctx)
		if err != nil {
			log.Fatal("Failed to load AWS config", zap.Error(err))
		}
		if cfg.UseAWSSecrets {
			cfg.ApplySecrets(ctx, pkgaws.NewSecretsClient(awsCfg))
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	if cfg.CloudWatchLogs {
		cwLogs, err := pkgaws.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, serviceName)
		if err != nil {
			log.Fatal("Failed to set up CloudWatch Logs", zap.Error(err))
		}
		shipper := &zapcore.BufferedWriteSyncer{WS: zapcore.AddSync(cwLogs), FlushInterval: 5 * time.Second}
		defer func() { _ = shipper.Stop() }()
		log = logger.InitializeWithWriter(cfg.Env, shipper)
		log.Info("Shipping logs to CloudWatch", zap.String("log_group", cfg.CloudWatchLogGroup))
	}

	var metricsClient *pkgaws.MetricsClient
	var metrics services.MetricsRecorder
	if cfg.CloudWatchEnabled {
		metricsClient = pkgaws.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, true)
		metrics = metricsClient
	}

	// Client storage
	var redisClient *redis.Client
	var storage repository.ClientStorage
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		storage = repository.NewRedisStorage(redisClient, cfg.StorageTTL)
	} else {
		log.Warn("REDIS_URL not set, client storage is kept in memory")
		storage = repository.NewMemoryStorage()
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.ConnectPostgres(log, cfg.DatabaseURL, models.Migrate)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
	}

	// Catalog
	var source repository.CatalogSource
	switch cfg.CatalogSource {
	case config.CatalogSourcePostgres:
		source = repository.NewGormCatalogSource(db)
	case config.CatalogSourceDynamoDB:
		source = repository.NewDynamoCatalogSource(database.NewDynamoClient(awsCfg), cfg.DynamoProductsTable, cfg.DynamoCategoriesTable)
	default:
		source = clients.NewFakeStoreClient(cfg.FakeStoreURL, cfg.FetchTimeout)
	}
	source = repository.NewCachedCatalogSource(source, storage)
	catalog := services.NewCatalogStore(source, metrics)

	// Identity
	var identity services.IdentityProvider
	switch cfg.IdentityProvider {
	case config.IdentityPostgres:
		identity = services.NewGormIdentityProvider(repository.NewGormAccountRepository(db), 0)
	default:
		identity = services.NewLocalIdentityProvider(storage, 0)
	}

	// Checkout
	var processor services.PaymentProcessor
	if cfg.StripeSecretKey != "" {
		processor = services.NewStripeProcessor(cfg.StripeSecretKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, checkout is disabled")
	}
	var orders repository.OrderRepository
	if db != nil {
		orders = repository.NewGormOrderRepository(db)
	} else {
		log.Warn("DATABASE_URL not set, orders cannot be stored")
	}

	var publisher events.Publisher
	switch cfg.EventsBackend {
	case config.EventsSNS:
		publisher = events.NewSNSPublisher(pkgaws.NewSNSClient(awsCfg), cfg.SNSTopicARN)
	case config.EventsSQS:
		publisher = events.NewSQSPublisher(pkgaws.NewSQSClient(awsCfg), cfg.SQSQueueURL)
	case config.EventsKafka:
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		publisher = events.NopPublisher{}
	}

	checkout := services.NewCheckoutService(processor, orders, publisher, metrics, cfg.Currency, cfg.ShippingFee)
	sessions := services.NewSessionFactory(storage, identity)
	tokens := services.NewSessionTokens(cfg.JWTSecret, cfg.SessionTTL)

	// Initial catalog fetch; failures are surfaced through /api/catalog/status.
	go func() {
		_ = catalog.Load(ctx)
	}()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.SecurityHeaders(),
		middleware.CORSMiddleware(cfg.AllowedOrigins),
		middleware.RateLimitMiddleware(middleware.NewRateLimiter(ctx, rate.Every(time.Minute/100), 50, 5*time.Minute)),
		middleware.MetricsMiddleware(metricsClient, serviceName),
		middleware.Timeout(30*time.Second),
		apperrors.ErrorMiddleware(),
	)

	catalogController := controllers.NewCatalogController(catalog)
	catalogController.ReloadTimeout = 2 * cfg.FetchTimeout
	routes.RegisterRoutes(router, routes.Controllers{
		Catalog:  catalogController,
		Cart:     controllers.NewCartController(sessions, catalog),
		Auth:     controllers.NewAuthController(sessions),
		Checkout: controllers.NewCheckoutController(sessions, checkout),
	}, tokens)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Storefront service is running", zap.String("port", cfg.Port), zap.String("catalog_source", cfg.CatalogSource))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}

	catalog.Close()
	if err := publisher.Close(); err != nil {
		log.Warn("Failed to close event publisher", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := database.ClosePostgres(db); err != nil {
		log.Warn("Failed to close database", zap.Error(err))
	}
	log.Info("Server shutdown complete.")
}
