package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Catalog sources. Exactly one is used per deployment.
const (
	CatalogSourceFakeStore = "fakestore"
	CatalogSourcePostgres  = "postgres"
	CatalogSourceDynamoDB  = "dynamodb"
)

// Identity providers.
const (
	IdentityLocal    = "local"
	IdentityPostgres = "postgres"
)

// Event backends.
const (
	EventsNone  = "none"
	EventsSNS   = "sns"
	EventsKafka = "kafka"
	EventsSQS   = "sqs"
)

type Config struct {
	Env  string
	Port string

	CatalogSource         string
	FakeStoreURL          string
	FetchTimeout          time.Duration
	DynamoProductsTable   string
	DynamoCategoriesTable string

	RedisURL   string
	StorageTTL time.Duration

	DatabaseURL      string
	IdentityProvider string

	JWTSecret  string
	SessionTTL time.Duration

	StripeSecretKey string
	Currency        string
	ShippingFee     decimal.Decimal

	EventsBackend string
	SNSTopicARN   string
	KafkaBrokers  []string
	KafkaTopic    string
	SQSQueueURL   string

	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogs      bool
	CloudWatchLogGroup  string

	AllowedOrigins []string
	UseAWSSecrets  bool
}

// SecretGetter resolves named secrets (AWS Secrets Manager in production).
type SecretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Load reads configuration from the environment. A .env file is honoured if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),

		CatalogSource:         strings.ToLower(getEnv("CATALOG_SOURCE", CatalogSourceFakeStore)),
		FakeStoreURL:          strings.TrimSuffix(getEnv("FAKE_STORE_URL", "https://fakestoreapi.com"), "/"),
		FetchTimeout:          getDuration("CATALOG_FETCH_TIMEOUT", 10*time.Second),
		DynamoProductsTable:   getEnv("DDB_TABLE_PRODUCTS", "Products"),
		DynamoCategoriesTable: getEnv("DDB_TABLE_CATEGORIES", "Categories"),

		RedisURL:   os.Getenv("REDIS_URL"),
		StorageTTL: getDuration("STORAGE_TTL", time.Hour*24*7),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		IdentityProvider: strings.ToLower(getEnv("IDENTITY_PROVIDER", IdentityLocal)),

		JWTSecret:  strings.TrimSpace(os.Getenv("JWT_SECRET")),
		SessionTTL: getDuration("SESSION_TTL", time.Hour*24*30),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		Currency:        strings.ToLower(getEnv("CURRENCY", "eur")),

		EventsBackend: strings.ToLower(getEnv("EVENTS_BACKEND", EventsNone)),
		SNSTopicARN:   os.Getenv("SNS_ORDER_TOPIC_ARN"),
		KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "order.placed"),
		SQSQueueURL:   os.Getenv("SQS_ORDER_QUEUE_URL"),

		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "Storefront"),
		CloudWatchLogs:      os.Getenv("CLOUDWATCH_LOGS_ENABLED") == "true",
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/storefront/services"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		UseAWSSecrets:  os.Getenv("AWS_USE_SECRETS") == "true",
	}

	fee, err := decimal.NewFromString(getEnv("SHIPPING_FEE", "3.95"))
	if err != nil || fee.IsNegative() {
		return nil, fmt.Errorf("SHIPPING_FEE must be a non-negative decimal")
	}
	cfg.ShippingFee = fee

	return cfg, nil
}

// ApplySecrets overrides sensitive values from the secret store. Lookup
// failures fall back to the environment values already loaded.
func (c *Config) ApplySecrets(ctx context.Context, secrets SecretGetter) {
	if secrets == nil {
		return
	}
	if v, err := secrets.GetSecret(ctx, "storefront/JWT_SECRET"); err == nil && v != "" {
		c.JWTSecret = v
	} else if err != nil {
		zap.L().Warn("JWT secret not read from secret store, using env", zap.Error(err))
	}
	if v, err := secrets.GetSecret(ctx, "storefront/STRIPE_SECRET_KEY"); err == nil && v != "" {
		c.StripeSecretKey = v
	} else if err != nil {
		zap.L().Warn("Stripe key not read from secret store, using env", zap.Error(err))
	}
}

// Validate checks required fields and cross-field constraints.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	switch c.CatalogSource {
	case CatalogSourceFakeStore:
	case CatalogSourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for CATALOG_SOURCE=postgres")
		}
	case CatalogSourceDynamoDB:
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}

	switch c.IdentityProvider {
	case IdentityLocal:
	case IdentityPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for IDENTITY_PROVIDER=postgres")
		}
	default:
		return fmt.Errorf("unknown IDENTITY_PROVIDER %q", c.IdentityProvider)
	}

	switch c.EventsBackend {
	case EventsNone, EventsKafka:
	case EventsSNS:
		if c.SNSTopicARN == "" {
			return fmt.Errorf("SNS_ORDER_TOPIC_ARN is required for EVENTS_BACKEND=sns")
		}
	case EventsSQS:
		if c.SQSQueueURL == "" {
			return fmt.Errorf("SQS_ORDER_QUEUE_URL is required for EVENTS_BACKEND=sqs")
		}
	default:
		return fmt.Errorf("unknown EVENTS_BACKEND %q", c.EventsBackend)
	}

	return nil
}

// NeedsAWS reports whether any configured component talks to AWS.
func (c *Config) NeedsAWS() bool {
	return c.UseAWSSecrets || c.CloudWatchEnabled || c.CloudWatchLogs ||
		c.CatalogSource == CatalogSourceDynamoDB ||
		c.EventsBackend == EventsSNS || c.EventsBackend == EventsSQS
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "/")); p != "" {
			out = append(out, p)
		}
	}
	return out
}
