package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tpprogramming22/weekendinthecity/internal/cache"
	"github.com/tpprogramming22/weekendinthecity/internal/database"
	"github.com/tpprogramming22/weekendinthecity/internal/external"
	"github.com/tpprogramming22/weekendinthecity/internal/messaging"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Public base URL of the site, used for checkout redirects
	AppURL string

	// Proxies whose X-Forwarded-For is believed when identifying clients
	TrustedProxies []string

	Database      database.Config
	NATS          messaging.Config
	Valkey        cache.Config
	Elasticsearch ElasticsearchConfig
	Stripe        external.StripeConfig
	Mail          external.MailerConfig
	Contact       ContactConfig
	Reconcile     ReconcileConfig
}

// ContactConfig configures the contact form endpoint
type ContactConfig struct {
	Inbox       string
	RateLimit   int
	RateWindow  time.Duration
	SweepPeriod time.Duration
}

// ReconcileConfig configures the pending booking reconciliation job
type ReconcileConfig struct {
	Enabled   bool
	Interval  time.Duration
	After     time.Duration
	BatchSize int
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		TrustedProxies: getEnvList("TRUSTED_PROXIES"),

		AppURL: strings.TrimRight(getEnv("APP_URL", getEnv("NEXT_PUBLIC_APP_URL", "http://localhost:3000")), "/"),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "weekend"),
			Password:           getEnv("DB_PASSWORD", "weekend123"),
			DBName:             getEnv("DB_NAME", "weekendinthecity"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			Enabled:   getEnvBool("NATS_ENABLED", false),
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "weekendinthecity"),
			ClientID:  getEnv("NATS_CLIENT_ID", "weekend-api"),
		},

		Valkey: cache.Config{
			Addr:          os.Getenv("VALKEY_ADDR"),
			Password:      os.Getenv("VALKEY_PASSWORD"),
			EventsListTTL: getEnvDuration("EVENTS_CACHE_TTL", 30*time.Second),
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Stripe: external.StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			Currency:      getEnv("STRIPE_CURRENCY", "eur"),
		},

		Mail: external.MailerConfig{
			Sender:        getEnv("EMAIL_SENDER", ""),
			ContactSender: getEnv("EMAIL_CONTACT_SENDER", "Weekend in the City Contact Form <noreply@weekendinthecity.com>"),
			Region:        getEnv("AWS_REGION", "eu-central-1"),
			AdminEmail:    getEnv("ADMIN_EMAIL", "Weekendinthecity.muc@gmail.com"),
		},

		Contact: ContactConfig{
			Inbox:       getEnv("CONTACT_EMAIL", "Weekendinthecity.muc@gmail.com"),
			RateLimit:   getEnvInt("CONTACT_RATE_LIMIT", 3),
			RateWindow:  getEnvDuration("CONTACT_RATE_WINDOW", 60*time.Minute),
			SweepPeriod: getEnvDuration("CONTACT_RATE_SWEEP", 5*time.Minute),
		},

		Reconcile: ReconcileConfig{
			Enabled:   getEnvBool("RECONCILE_ENABLED", true),
			Interval:  getEnvDuration("RECONCILE_INTERVAL", 15*time.Minute),
			After:     getEnvDuration("RECONCILE_AFTER", 25*time.Hour),
			BatchSize: getEnvInt("RECONCILE_BATCH_SIZE", 100),
		},
	}
}

// Validate reports configuration that makes the payment flow unusable
func (c *Config) Validate() error {
	var missing []string
	if c.Stripe.SecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.Stripe.WebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.Contact.RateLimit <= 0 || c.Contact.RateWindow <= 0 {
		return fmt.Errorf("contact rate limit must be positive")
	}
	return nil
}

// getEnv returns the environment variable or the default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s", "1h")
// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
