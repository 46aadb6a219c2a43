package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
// It is built once at startup and passed to constructors; nothing reads the
// environment after that.
type Config struct {
	AppName string
	AppURL  string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Token signing
	JWTSecret string

	// MongoDB (identities and transactions)
	MongoURI string
	MongoDB  string

	// Postgres audit trail; disabled when PostgresDSN is empty
	PostgresDSN   string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration
	MigrationsDir string

	// Redis identity cache and rate limits; disabled when RedisAddr is empty
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	IdentityCacheTTL time.Duration

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Proxies whose forwarding headers are honoured (IPs or CIDRs, comma-separated).
	// Empty means forwarding headers are ignored.
	TrustedProxies string

	// Mailgun
	MailgunDomain string
	MailgunAPIKey string
	MailgunSender string

	// RabbitMQ notifications; disabled when RabbitMQURL is empty
	RabbitMQURL        string
	RabbitMQEmailQueue string
	MailSendEnabled    bool

	// Elasticsearch transaction search; disabled when ElasticsearchAddrs is empty
	ElasticsearchAddrs  string // comma-separated
	ElasticsearchUser   string
	ElasticsearchPass   string
	ESTransactionsIndex string

	DebugMetricsEnabled bool
	HTTPLogEnabled      bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "Finance Tracker"),
		AppURL:  getenv("APP_URL", "http://localhost:5173"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "5001"),
		GinMode: getenv("GIN_MODE", "release"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getenv("MONGO_DB", "finance_tracker"),

		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),
		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    getenv("REDIS_PASSWORD", ""),
		RedisDB:          getint("REDIS_DB", 0),
		IdentityCacheTTL: getdur("IDENTITY_CACHE_TTL", 5*time.Minute),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		TrustedProxies:     getenv("TRUSTED_PROXIES", ""),

		MailgunDomain: getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: getenv("MAILGUN_API_KEY", ""),
		MailgunSender: getenv("MAILGUN_SENDER", ""),

		RabbitMQURL:        os.Getenv("RABBITMQ_URL"),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "emails"),
		MailSendEnabled:    getbool("MAIL_SEND_ENABLED", true),

		ElasticsearchAddrs:  os.Getenv("ELASTICSEARCH_ADDRS"),
		ElasticsearchUser:   getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:   getenv("ELASTICSEARCH_PASSWORD", ""),
		ESTransactionsIndex: getenv("ES_TRANSACTIONS_INDEX", "transactions"),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", false),
		HTTPLogEnabled:      getbool("HTTP_LOG_ENABLED", false),
	}
}

// Validate reports the settings the process cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.JWTSecret) == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if strings.TrimSpace(c.MongoURI) == "" {
		missing = append(missing, "MONGO_URI")
	}
	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	return nil
}

// IsDevelopment reports whether APP_ENV is development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// NotificationsEnabled reports whether welcome and profile emails are queued.
func (c *Config) NotificationsEnabled() bool {
	return c.MailSendEnabled && c.RabbitMQURL != ""
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string { return splitList(c.CORSAllowedOrigins) }

// TrustedProxyList returns the trusted proxy IPs/CIDRs as slice
func (c *Config) TrustedProxyList() []string { return splitList(c.TrustedProxies) }

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string { return splitList(c.ElasticsearchAddrs) }
