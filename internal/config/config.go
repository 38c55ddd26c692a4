package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName         string
	AppEnv          string
	Port            string
	Timezone        string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver       string
	DBConnection   string
	MigrateOnStart bool

	// Security
	JWTSecret       string
	JWTExpiry       time.Duration
	RateLimitWrites int
	RateLimitWindow time.Duration

	// Book catalog cache (optional, disabled when REDIS_URL is empty)
	RedisURL        string
	CatalogCacheTTL time.Duration

	// Observability (optional)
	SentryDSN string

	// Storage for export archives (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string        // Optional: for S3-compatible services
	S3PresignExpiry time.Duration // Expiry of archive download links
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:         envString("APP_NAME", "StepBookStep"),
		AppEnv:          envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:            envString("PORT", "8090"),
		Timezone:        envString("APP_TIMEZONE", "Asia/Seoul"),
		LogLevel:        envString("LOG_LEVEL", ""),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		// Database
		DBDriver:       envString("DB_DRIVER", "sqlite"),
		DBConnection:   envString("DB_CONNECTION", "./data/stepbookstep.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),
		MigrateOnStart: envBool("DB_MIGRATE_ON_START", true),

		// Security
		JWTSecret:       envRequired("JWT_SECRET"),
		JWTExpiry:       envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days
		RateLimitWrites: envPositiveInt("RATE_LIMIT_WRITES", 60),
		RateLimitWindow: envPositiveDuration("RATE_LIMIT_WINDOW", time.Minute),

		// Catalog cache
		RedisURL:        envString("REDIS_URL", ""),
		CatalogCacheTTL: envDuration("CATALOG_CACHE_TTL", time.Hour),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage (optional, archive endpoint disabled without a bucket)
		S3Region:        envString("S3_REGION", "us-east-1"),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""),
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 1*time.Hour),
	}

	// Production: validate secrets and services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures secrets are strong enough for production deployments.
func validateProduction(cfg *Config) {
	if len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires JWT_SECRET of at least 32 bytes")
		os.Exit(1)
	}
	if cfg.S3Bucket != "" && (cfg.S3AccessKey == "" || cfg.S3SecretKey == "") {
		slog.Error("S3_BUCKET set without S3_ACCESS_KEY/S3_SECRET_KEY")
		os.Exit(1)
	}
}

// Location resolves the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("config invalid timezone, using UTC", "timezone", c.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

// envPositiveInt is envInt for settings that must be at least 1.
func envPositiveInt(key string, def int) int {
	i := envInt(key, def)
	if i <= 0 {
		slog.Warn("config int must be positive, using default", "key", key, "value", i, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envPositiveDuration(key string, def time.Duration) time.Duration {
	d := envDuration(key, def)
	if d <= 0 {
		slog.Warn("config duration must be positive, using default", "key", key, "value", d, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets and credentials are excluded. Safe to log at startup.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:         c.AppName,
		AppEnv:          c.AppEnv,
		Port:            c.Port,
		Timezone:        c.Timezone,
		LogLevel:        c.LogLevel,
		ShutdownTimeout: c.ShutdownTimeout,
		DBDriver:        c.DBDriver,
		RateLimitWrites: c.RateLimitWrites,
		RateLimitWindow: c.RateLimitWindow,
		CatalogCacheTTL: c.CatalogCacheTTL,
		S3Region:        c.S3Region,
		S3Bucket:        c.S3Bucket,
		S3Endpoint:      c.S3Endpoint,
	}
}
