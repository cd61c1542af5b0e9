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
	AppName      string
	AppEnv       string
	Port         string
	WeekTimezone string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string

	// Partner sync (push channel from the partner's device)
	SyncWebhookSecret string
	SyncRateLimit     int
	SyncRateWindow    time.Duration

	// Observability (optional)
	SentryDSN string

	// Export archive storage (S3-compatible, optional: exports stay JSON-only without a bucket)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string        // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3PresignExpiry time.Duration // Lifetime of export download links
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:      envString("APP_NAME", "Duoplan"),
		AppEnv:       envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:         envString("PORT", "8090"),
		WeekTimezone: envString("WEEK_TIMEZONE", "Local"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/duoplan.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),

		// Partner sync
		SyncWebhookSecret: envString("SYNC_WEBHOOK_SECRET", ""),
		SyncRateLimit:     envInt("SYNC_RATE_LIMIT", 60),
		SyncRateWindow:    envDuration("SYNC_RATE_WINDOW", time.Minute),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:        envString("S3_REGION", "us-east-1"),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""),
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 1*time.Hour),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures secrets are strong enough for a real deployment.
// Development accepts short secrets and an unsigned sync channel.
func validateProduction(cfg *Config) {
	if len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires a JWT_SECRET of at least 32 bytes")
		os.Exit(1)
	}
	if cfg.SyncWebhookSecret == "" {
		slog.Error("production deployment requires SYNC_WEBHOOK_SECRET",
			"hint", "set APP_ENV=development to accept partner pushes without a signing secret")
		os.Exit(1)
	}
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
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
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

// WeekLocation is the time zone "today" is read in when deriving the current week.
// Unknown names fall back to time.Local.
func (c *Config) WeekLocation() *time.Location {
	loc, err := time.LoadLocation(c.WeekTimezone)
	if err != nil {
		slog.Warn("config invalid WEEK_TIMEZONE, using local time", "value", c.WeekTimezone, "error", err)
		return time.Local
	}
	return loc
}

// HasStorage reports whether an export bucket is configured.
func (c *Config) HasStorage() bool {
	return c.S3Bucket != ""
}

// Sanitized returns a copy of the config with only public/safe fields.
// Secrets and credentials are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:      c.AppName,
		AppEnv:       c.AppEnv,
		Port:         c.Port,
		WeekTimezone: c.WeekTimezone,

		DBDriver: c.DBDriver,

		SyncRateLimit:  c.SyncRateLimit,
		SyncRateWindow: c.SyncRateWindow,

		S3Region:        c.S3Region,
		S3Bucket:        c.S3Bucket,
		S3Endpoint:      c.S3Endpoint,
		S3PresignExpiry: c.S3PresignExpiry,
	}
}
