package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"inactivity_notifier/internal/app"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	EmailProviderResend   = "resend"
	EmailProviderSendgrid = "sendgrid"
	EmailProviderConsole  = "console"

	LogBackendPostgres = "postgres"
	LogBackendRedis    = "redis"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL string
	LogLevel    string
	Environment string

	// Scheduling
	CronSpecInactivity string
	Location           *time.Location
	Thresholds         app.ThresholdConfig
	DedupWindow        time.Duration

	// Collaborator bounds
	CollaboratorTimeout time.Duration
	ListTimeout         time.Duration
	ActivityPageSize    int

	// Email
	EmailProvider      string
	ResendAPIKey       string
	SendgridAPIKey     string
	EmailFrom          string
	EmailRatePerSecond float64
	FrontendURL        string

	// Notification log storage
	NotificationLogBackend string
	RedisAddr              string
	RedisPassword          string
	RedisDB                int

	// Operational surfaces
	HTTPAddr         string
	CORSAllowOrigins []string
	AdminAPIToken    string
	TelegramToken    string // optional; enables the admin bot
	AdminTelegramID  int64
}

// Load reads configuration from environment variables and .env file (if present).
// Any invalid value is returned as an error so the process refuses to schedule.
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(envOr("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(envOr("ENVIRONMENT", "development"))

	cfg.CronSpecInactivity = envOr("CRON_SPEC_INACTIVITY", "0 9 * * *") // 9:00 AM daily
	if _, err = cron.ParseStandard(cfg.CronSpecInactivity); err != nil {
		return nil, fmt.Errorf("invalid CRON_SPEC_INACTIVITY %q: %w", cfg.CronSpecInactivity, err)
	}

	tz := envOr("SCHEDULER_TIMEZONE", envOr("TZ", "Africa/Lagos"))
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_TIMEZONE %q: %w", tz, err)
	}

	cfg.Thresholds, err = app.ParseThresholds(envOr("INACTIVITY_THRESHOLDS", "3,7,14"))
	if err != nil {
		return nil, fmt.Errorf("invalid INACTIVITY_THRESHOLDS: %w", err)
	}

	if cfg.DedupWindow, err = envDuration("DEDUP_WINDOW", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CollaboratorTimeout, err = envDuration("COLLABORATOR_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.ListTimeout, err = envDuration("LIST_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ActivityPageSize, err = envInt("ACTIVITY_PAGE_SIZE", 500); err != nil {
		return nil, err
	}
	if cfg.ActivityPageSize <= 0 {
		return nil, fmt.Errorf("ACTIVITY_PAGE_SIZE must be positive")
	}

	cfg.EmailProvider = strings.ToLower(envOr("EMAIL_PROVIDER", EmailProviderResend))
	cfg.ResendAPIKey = os.Getenv("RESEND_API_KEY")
	cfg.SendgridAPIKey = os.Getenv("SENDGRID_API_KEY")
	switch cfg.EmailProvider {
	case EmailProviderResend:
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY is not set")
		}
	case EmailProviderSendgrid:
		if cfg.SendgridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is not set")
		}
	case EmailProviderConsole:
	default:
		return nil, fmt.Errorf("unknown EMAIL_PROVIDER %q", cfg.EmailProvider)
	}
	cfg.EmailFrom = envOr("EMAIL_FROM", "Skill Up Academy <onboarding@skillupacademy.com>")
	rate, err := strconv.ParseFloat(envOr("EMAIL_RATE_PER_SECOND", "2"), 64)
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("EMAIL_RATE_PER_SECOND must be a positive number")
	}
	cfg.EmailRatePerSecond = rate
	cfg.FrontendURL = strings.TrimRight(envOr("FRONTEND_URL", "http://localhost:5173"), "/")

	cfg.NotificationLogBackend = strings.ToLower(envOr("NOTIFICATION_LOG_BACKEND", LogBackendPostgres))
	switch cfg.NotificationLogBackend {
	case LogBackendPostgres:
	case LogBackendRedis:
		cfg.RedisAddr = envOr("REDIS_ADDR", "localhost:6379")
		cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
		if cfg.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown NOTIFICATION_LOG_BACKEND %q", cfg.NotificationLogBackend)
	}

	cfg.HTTPAddr = envOr("HTTP_ADDR", ":"+envOr("PORT", "5000"))
	cfg.CORSAllowOrigins = envList("CORS_ALLOW_ORIGINS", []string{"*"})
	cfg.AdminAPIToken = os.Getenv("ADMIN_API_TOKEN")

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
		if adminIDStr == "" {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
		}
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	return cfg, nil
}

// IsProduction returns true for deployments that want structured logs.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "staging"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
