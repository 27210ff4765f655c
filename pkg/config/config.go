package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often a pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	LogLevel  string
	LogFormat string

	// AllowedOrigins is the CORS allowlist for the browser frontend. Credentials are
	// allowed because the session travels in a cookie.
	AllowedOrigins []string

	// FrontendURL is where the payment return flow sends the browser afterwards.
	FrontendURL string

	DB      DBConfig
	Session SessionConfig
	SMTP    SMTPConfig
	Redis   RedisConfig
	Khalti  KhaltiConfig
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether outbound mail should go through SMTP. When false the
// notifier only logs.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	HotelTTL time.Duration
}

type KhaltiConfig struct {
	BaseURL    string
	SecretKey  string
	Timeout    time.Duration
	ReturnURL  string
	WebsiteURL string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		LogLevel:       env("LOG_LEVEL", "info"),
		LogFormat:      env("LOG_FORMAT", "json"),
		AllowedOrigins: envList("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
		FrontendURL:    env("FRONTEND_URL", "http://localhost:5173"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "ghumna"),
			User:     env("DB_USER", "ghumna"),
			Password: env("DB_PASSWORD", "ghumna"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Session: SessionConfig{
			Secret:       os.Getenv("SESSION_SECRET"),
			TTL:          time.Duration(envInt("SESSION_TTL_HOURS", 24*7)) * time.Hour,
			CookieName:   env("SESSION_COOKIE_NAME", "token"),
			CookieSecure: env("SESSION_COOKIE_SECURE", "false") == "true",
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
			HotelTTL: time.Duration(envInt("HOTEL_CACHE_TTL_SEC", 300)) * time.Second,
		},
		Khalti: KhaltiConfig{
			BaseURL:    env("KHALTI_BASE_URL", "https://dev.khalti.com/api/v2"),
			SecretKey:  os.Getenv("KHALTI_SECRET_KEY"),
			Timeout:    time.Duration(envInt("KHALTI_TIMEOUT_SEC", 20)) * time.Second,
			ReturnURL:  env("PAYMENT_RETURN_URL", "http://localhost:5173/payment/verify"),
			WebsiteURL: env("WEBSITE_URL", "http://localhost:5173"),
		},
	}
}

// IsProd gates anything that would leak internals (raw error messages, dev fallbacks).
func (c Config) IsProd() bool {
	return c.AppEnv == "prod"
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
