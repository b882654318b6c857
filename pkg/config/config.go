package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	Port      string
	ClientURL string

	Store   StoreConfig
	Cache   CacheConfig
	AI      AIConfig
	Payment PaymentConfig
	SMTP    SMTPSettings
	Limits  RateLimitConfig
}

type StoreConfig struct {
	Driver        string // "postgres" | "mongo"
	PostgresURL   string
	MongoURI      string
	MongoDatabase string
}

type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

type AIConfig struct {
	TextProvider  string // "gemini" | "openai"
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	ImageModel    string
	ImagesEnabled bool
	ImageMaxWidth int
}

type PaymentConfig struct {
	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string
	UnlockPriceMinor    int64
}

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseSSL   bool
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Env:       getEnv("ENV", "development"),
		Port:      getEnv("PORT", "3000"),
		ClientURL: strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:5173"), "/"),
		Store: StoreConfig{
			Driver:        strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
			PostgresURL:   os.Getenv("POSTGRES_URL"),
			MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDatabase: getEnv("MONGO_DATABASE", "tripdaddy"),
		},
		Cache: CacheConfig{
			RedisURL: os.Getenv("REDIS_URL"),
			TTL:      time.Duration(getEnvInt("CACHE_TTL_MINUTES", 60)) * time.Minute,
		},
		AI: AIConfig{
			TextProvider:  strings.ToLower(getEnv("TEXT_PROVIDER", "gemini")),
			GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
			GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			ImageModel:    getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
			ImagesEnabled: getEnvBool("IMAGES_ENABLED", true),
			ImageMaxWidth: getEnvInt("IMAGE_MAX_WIDTH", 768),
		},
		Payment: PaymentConfig{
			StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			Currency:            strings.ToLower(getEnv("UNLOCK_CURRENCY", "usd")),
			UnlockPriceMinor:    int64(getEnvInt("UNLOCK_PRICE_MINOR", 500)),
		},
		SMTP: SMTPSettings{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "onboarding@tripdaddy.app"),
			FromName: getEnv("SMTP_FROM_NAME", "TripDaddy"),
			UseSSL:   getEnvBool("SMTP_USE_SSL", false),
		},
		Limits: RateLimitConfig{
			PerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 20),
			Burst:     getEnvInt("RATE_LIMIT_BURST", 5),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Store.Driver {
	case "postgres":
		if cfg.Store.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required when STORE_DRIVER=postgres")
		}
	case "mongo":
		if cfg.Store.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %s", cfg.Store.Driver)
	}

	switch cfg.AI.TextProvider {
	case "gemini":
		if cfg.AI.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when TEXT_PROVIDER=gemini")
		}
	case "openai":
		if cfg.AI.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when TEXT_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unsupported TEXT_PROVIDER: %s", cfg.AI.TextProvider)
	}

	if cfg.Payment.UnlockPriceMinor <= 0 {
		return fmt.Errorf("UNLOCK_PRICE_MINOR must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
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
