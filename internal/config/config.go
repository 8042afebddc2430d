package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL    string `env:"DATABASE_URL"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"file://migrations"`
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string        `env:"REDIS_PASSWORD"`
	RedisDB   int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// Auth Config
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// Media Config
	DataRoot       string `env:"DATA_ROOT" envDefault:"./data"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	MaxUploadBytes int    `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	// AI Verification Config
	GeminiAPIKey         string  `env:"GEMINI_API_KEY"`
	GeminiModel          string  `env:"GEMINI_MODEL" envDefault:"gemini-1.5-pro"`
	GeminiBaseURL        string  `env:"GEMINI_BASE_URL"`
	AIVerifyOnSubmit     bool    `env:"AI_VERIFY_ON_SUBMIT" envDefault:"true"`
	AIRateLimitPerSecond float64 `env:"AI_RATE_LIMIT_PER_SECOND" envDefault:"1"`

	// Dispatch Webhook Config
	WebhookURL        string        `env:"DISPATCH_WEBHOOK_URL"`
	WebhookSecret     string        `env:"DISPATCH_WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"DISPATCH_WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"DISPATCH_WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"DISPATCH_WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// Mail Config
	ResendAPIKey string `env:"RESEND_API_KEY"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"Civic Reports <no-reply@civic.local>"`

	// Map Config
	ClusterRadiusMeters float64 `env:"CLUSTER_RADIUS_METERS" envDefault:"30"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		MigrationsPath:       getEnv("MIGRATIONS_PATH", "file://migrations"),
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvAsInt("REDIS_DB", 0),
		CacheTTL:             getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		JWTTTL:               getEnvAsDuration("JWT_TTL", 24*time.Hour),
		DataRoot:             getEnv("DATA_ROOT", "./data"),
		PublicBaseURL:        strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		MaxUploadBytes:       getEnvAsInt("MAX_UPLOAD_BYTES", 10*1024*1024),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
		GeminiBaseURL:        os.Getenv("GEMINI_BASE_URL"),
		AIVerifyOnSubmit:     getEnvAsBool("AI_VERIFY_ON_SUBMIT", true),
		AIRateLimitPerSecond: getEnvAsFloat("AI_RATE_LIMIT_PER_SECOND", 1),
		WebhookURL:           os.Getenv("DISPATCH_WEBHOOK_URL"),
		WebhookSecret:        os.Getenv("DISPATCH_WEBHOOK_SECRET"),
		WebhookTimeout:       getEnvAsDuration("DISPATCH_WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:    getEnvAsInt("DISPATCH_WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:     getEnvAsDuration("DISPATCH_WEBHOOK_BASE_DELAY", time.Second),
		ResendAPIKey:         os.Getenv("RESEND_API_KEY"),
		MailFrom:             getEnv("MAIL_FROM", "Civic Reports <no-reply@civic.local>"),
		ClusterRadiusMeters:  getEnvAsFloat("CLUSTER_RADIUS_METERS", 30),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.WebhookMaxRetries < 1 {
		return fmt.Errorf("DISPATCH_WEBHOOK_MAX_RETRIES must be positive")
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat возвращает значение переменной окружения как float64 или значение по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool возвращает значение переменной окружения как bool или значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
