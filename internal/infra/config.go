package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string

	MediaDriver   string // "s3" or "fs"
	MediaBasePath string
	MediaBaseURL  string
	S3Bucket      string
	S3Region      string
	S3AccessID    string
	S3AccessKey   string
	S3KeyPrefix   string
	GeoIPDBPath   string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int

	CORSAllowedOrigins []string

	NotificationRetentionDays int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		MediaDriver:   getEnv("MEDIA_DRIVER", "fs"),
		MediaBasePath: getEnv("MEDIA_BASE_PATH", "./data/media"),
		MediaBaseURL:  getEnv("MEDIA_BASE_URL", "http://localhost:8080/static"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      getEnv("S3_REGION", "eu-central-1"),
		S3AccessID:    os.Getenv("S3_ACCESS_ID"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3KeyPrefix:   getEnv("S3_KEY_PREFIX", "media/"),
		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		CORSAllowedOrigins: strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ","),

		NotificationRetentionDays: getEnvInt("NOTIFICATION_RETENTION_DAYS", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.MediaDriver == "s3" && cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required when MEDIA_DRIVER=s3")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
