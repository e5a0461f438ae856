package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env          string
	HTTPPort     string
	DatabaseDSN  string
	JWTSecret    string
	CORSOrigins  string
	LogLevel     string
	RateLimit    int    // requests per minute per IP
	UploadBase   string // base URL for signed upload URLs
	UploadSecret string // HMAC key for upload URL signing
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Env:          getEnv("APP_ENV", "development"),
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:  getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=franchise port=5432 sslmode=disable"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		CORSOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		RateLimit:    getEnvInt("RATE_LIMIT_PER_MINUTE", 300),
		UploadBase:   getEnv("UPLOAD_BASE_URL", "http://localhost:8080/uploads"),
		UploadSecret: getEnv("UPLOAD_SECRET", ""),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set, refusing to start")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	if cfg.UploadSecret == "" {
		cfg.UploadSecret = cfg.JWTSecret
	}
	if cfg.Env == "production" && cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS is the default value, set your real frontend origin for production")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
