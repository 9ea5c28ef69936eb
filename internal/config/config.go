// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting the API needs.
type Config struct {
	Port      string
	JWTSecret string

	// DatabaseURL is optional; without it the API runs on the in-memory
	// store.
	DatabaseURL string
	// S3Bucket is optional; without it CVs are held in memory.
	S3Bucket string

	AllowedOrigins []string
	LogLevel       string
	LogFormat      string

	AuthRatePerSecond float64
	AuthRateBurst     int
}

// Load reads the configuration. A missing .env file is not an error;
// variables already present in the environment win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		AuthRatePerSecond: getEnvFloat("AUTH_RATE_PER_SECOND", 5),
		AuthRateBurst:     getEnvInt("AUTH_RATE_BURST", 10),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	origins := getEnv("CORS_ALLOWED_ORIGINS", "*")
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
