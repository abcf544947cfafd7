package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction = "production"

	defaultSchedulerInterval = 60 * time.Second
	defaultFrontendOrigin    = "http://localhost:3000"
)

type Config struct {
	Port     string
	Env      string
	LogLevel slog.Level

	DatabaseURL string

	SchedulerEnabled  bool
	SchedulerInterval time.Duration

	FrontendOrigins []string

	S3Bucket           string
	AWSRegion          string
	S3Endpoint         string
	MediaPublicBaseURL string
	MediaFolder        string
	UploadRateLimitRPM int

	RabbitMQURL string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Default().Warn("loading .env failed", "error", err)
	}

	return &Config{
		Port:               getEnv("PORT", "4000"),
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           parseLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SchedulerEnabled:   getBool("SCHEDULER_ENABLED", true),
		SchedulerInterval:  schedulerInterval(),
		FrontendOrigins:    splitOrigins(os.Getenv("FRONTEND_ORIGIN")),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		MediaPublicBaseURL: getEnv("MEDIA_PUBLIC_BASE_URL", ""),
		MediaFolder:        getEnv("MEDIA_DEFAULT_FOLDER", "quick-facts"),
		UploadRateLimitRPM: getInt("UPLOAD_RATE_LIMIT_RPM", 60),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate lists required settings that are missing. The API refuses to
// start without a database; a missing media bucket only disables uploads.
func (c *Config) Validate() (missing []string, err error) {
	if c.S3Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if c.DatabaseURL == "" {
		missing = append([]string{"DATABASE_URL"}, missing...)
		return missing, fmt.Errorf("DATABASE_URL is required")
	}
	return missing, nil
}

// schedulerInterval reads SCHEDULER_INTERVAL as a Go duration, falling back
// to SCHEDULER_INTERVAL_MS in milliseconds.
func schedulerInterval() time.Duration {
	if v := os.Getenv("SCHEDULER_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		slog.Default().Warn("invalid SCHEDULER_INTERVAL, using default", "value", v)
	}
	if ms := getInt("SCHEDULER_INTERVAL_MS", 0); ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultSchedulerInterval
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{defaultFrontendOrigin}
	}
	return origins
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Default().Warn("invalid integer setting", "key", key, "value", v)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
