package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "APP_ENV", "LOG_LEVEL", "DATABASE_URL", "SCHEDULER_ENABLED", "SCHEDULER_INTERVAL",
		"SCHEDULER_INTERVAL_MS", "FRONTEND_ORIGIN", "S3_BUCKET", "MEDIA_DEFAULT_FOLDER", "UPLOAD_RATE_LIMIT_RPM",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, 60*time.Second, cfg.SchedulerInterval)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.FrontendOrigins)
	assert.Equal(t, "quick-facts", cfg.MediaFolder)
	assert.Equal(t, 60, cfg.UploadRateLimitRPM)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("SCHEDULER_INTERVAL", "")
	t.Setenv("SCHEDULER_INTERVAL_MS", "1500")
	t.Setenv("FRONTEND_ORIGIN", " https://a.example.com , ,https://b.example.com")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.SchedulerEnabled)
	assert.Equal(t, 1500*time.Millisecond, cfg.SchedulerInterval)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.FrontendOrigins)
}

func TestSchedulerInterval_DurationWins(t *testing.T) {
	t.Setenv("SCHEDULER_INTERVAL", "2m")
	t.Setenv("SCHEDULER_INTERVAL_MS", "1000")
	assert.Equal(t, 2*time.Minute, schedulerInterval())

	t.Setenv("SCHEDULER_INTERVAL", "soon")
	assert.Equal(t, time.Second, schedulerInterval())
}

func TestValidate(t *testing.T) {
	missing, err := (&Config{}).Validate()
	require.Error(t, err)
	assert.Equal(t, []string{"DATABASE_URL", "S3_BUCKET"}, missing)

	missing, err = (&Config{DatabaseURL: "postgres://x"}).Validate()
	require.NoError(t, err)
	assert.Equal(t, []string{"S3_BUCKET"}, missing)

	missing, err = (&Config{DatabaseURL: "postgres://x", S3Bucket: "b"}).Validate()
	require.NoError(t, err)
	assert.Empty(t, missing)
}
