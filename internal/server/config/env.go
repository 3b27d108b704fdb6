package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// dotenvFiles are loaded (when present) before the environment is read.
// Variables already set in the process environment are not overridden.
var dotenvFiles = []string{".env"}

// envBindings maps config keys to environment variable names.
var envBindings = map[string]string{
	"http_addr":          "HTTP_ADDR",
	"metrics_addr":       "METRICS_ADDR",
	"shutdown_timeout":   "SHUTDOWN_TIMEOUT",
	"access_code":        "ACCESS_CODE",
	"access_code_hash":   "ACCESS_CODE_HASH",
	"session_secret":     "SESSION_SECRET",
	"secure_cookies":     "SECURE_COOKIES",
	"auth_rate_limit":    "AUTH_RATE_LIMIT",
	"auth_rate_burst":    "AUTH_RATE_BURST",
	"s3_endpoint":        "S3_ENDPOINT",
	"s3_region":          "S3_REGION",
	"s3_access_key":      "S3_ACCESS_KEY",
	"s3_secret_key":      "S3_SECRET_KEY",
	"s3_bucket":          "S3_BUCKET",
	"presign_expiry":     "PRESIGN_EXPIRY",
	"upload_mode":        "UPLOAD_MODE",
	"max_upload_size":    "MAX_UPLOAD_SIZE",
	"retry_max_attempts": "RETRY_MAX_ATTEMPTS",
	"retry_base_delay":   "RETRY_BASE_DELAY",
	"breaker_failures":   "BREAKER_FAILURES",
	"breaker_timeout":    "BREAKER_TIMEOUT",
	"database_dsn":       "DATABASE_DSN",
	"profile_secret":     "PROFILE_SECRET",
	"log_backend":        "LOG_BACKEND",
	"log_level":          "LOG_LEVEL",
}

func loadDotenv() error {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// parseEnv overlays values from environment variables. Empty variables are
// treated as unset.
func parseEnv(config *Config) error {
	if err := loadDotenv(); err != nil {
		return err
	}

	v := viper.New()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	str("http_addr", &config.HTTPAddr)
	str("metrics_addr", &config.MetricsAddr)
	str("access_code", &config.AccessCode)
	str("access_code_hash", &config.AccessCodeHash)
	str("session_secret", &config.SessionSecret)
	str("s3_endpoint", &config.S3Endpoint)
	str("s3_region", &config.S3Region)
	str("s3_access_key", &config.S3AccessKey)
	str("s3_secret_key", &config.S3SecretKey)
	str("s3_bucket", &config.S3Bucket)
	str("upload_mode", &config.UploadMode)
	str("database_dsn", &config.DatabaseDSN)
	str("profile_secret", &config.ProfileSecret)
	str("log_backend", &config.LogBackend)
	str("log_level", &config.LogLevel)

	if v.IsSet("shutdown_timeout") {
		config.ShutdownTimeout = v.GetDuration("shutdown_timeout")
	}
	if v.IsSet("secure_cookies") {
		config.SecureCookies = v.GetBool("secure_cookies")
	}
	if v.IsSet("auth_rate_limit") {
		config.AuthRateLimit = v.GetFloat64("auth_rate_limit")
	}
	if v.IsSet("auth_rate_burst") {
		config.AuthRateBurst = v.GetInt("auth_rate_burst")
	}
	if v.IsSet("presign_expiry") {
		config.PresignExpiry = v.GetDuration("presign_expiry")
	}
	if v.IsSet("max_upload_size") {
		config.MaxUploadSize = v.GetInt("max_upload_size")
	}
	if v.IsSet("retry_max_attempts") {
		config.RetryMaxAttempts = v.GetInt("retry_max_attempts")
	}
	if v.IsSet("retry_base_delay") {
		config.RetryBaseDelay = v.GetDuration("retry_base_delay")
	}
	if v.IsSet("breaker_failures") {
		config.BreakerFailures = v.GetInt("breaker_failures")
	}
	if v.IsSet("breaker_timeout") {
		config.BreakerTimeout = v.GetDuration("breaker_timeout")
	}
	return nil
}
