package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sharebox/internal/flagx"
	"github.com/dmitrijs2005/sharebox/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations may
// be written as "15s" or integer nanoseconds. Absent fields keep the
// value from earlier layers.
type JsonConfig struct {
	HTTPAddr         string          `json:"http_addr"`
	MetricsAddr      *string         `json:"metrics_addr"`
	ShutdownTimeout  *timex.Duration `json:"shutdown_timeout"`
	AccessCode       string          `json:"access_code"`
	AccessCodeHash   string          `json:"access_code_hash"`
	SessionSecret    string          `json:"session_secret"`
	SecureCookies    *bool           `json:"secure_cookies"`
	AuthRateLimit    *float64        `json:"auth_rate_limit"`
	AuthRateBurst    *int            `json:"auth_rate_burst"`
	S3Endpoint       string          `json:"s3_endpoint"`
	S3Region         string          `json:"s3_region"`
	S3AccessKey      string          `json:"s3_access_key"`
	S3SecretKey      string          `json:"s3_secret_key"`
	S3Bucket         string          `json:"s3_bucket"`
	PresignExpiry    *timex.Duration `json:"presign_expiry"`
	UploadMode       string          `json:"upload_mode"`
	MaxUploadSize    *int            `json:"max_upload_size"`
	RetryMaxAttempts *int            `json:"retry_max_attempts"`
	RetryBaseDelay   *timex.Duration `json:"retry_base_delay"`
	BreakerFailures  *int            `json:"breaker_failures"`
	BreakerTimeout   *timex.Duration `json:"breaker_timeout"`
	DatabaseDSN      string          `json:"database_dsn"`
	ProfileSecret    string          `json:"profile_secret"`
	LogBackend       string          `json:"log_backend"`
	LogLevel         string          `json:"log_level"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson overlays values from the file named by -c/-config (or
// $SHAREBOX_CONFIG). No path means nothing to do.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	if c.MetricsAddr != nil {
		config.MetricsAddr = *c.MetricsAddr
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	setString(&config.AccessCode, c.AccessCode)
	setString(&config.AccessCodeHash, c.AccessCodeHash)
	setString(&config.SessionSecret, c.SessionSecret)
	if c.SecureCookies != nil {
		config.SecureCookies = *c.SecureCookies
	}
	if c.AuthRateLimit != nil {
		config.AuthRateLimit = *c.AuthRateLimit
	}
	if c.AuthRateBurst != nil {
		config.AuthRateBurst = *c.AuthRateBurst
	}
	setString(&config.S3Endpoint, c.S3Endpoint)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	if c.PresignExpiry != nil {
		config.PresignExpiry = c.PresignExpiry.Duration
	}
	setString(&config.UploadMode, c.UploadMode)
	if c.MaxUploadSize != nil {
		config.MaxUploadSize = *c.MaxUploadSize
	}
	if c.RetryMaxAttempts != nil {
		config.RetryMaxAttempts = *c.RetryMaxAttempts
	}
	if c.RetryBaseDelay != nil {
		config.RetryBaseDelay = c.RetryBaseDelay.Duration
	}
	if c.BreakerFailures != nil {
		config.BreakerFailures = *c.BreakerFailures
	}
	if c.BreakerTimeout != nil {
		config.BreakerTimeout = c.BreakerTimeout.Duration
	}
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.ProfileSecret, c.ProfileSecret)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogLevel, c.LogLevel)
	return nil
}
