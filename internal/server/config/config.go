// Package config handles configuration for the sharebox server: defaults,
// an optional JSON file, environment variables (including a .env file) and
// command-line flags, applied in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Upload modes.
const (
	UploadModePresigned = "presigned"
	UploadModeDirect    = "direct"
)

// Config holds runtime settings for the sharebox server.
//
// Fields:
//   - HTTPAddr / MetricsAddr: listen addresses (empty MetricsAddr disables metrics).
//   - AccessCode / AccessCodeHash: the shared access code, plain or bcrypt.
//   - SessionSecret: HMAC key for session tokens. Generated at start-up when empty.
//   - S3*: default object store settings; checked when the store client is built.
//   - PresignExpiry: lifetime of presigned upload URLs.
//   - UploadMode: "presigned" (PUT against a presigned URL) or "direct" (SDK upload).
//   - RetryMaxAttempts / RetryBaseDelay: clock-skew retry policy.
//   - BreakerFailures / BreakerTimeout: store circuit breaker (0 failures disables it).
//   - DatabaseDSN: "postgres://..." or "sqlite:<path>" for connection profiles;
//     empty keeps them in memory.
//   - ProfileSecret: key sealing profile secret keys at rest; defaults to SessionSecret.
type Config struct {
	HTTPAddr        string        `validate:"required"`
	MetricsAddr     string
	ShutdownTimeout time.Duration `validate:"min=1s"`

	AccessCode     string
	AccessCodeHash string
	SessionSecret  string
	SecureCookies  bool
	AuthRateLimit  float64 `validate:"gt=0"`
	AuthRateBurst  int     `validate:"min=1"`

	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	PresignExpiry    time.Duration `validate:"min=1s,max=168h"`
	UploadMode       string        `validate:"oneof=presigned direct"`
	MaxUploadSize    int           `validate:"min=1"`
	RetryMaxAttempts int           `validate:"min=1,max=10"`
	RetryBaseDelay   time.Duration `validate:"min=0"`
	BreakerFailures  int           `validate:"min=0"`
	BreakerTimeout   time.Duration `validate:"min=1s"`

	DatabaseDSN   string
	ProfileSecret string

	LogBackend string `validate:"oneof=slog zap"`
	LogLevel   string `validate:"oneof=debug info warn error"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":3000"
	c.MetricsAddr = ":9090"
	c.ShutdownTimeout = 15 * time.Second
	c.AuthRateLimit = 1
	c.AuthRateBurst = 5
	c.S3Region = "us-east-1"
	c.PresignExpiry = time.Hour
	c.UploadMode = UploadModePresigned
	// fasthttp buffers the whole request body before FormFile sees it.
	c.MaxUploadSize = 64 << 20
	c.RetryMaxAttempts = 3
	c.RetryBaseDelay = time.Second
	c.BreakerFailures = 5
	c.BreakerTimeout = 30 * time.Second
	c.LogBackend = "slog"
	c.LogLevel = "info"
}

var validate = validator.New()

// Validate checks field constraints. Store settings are not checked here;
// the storage layer rejects them when a client is built.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load builds a Config from defaults, then the JSON file, then the
// environment, then flags found in args. Later sources win.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if cfg.ProfileSecret == "" {
		cfg.ProfileSecret = cfg.SessionSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
