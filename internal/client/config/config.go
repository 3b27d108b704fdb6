package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the sharebox CLI.
//
// Fields:
//   - ServerURL: base URL of the sharebox server.
//   - PollInterval: how often the watcher refreshes the listing.
//   - RequestTimeout: per-request limit for API calls other than transfers.
//   - DownloadDir: where "get" saves files when no destination is given.
type Config struct {
	ServerURL      string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	DownloadDir    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.PollInterval = 5 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.DownloadDir = "downloads"
}

// Load constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags found in args. Later sources
// take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
