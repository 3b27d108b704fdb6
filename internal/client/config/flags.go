package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the sharebox server
//	-i int      listing poll interval in seconds (0 disables the watcher)
//	-d string   download directory
//
// Only these flags are looked at; the rest of args is ignored.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the server")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Seconds()), "listing poll interval (in seconds)")
	fs.StringVar(&cfg.DownloadDir, "d", cfg.DownloadDir, "download directory")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
	return nil
}
