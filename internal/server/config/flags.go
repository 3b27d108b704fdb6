package config

import (
	"flag"

	"github.com/dmitrijs2005/sharebox/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP listen address (e.g. ":3000")
//	-m string   metrics listen address ("" disables)
//	-k string   shared access code
//	-s string   session secret
//	-d string   PostgreSQL DSN for connection profiles
//	-e string   S3 endpoint (e.g. "http://127.0.0.1:9000")
//	-g string   S3 region
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket
//	-l string   log level
//
// Only these flags are parsed; the rest of args is ignored.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-m", "-k", "-s", "-d", "-e", "-g", "-u", "-p", "-b", "-l"})

	fs := flag.NewFlagSet("sharebox", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics address")
	fs.StringVar(&config.AccessCode, "k", config.AccessCode, "shared access code")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session secret")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.S3Endpoint, "e", config.S3Endpoint, "S3 endpoint")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
