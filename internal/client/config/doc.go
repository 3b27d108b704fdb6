// Package config loads runtime configuration for the sharebox CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c / -config or
//     $SHAREBOX_CONFIG.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the server
//	-i int      listing poll interval (seconds)
//	-d string   download directory
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "poll_interval": "5s",
//	  "request_timeout": "30s",
//	  "download_dir": "downloads"
//	}
package config
