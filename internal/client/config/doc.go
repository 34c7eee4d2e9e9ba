// Package config loads runtime configuration for gifctl.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. GIFCTL_* and S3_* environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string     base URL of the ChipsGIFs server
//	-t duration   per-request timeout
//	-k string     IndexNow key
//	-b string     S3 bucket for publish
//
// # JSON schema
//
// Durations can be strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_url": "https://chips-gifs.com",
//	  "request_timeout": "30s",
//	  "indexnow_key": "0123abcd",
//	  "site_urls": ["https://chips-gifs.com/"]
//	}
//
// Flags stop at the first non-flag argument; the rest is returned to the
// caller as the command line.
package config
