package config

import (
	"flag"
	"fmt"
	"io"
)

// parseFlags applies command-line flags and returns the remaining
// arguments. -c/-config are accepted and ignored here; parseJson has
// already used them.
func parseFlags(cfg *Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("gifctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var ignored string
	fs.StringVar(&ignored, "c", "", "config file")
	fs.StringVar(&ignored, "config", "", "config file")

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server base URL")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.IndexNowKey, "k", cfg.IndexNowKey, "IndexNow key")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket for publish")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	return fs.Args(), nil
}
