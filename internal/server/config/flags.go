package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/chippom/ChipsGIFs/internal/flagx"
)

var shortFlags = []string{"-a", "-k", "-d", "-b", "-e", "-g", "-u", "-p", "-s", "-t", "-r", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-k string   database driver: postgres or sqlite
//	-d string   database DSN
//	-b string   S3 bucket name
//	-e string   S3 base endpoint
//	-g string   S3 region
//	-u string   S3 access key
//	-p string   S3 secret key
//	-s string   static GIF directory
//	-t string   ipinfo.io token
//	-r string   redis URL (enables the redis geo cache)
//	-l string   log level
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "k", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.StaticDir, "s", config.StaticDir, "static GIF directory")
	fs.StringVar(&config.IPInfoToken, "t", config.IPInfoToken, "ipinfo.io token")
	redisURL := fs.String("r", "", "redis URL for the geolocation cache")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, shortFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if *redisURL != "" {
		config.RedisURL = *redisURL
		config.GeoCacheBackend = GeoCacheRedis
	}
	return nil
}
