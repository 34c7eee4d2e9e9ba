package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chippom/ChipsGIFs/internal/flagx"
	"github.com/chippom/ChipsGIFs/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Absent keys keep the
// value already in Config; pointers distinguish "false" from "absent".
type JsonConfig struct {
	HTTPAddr          string         `json:"http_addr"`
	DatabaseDriver    string         `json:"database_driver"`
	DatabaseDSN       string         `json:"database_dsn"`
	S3AccessKey       string         `json:"s3_access_key"`
	S3SecretKey       string         `json:"s3_secret_key"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	S3UsePathStyle    *bool          `json:"s3_use_path_style"`
	StaticDir         string         `json:"static_dir"`
	RemoteFallbackURL string         `json:"remote_fallback_url"`
	IPInfoToken       string         `json:"ipinfo_token"`
	IPInfoBaseURL     string         `json:"ipinfo_base_url"`
	GeoLookupTimeout  timex.Duration `json:"geo_lookup_timeout"`
	GeoCacheTTL       timex.Duration `json:"geo_cache_ttl"`
	GeoCacheBackend   string         `json:"geo_cache_backend"`
	RedisURL          string         `json:"redis_url"`
	DisplayTimeZone   string         `json:"display_time_zone"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	TelemetryTimeout  timex.Duration `json:"telemetry_timeout"`
	ShutdownTimeout   timex.Duration `json:"shutdown_timeout"`
	CountOnDeliver    *bool          `json:"count_on_deliver"`
	AllowedOrigin     string         `json:"allowed_origin"`
	LogLevel          string         `json:"log_level"`
	LogBackend        string         `json:"log_backend"`
	OTelEndpoint      string         `json:"otel_endpoint"`
}

// parseJson overlays the file named by -c/-config, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setBool(&config.S3UsePathStyle, c.S3UsePathStyle)
	setString(&config.StaticDir, c.StaticDir)
	setString(&config.RemoteFallbackURL, c.RemoteFallbackURL)
	setString(&config.IPInfoToken, c.IPInfoToken)
	setString(&config.IPInfoBaseURL, c.IPInfoBaseURL)
	setDuration(&config.GeoLookupTimeout, c.GeoLookupTimeout)
	setDuration(&config.GeoCacheTTL, c.GeoCacheTTL)
	setString(&config.GeoCacheBackend, c.GeoCacheBackend)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.DisplayTimeZone, c.DisplayTimeZone)
	setDuration(&config.RequestTimeout, c.RequestTimeout)
	setDuration(&config.TelemetryTimeout, c.TelemetryTimeout)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
	setBool(&config.CountOnDeliver, c.CountOnDeliver)
	setString(&config.AllowedOrigin, c.AllowedOrigin)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.OTelEndpoint, c.OTelEndpoint)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
