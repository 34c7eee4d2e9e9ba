package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chippom/ChipsGIFs/internal/flagx"
	"github.com/chippom/ChipsGIFs/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL        string         `json:"server_url"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
	IndexNowEndpoint string         `json:"indexnow_endpoint"`
	IndexNowKey      string         `json:"indexnow_key"`
	SiteURLs         []string       `json:"site_urls"`
	S3AccessKey      string         `json:"s3_access_key"`
	S3SecretKey      string         `json:"s3_secret_key"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	S3UsePathStyle   *bool          `json:"s3_use_path_style"`
}

// parseJson overlays cfg with the non-empty values of the file named by
// -c/-config.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.IndexNowEndpoint, jc.IndexNowEndpoint)
	setString(&cfg.IndexNowKey, jc.IndexNowKey)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)

	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if len(jc.SiteURLs) > 0 {
		cfg.SiteURLs = jc.SiteURLs
	}
	if jc.S3UsePathStyle != nil {
		cfg.S3UsePathStyle = *jc.S3UsePathStyle
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
