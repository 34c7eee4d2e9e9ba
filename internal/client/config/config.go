package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for gifctl. The S3 fields are only needed
// by publish and the IndexNow fields only by indexnow.
type Config struct {
	ServerURL      string        `env:"GIFCTL_SERVER_URL" validate:"required,url"`
	RequestTimeout time.Duration `env:"GIFCTL_REQUEST_TIMEOUT" validate:"gt=0"`

	IndexNowEndpoint string   `env:"GIFCTL_INDEXNOW_ENDPOINT" validate:"required,url"`
	IndexNowKey      string   `env:"GIFCTL_INDEXNOW_KEY"`
	SiteURLs         []string `env:"GIFCTL_SITE_URLS" envSeparator:"," validate:"dive,url"`

	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION"`
	S3BaseEndpoint string `env:"S3_BASE_ENDPOINT" validate:"omitempty,url"`
	S3UsePathStyle bool   `env:"S3_USE_PATH_STYLE"`
}

// LoadDefaults populates c with defaults pointing at a local server.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 30 * time.Second
	c.IndexNowEndpoint = "https://www.bing.com/indexnow"
	c.SiteURLs = []string{
		"https://chips-gifs.com/",
		"https://chips-gifs.com/page_2",
		"https://chips-gifs.com/page_3",
		"https://chips-gifs.com/page_4",
	}
	c.S3Region = "auto"
	c.S3UsePathStyle = true
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig builds a Config from defaults, the JSON file, the environment
// and flags, and returns the arguments left after the flags.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, nil, err
	}
	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}
