// Package config holds runtime settings for the audio library server.
// Values are layered: defaults, then a .env file, then environment
// variables, then an optional YAML file, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Storage backends
const (
	StorageFilesystem = "fs"
	StorageS3         = "s3"
)

// Config holds runtime settings for the server
type Config struct {
	Addr         string `yaml:"addr"`
	DatabasePath string `yaml:"database_path"`
	UploadDir    string `yaml:"upload_dir"`
	MaxFileSize  int64  `yaml:"max_file_size"`

	RateLimitWindow      time.Duration `yaml:"rate_limit_window"`
	RateLimitMaxRequests int           `yaml:"rate_limit_max_requests"`

	UseHTTPS        bool          `yaml:"use_https"`
	SessionLifetime time.Duration `yaml:"session_lifetime"`
	BcryptCost      int           `yaml:"bcrypt_cost"`

	LogDev      bool   `yaml:"log_dev"`
	MetricsAddr string `yaml:"metrics_addr"`

	StorageBackend string `yaml:"storage_backend"`
	S3Bucket       string `yaml:"s3_bucket"`
	S3Region       string `yaml:"s3_region"`
	S3Endpoint     string `yaml:"s3_endpoint"`
	S3AccessKey    string `yaml:"s3_access_key"`
	S3SecretKey    string `yaml:"s3_secret_key"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`

	OIDCDomain       string `yaml:"oidc_domain"`
	OIDCClientID     string `yaml:"oidc_client_id"`
	OIDCClientSecret string `yaml:"oidc_client_secret"`
	OIDCCallbackURL  string `yaml:"oidc_callback_url"`
}

// LoadDefaults populates Config with development defaults
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabasePath = "audio_library.db"
	c.UploadDir = "./uploads"
	c.MaxFileSize = 25 * 1024 * 1024
	c.RateLimitWindow = 15 * time.Minute
	c.RateLimitMaxRequests = 100
	c.SessionLifetime = 24 * time.Hour
	c.BcryptCost = 12
	c.StorageBackend = StorageFilesystem
	c.S3Region = "us-east-1"
}

// MaxRequestBytes caps a whole multipart upload request body
func (c *Config) MaxRequestBytes() int64 {
	return c.MaxFileSize*10 + 1<<20
}

// OIDCEnabled reports whether external sign-in is configured
func (c *Config) OIDCEnabled() bool {
	return c.OIDCDomain != "" && c.OIDCClientID != ""
}

// Validate checks the loaded configuration for values the server cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if c.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Errorf("rate limit window must be positive, got %s", c.RateLimitWindow))
	}
	if c.RateLimitMaxRequests <= 0 {
		errs = append(errs, fmt.Errorf("rate limit max requests must be positive, got %d", c.RateLimitMaxRequests))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("bcrypt cost must be between 4 and 31, got %d", c.BcryptCost))
	}

	switch c.StorageBackend {
	case StorageFilesystem:
		if c.UploadDir == "" {
			errs = append(errs, errors.New("upload directory is required for the fs storage backend"))
		}
	case StorageS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3 bucket is required for the s3 storage backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}

	return errors.Join(errs...)
}

// Load builds a Config from defaults, .env, environment, an optional YAML file and flags
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	configFile, err := configFileFromArgs(args)
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		if err := applyYAML(cfg, configFile); err != nil {
			return nil, err
		}
	}

	if err := applyFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
