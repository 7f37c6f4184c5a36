package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv loads a .env file from the working directory if one exists
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load .env file: %w", err)
}

// applyEnv overlays environment variables onto cfg
func applyEnv(cfg *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}

	setString(&cfg.DatabasePath, "DATABASE_PATH")
	setString(&cfg.UploadDir, "UPLOAD_DIR")
	setString(&cfg.MetricsAddr, "METRICS_ADDR")
	setString(&cfg.StorageBackend, "STORAGE_BACKEND")
	setString(&cfg.S3Bucket, "S3_BUCKET")
	setString(&cfg.S3Region, "S3_REGION")
	setString(&cfg.S3Endpoint, "S3_ENDPOINT")
	setString(&cfg.S3AccessKey, "S3_ACCESS_KEY")
	setString(&cfg.S3SecretKey, "S3_SECRET_KEY")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.OIDCDomain, "OIDC_DOMAIN")
	setString(&cfg.OIDCClientID, "OIDC_CLIENT_ID")
	setString(&cfg.OIDCClientSecret, "OIDC_CLIENT_SECRET")
	setString(&cfg.OIDCCallbackURL, "OIDC_CALLBACK_URL")

	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_FILE_SIZE %q: %w", v, err)
		}
		cfg.MaxFileSize = n
	}

	// The window is given in milliseconds
	if v := os.Getenv("RATE_LIMIT_WINDOW_MS"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_WINDOW_MS %q: %w", v, err)
		}
		cfg.RateLimitWindow = time.Duration(ms) * time.Millisecond
	}

	if v := os.Getenv("RATE_LIMIT_MAX_REQUESTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_MAX_REQUESTS %q: %w", v, err)
		}
		cfg.RateLimitMaxRequests = n
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST %q: %w", v, err)
		}
		cfg.BcryptCost = n
	}

	if v := os.Getenv("SESSION_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_LIFETIME %q: %w", v, err)
		}
		cfg.SessionLifetime = d
	}

	cfg.UseHTTPS = cfg.UseHTTPS || os.Getenv("USE_HTTPS") == "true"
	cfg.LogDev = cfg.LogDev || os.Getenv("LOG_DEV") == "true"

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
