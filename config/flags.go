package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// configFileFromArgs finds the value of -config / --config without parsing the other flags
func configFileFromArgs(args []string) (string, error) {
	for i, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value, nil
		}
		if i+1 >= len(args) {
			return "", fmt.Errorf("flag -config needs a value")
		}
		return args[i+1], nil
	}
	return "", nil
}

// applyYAML overlays values from a YAML file; keys absent from the file keep their current value
func applyYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyFlags overlays command-line flags onto cfg.
//
//	-addr string          listen address (e.g. ":8080")
//	-db string            SQLite database path
//	-upload-dir string    directory for uploaded audio
//	-max-file-size int    per-file upload limit in bytes
//	-storage string       storage backend (fs or s3)
//	-metrics-addr string  listen address for /metrics, empty disables it
//	-dev                  development logging
//	-config string        YAML config file (read before flags are applied)
func applyFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("audio-library", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database path")
	fs.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "directory for uploaded audio")
	fs.Int64Var(&cfg.MaxFileSize, "max-file-size", cfg.MaxFileSize, "per-file upload limit in bytes")
	fs.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "storage backend (fs or s3)")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "metrics listen address")
	fs.BoolVar(&cfg.LogDev, "dev", cfg.LogDev, "development logging")
	fs.String("config", "", "YAML config file")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	return nil
}
