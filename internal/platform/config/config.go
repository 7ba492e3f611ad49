// Package config reads the auditdesk process settings from the environment.
package config

import (
	"fmt"
	"time"
)

// Config holds every AUDITDESK_* setting.
type Config struct {
	HTTPAddr        string        `env:"AUDITDESK_HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"AUDITDESK_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	StorageDriver string  `env:"AUDITDESK_STORAGE_DRIVER" envDefault:"memory"`
	SQLitePath    string  `env:"AUDITDESK_SQLITE_PATH" envDefault:"auditdesk.db"`
	PostgresDSN   string  `env:"AUDITDESK_POSTGRES_DSN" envDefault:"postgres://localhost/auditdesk?sslmode=disable"`
	FixturesPath  string  `env:"AUDITDESK_FIXTURES_PATH"`
	LatencyScale  float64 `env:"AUDITDESK_LATENCY_SCALE" envDefault:"1"`

	BlobDriver      string `env:"AUDITDESK_BLOB_DRIVER" envDefault:"memory"`
	BlobFSRoot      string `env:"AUDITDESK_BLOB_FS_ROOT" envDefault:"./blobdata"`
	BlobS3Bucket    string `env:"AUDITDESK_BLOB_S3_BUCKET"`
	BlobS3Region    string `env:"AUDITDESK_BLOB_S3_REGION"`
	BlobS3Endpoint  string `env:"AUDITDESK_BLOB_S3_ENDPOINT"`
	BlobS3PathStyle bool   `env:"AUDITDESK_BLOB_S3_PATH_STYLE"`

	OTelEndpoint string `env:"AUDITDESK_OTEL_ENDPOINT"`
	TraceFile    string `env:"AUDITDESK_TRACE_FILE"`
	LogLevel     string `env:"AUDITDESK_LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"AUDITDESK_LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment and validates the enumerated settings.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown drivers and negative durations.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	switch c.BlobDriver {
	case "memory", "fs", "s3":
	default:
		return fmt.Errorf("unknown blob driver %q", c.BlobDriver)
	}
	if c.BlobDriver == "s3" && c.BlobS3Bucket == "" {
		return fmt.Errorf("AUDITDESK_BLOB_S3_BUCKET is required for the s3 blob driver")
	}
	if c.LatencyScale < 0 {
		return fmt.Errorf("latency scale must not be negative, got %g", c.LatencyScale)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown timeout must not be negative, got %s", c.ShutdownTimeout)
	}
	return nil
}
