package blob

import (
	"context"
	"fmt"

	fsstore "auditdesk/internal/infra/blob/fs"
	memorystore "auditdesk/internal/infra/blob/memory"
	s3store "auditdesk/internal/infra/blob/s3"
)

// Config selects and configures a blob backend.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// S3Config carries the settings for the S3 driver.
type S3Config = s3store.Config

// Open returns the backend named by cfg.Driver. An empty driver selects memory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

// NewMemory returns an in-memory blob.Store.
func NewMemory() Store { return memorystore.New() }

// NewFilesystem constructs a filesystem-backed blob.Store rooted at root.
func NewFilesystem(root string) (Store, error) {
	return fsstore.New(root)
}

// NewS3 constructs an S3-backed blob.Store.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return s3store.New(ctx, cfg)
}

// NewMockS3ForTests exposes the offline S3 fake for cross-package tests.
func NewMockS3ForTests() Store { return s3store.NewMockForTests() }
