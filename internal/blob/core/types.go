// Package core defines the object storage contract shared by blob backends.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	// DriverFilesystem stores objects under a local directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 targets AWS S3 or a compatible service such as MinIO.
	DriverS3 Driver = "s3"
	// DriverMemory keeps objects in process memory.
	DriverMemory Driver = "memory"
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// SignedURLOptions holds options for generating a pre-signed URL.
type SignedURLOptions struct {
	Method string        // only GET is supported
	Expiry time.Duration // default 15m
}

// Info describes a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	URL          string            `json:"url,omitempty"`
}

// Store is a create-only object store. Put fails with ErrExists when the key
// is taken; Get and Head fail with ErrNotFound when it is missing.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	PresignURL(ctx context.Context, key string, opts SignedURLOptions) (string, error)
	Driver() Driver
}

var (
	// ErrUnsupported is returned when an optional capability is not available.
	ErrUnsupported = errors.New("blob: unsupported operation")
	// ErrNotFound is returned for missing keys.
	ErrNotFound = errors.New("blob: not found")
	// ErrExists is returned when Put targets an existing key.
	ErrExists = errors.New("blob: already exists")
)

// CleanKey validates a slash separated object key and returns its canonical
// form. Empty keys, absolute keys and keys escaping the root are rejected.
func CleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("blob: empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("blob: absolute key %q", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", fmt.Errorf("blob: key %q escapes root", key)
		}
	}
	return path.Clean(key), nil
}

// CloneMetadata copies a metadata map so callers cannot alias stored state.
func CloneMetadata(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
