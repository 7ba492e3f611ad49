package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"auditdesk/internal/blob/core"
)

func TestMockStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests()
	if s.Driver() != core.DriverS3 || s.Bucket() != "mock-bucket" {
		t.Fatalf("unexpected store %s %s", s.Driver(), s.Bucket())
	}
	info, err := s.Put(ctx, "exports/j1/stores.csv", strings.NewReader("Id,Name\n1,Downtown\n"), core.PutOptions{ContentType: "text/csv"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "exports/j1/stores.csv" || info.Size != 19 || info.ContentType != "text/csv" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "exports/j1/stores.csv", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	_, rc, err := s.Get(ctx, "exports/j1/stores.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "Id,Name\n1,Downtown\n" {
		t.Fatalf("unexpected body %q", body)
	}

	if _, err := s.Put(ctx, "exports/j2/kpis.json", strings.NewReader("[]"), core.PutOptions{}); err != nil {
		t.Fatalf("put second: %v", err)
	}
	list, err := s.List(ctx, "exports/j1/")
	if err != nil || len(list) != 1 || list[0].Key != "exports/j1/stores.csv" {
		t.Fatalf("list: %v %+v", err, list)
	}

	u, err := s.PresignURL(ctx, "exports/j1/stores.csv", core.SignedURLOptions{Expiry: time.Minute})
	if err != nil || !strings.Contains(u, "exports/j1/stores.csv") {
		t.Fatalf("presign: %v %q", err, u)
	}
	if _, err := s.PresignURL(ctx, "exports/j1/stores.csv", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}

	if ok, err := s.Delete(ctx, "exports/j1/stores.csv"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := s.Delete(ctx, "exports/j1/stores.csv"); err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
	if _, err := s.Head(ctx, "exports/j1/stores.csv"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
}

func TestNewWithStaticCredentials(t *testing.T) {
	s, err := New(context.Background(), Config{
		Bucket:          "reports",
		Endpoint:        "http://127.0.0.1:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		PathStyle:       true,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Bucket() != "reports" {
		t.Fatalf("unexpected bucket %s", s.Bucket())
	}
}

func TestDecodeChunked(t *testing.T) {
	got, ok := decodeChunked([]byte("5\r\nhello\r\n0\r\nx-amz-checksum-crc32:abc\r\n\r\n"))
	if !ok || string(got) != "hello" {
		t.Fatalf("decode: %q %v", got, ok)
	}
	if _, ok := decodeChunked([]byte("plain body")); ok {
		t.Fatalf("plain body must not decode")
	}
}
