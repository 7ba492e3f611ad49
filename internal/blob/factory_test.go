package blob

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		cfg  Config
		want Driver
	}{
		{Config{}, DriverMemory},
		{Config{Driver: DriverMemory}, DriverMemory},
		{Config{Driver: DriverFilesystem, FSRoot: filepath.Join(t.TempDir(), "blobs")}, DriverFilesystem},
		{Config{Driver: DriverS3, S3: S3Config{Bucket: "reports", AccessKeyID: "k", SecretAccessKey: "s"}}, DriverS3},
	}
	for _, c := range cases {
		store, err := Open(ctx, c.cfg)
		if err != nil {
			t.Fatalf("open %q: %v", c.cfg.Driver, err)
		}
		if store.Driver() != c.want {
			t.Fatalf("open %q: driver %s want %s", c.cfg.Driver, store.Driver(), c.want)
		}
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "gcs"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := Open(context.Background(), Config{Driver: DriverS3}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	if NewMockS3ForTests().Driver() != DriverS3 {
		t.Fatalf("expected s3 mock")
	}
}
