package core

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"auditdesk/internal/infra/persistence/memory"
	"auditdesk/internal/infra/persistence/postgres"
	pgtestutil "auditdesk/internal/infra/persistence/postgres/testutil"
	"auditdesk/internal/infra/persistence/sqlite"
)

func TestOpenPersistentStoreDrivers(t *testing.T) {
	store, err := OpenPersistentStore(StorageConfig{}, NewRulesEngine())
	if err != nil {
		t.Fatalf("default driver: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store by default, got %T", store)
	}
	if err := CloseStore(store); err != nil {
		t.Fatalf("close memory store: %v", err)
	}

	path := filepath.Join(t.TempDir(), "nested", "audit.db")
	store, err = OpenPersistentStore(StorageConfig{Driver: StorageSQLite, SQLitePath: path}, NewRulesEngine())
	if err != nil {
		t.Fatalf("sqlite driver: %v", err)
	}
	sq, ok := store.(*sqlite.Store)
	if !ok || sq.Path() != path {
		t.Fatalf("expected sqlite store at %s, got %T", path, store)
	}
	if err := CloseStore(store); err != nil {
		t.Fatalf("close sqlite store: %v", err)
	}

	if _, err := OpenPersistentStore(StorageConfig{Driver: "mongo"}, nil); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestOpenPersistentStorePostgresSeedsOnce(t *testing.T) {
	db, conn := pgtestutil.NewStubDB()
	t.Cleanup(postgres.OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil }))

	store, err := OpenPersistentStore(StorageConfig{Driver: StoragePostgres}, NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("postgres driver: %v", err)
	}
	fx, err := DefaultFixtures()
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	wrote, err := Seed(context.Background(), store, fx)
	if err != nil || !wrote {
		t.Fatalf("seed: wrote=%v err=%v", wrote, err)
	}
	if len(conn.Tables["state"]) == 0 {
		t.Fatalf("expected snapshot rows after seeding")
	}
	wrote, err = Seed(context.Background(), store, fx)
	if err != nil || wrote {
		t.Fatalf("second seed: wrote=%v err=%v", wrote, err)
	}
}
