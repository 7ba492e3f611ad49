package core

import (
	"fmt"
	"io"

	"auditdesk/internal/infra/persistence/memory"
	"auditdesk/internal/infra/persistence/postgres"
	"auditdesk/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only, reset on restart
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite snapshot file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL snapshot table
)

// StorageConfig selects and parameterises a backend.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
}

// OpenPersistentStore builds the configured backend. Defaults to memory when
// the driver is unset. Empty paths fall back to each backend's default.
func OpenPersistentStore(cfg StorageConfig, engine *RulesEngine) (PersistentStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = StorageMemory
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		store, err := sqlite.NewStore(cfg.SQLitePath, engine)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoragePostgres:
		store, err := postgres.NewStore(cfg.PostgresDSN, engine)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// CloseStore closes store when the backend holds resources.
func CloseStore(store PersistentStore) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
