package postgres

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"auditdesk/internal/infra/persistence/memory"
	"auditdesk/internal/infra/persistence/postgres/testutil"
	"auditdesk/pkg/domain"
)

func openStub(t *testing.T) (*sql.DB, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	return db, conn
}

func TestNewStoreCreatesTableAndLoadsSnapshot(t *testing.T) {
	_, conn := openStub(t)
	seed := memory.Snapshot{
		Stores:    []domain.Store{{ID: 7, Name: "Harbour", Region: "South"}},
		Sequences: memory.Sequences{Store: 7},
	}
	for _, bucket := range memory.Buckets {
		payload, err := seed.EncodeBucket(bucket)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		conn.Tables["state"] = append(conn.Tables["state"], map[string]any{"bucket": bucket, "payload": payload})
	}

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if !store.Seeded() {
		t.Fatalf("expected seeded store")
	}
	if st, ok := committed(t, store).FindStore(7); !ok || st.Name != "Harbour" {
		t.Fatalf("expected store loaded from snapshot, got %+v", st)
	}
	var sawDDL bool
	for _, stmt := range conn.Execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", conn.Execs)
	}
}

func TestRunInTransactionPersistsState(t *testing.T) {
	_, conn := openStub(t)
	store, err := NewStore("ignored", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if store.Seeded() {
		t.Fatalf("empty table must not report seeded")
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateKPI(domain.KPI{Name: "Compliance", Value: 92})
		return err
	}); err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
	if got := len(conn.Tables["state"]); got != len(memory.Buckets) {
		t.Fatalf("expected %d bucket rows, got %d", len(memory.Buckets), got)
	}
	if !store.Seeded() {
		t.Fatalf("expected seeded after persist")
	}

	reloaded, err := NewStore("ignored", nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if k, ok := committed(t, reloaded).FindKPI(1); !ok || k.Name != "Compliance" {
		t.Fatalf("expected reloaded kpi, got %+v", k)
	}
	if reloaded.DB() == nil {
		t.Fatalf("expected db handle")
	}
}

func TestRunInTransactionStopsOnUserError(t *testing.T) {
	_, conn := openStub(t)
	store, err := NewStore("ignored", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	execs := len(conn.Execs)
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.DeleteAudit("AUD404")
	})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(conn.Execs) != execs {
		t.Fatalf("failed transaction must not persist")
	}
}

func TestPersistFailures(t *testing.T) {
	cases := map[string]func(*testutil.StubConn){
		"begin":  func(c *testutil.StubConn) { c.FailBegin = true },
		"upsert": func(c *testutil.StubConn) { c.FailTables = map[string]bool{"state": true} },
		"commit": func(c *testutil.StubConn) { c.FailCommit = true },
	}
	for name, arm := range cases {
		t.Run(name, func(t *testing.T) {
			_, conn := openStub(t)
			store, err := NewStore("ignored", nil)
			if err != nil {
				t.Fatalf("NewStore: %v", err)
			}
			arm(conn)
			_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
				_, err := tx.CreateStore(domain.Store{Name: "X"})
				return err
			})
			if err == nil || !strings.Contains(err.Error(), "persist snapshot") {
				t.Fatalf("expected persist error, got %v", err)
			}
			if got := len(committed(t, store).ListStores()); got != 0 {
				t.Fatalf("failed persist must restore memory, found %d stores", got)
			}
			if store.Seeded() {
				t.Fatalf("failed persist must not report seeded")
			}
		})
	}
}

func TestNewStoreErrors(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, sql.ErrConnDone })
		defer restore()
		if _, err := NewStore("", nil); err == nil {
			t.Fatalf("expected open error")
		}
	})
	t.Run("ping", func(t *testing.T) {
		_, conn := openStub(t)
		conn.FailPing = true
		if _, err := NewStore("", nil); err == nil || !strings.Contains(err.Error(), "ping") {
			t.Fatalf("expected ping error, got %v", err)
		}
	})
	t.Run("ddl", func(t *testing.T) {
		_, conn := openStub(t)
		conn.FailExec = true
		if _, err := NewStore("", nil); err == nil || !strings.Contains(err.Error(), "state table") {
			t.Fatalf("expected ddl error, got %v", err)
		}
	})
	t.Run("decode", func(t *testing.T) {
		_, conn := openStub(t)
		conn.Tables["state"] = []map[string]any{{"bucket": "audits", "payload": []byte("{")}}
		if _, err := NewStore("", nil); err == nil || !strings.Contains(err.Error(), "decode audits") {
			t.Fatalf("expected decode error, got %v", err)
		}
	})
	t.Run("rows", func(t *testing.T) {
		_, conn := openStub(t)
		conn.RowsErr = sql.ErrTxDone
		if _, err := NewStore("", nil); err == nil {
			t.Fatalf("expected iterate error")
		}
	})
}

// committed returns a detached view of the committed state.
func committed(t *testing.T, store domain.PersistentStore) domain.TransactionView {
	t.Helper()
	var view domain.TransactionView
	if err := store.View(context.Background(), func(v domain.TransactionView) error {
		view = v
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	return view
}
