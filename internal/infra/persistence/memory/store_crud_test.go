package memory

import (
	"context"
	"testing"

	"auditdesk/pkg/domain"
)

func TestAuditLifecycle(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	responses := []domain.AuditResponse{{Question: "Clean?", Rating: domain.RatingGreen}}
	var created domain.Audit
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateAudit(domain.Audit{StoreID: "1", Status: domain.AuditScheduled, Responses: responses})
		return err
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "AUD001" {
		t.Fatalf("expected AUD001, got %q", created.ID)
	}

	responses[0].Rating = domain.RatingRed
	if got, _ := committed(t, store).FindAudit("AUD001"); got.Responses[0].Rating != domain.RatingGreen {
		t.Fatalf("stored audit shares caller slice")
	}

	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateAudit("AUD001", func(a *domain.Audit) error {
			a.ID = "AUD999"
			a.Status = domain.AuditCompleted
			a.Responses[0].Comments = "done"
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, ok := committed(t, store).FindAudit("AUD001")
	if !ok || got.Status != domain.AuditCompleted || got.Responses[0].Comments != "done" {
		t.Fatalf("unexpected updated audit %+v", got)
	}
	if _, ok := committed(t, store).FindAudit("AUD999"); ok {
		t.Fatalf("update must not change the identifier")
	}

	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if err := tx.DeleteAudit("AUD001"); err != nil {
			return err
		}
		next, err := tx.CreateAudit(domain.Audit{StoreID: "2"})
		if err != nil {
			return err
		}
		if next.ID != "AUD002" {
			t.Fatalf("deleted identifiers must not be reissued, got %q", next.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestPresetIdentityAdvancesSequence(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateAudit(domain.Audit{ID: "AUD005"}); err != nil {
			return err
		}
		if _, err := tx.CreateAudit(domain.Audit{ID: "AUD005"}); err == nil {
			t.Fatalf("expected duplicate audit error")
		}
		a, err := tx.CreateAudit(domain.Audit{})
		if err != nil {
			return err
		}
		if a.ID != "AUD006" {
			t.Fatalf("expected AUD006, got %q", a.ID)
		}
		if _, err := tx.CreateException(domain.Exception{ID: 5}); err != nil {
			return err
		}
		e, err := tx.CreateException(domain.Exception{})
		if err != nil {
			return err
		}
		if e.ID != 6 {
			t.Fatalf("expected exception 6, got %d", e.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if seq := store.ExportState().Sequences; seq.Audit != 6 || seq.Exception != 6 {
		t.Fatalf("unexpected sequences %+v", seq)
	}
}

func TestMissingRecordsReportNotFound(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		checks := []error{
			tx.DeleteAudit("AUD404"),
			tx.DeleteException(404),
			tx.DeleteKPI(404),
			tx.DeleteStore(404),
		}
		_, err := tx.UpdateAudit("AUD404", func(*domain.Audit) error { return nil })
		checks = append(checks, err)
		_, err = tx.UpdateException(404, func(*domain.Exception) error { return nil })
		checks = append(checks, err)
		_, err = tx.UpdateKPI(404, func(*domain.KPI) error { return nil })
		checks = append(checks, err)
		_, err = tx.UpdateStore(404, func(*domain.Store) error { return nil })
		checks = append(checks, err)
		for i, err := range checks {
			if !domain.IsNotFound(err) {
				t.Fatalf("check %d: expected not found, got %v", i, err)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if _, ok := committed(t, store).FindAudit("AUD404"); ok {
		t.Fatalf("expected missing audit")
	}
	if _, ok := committed(t, store).FindKPI(404); ok {
		t.Fatalf("expected missing kpi")
	}
}

func TestListsKeepInsertionOrder(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		for _, id := range []int{3, 1, 2} {
			if _, err := tx.CreateKPI(domain.KPI{ID: id}); err != nil {
				return err
			}
		}
		if err := tx.DeleteKPI(1); err != nil {
			return err
		}
		_, err := tx.CreateKPI(domain.KPI{})
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	var ids []int
	for _, k := range committed(t, store).ListKPIs() {
		ids = append(ids, k.ID)
	}
	if len(ids) != 3 || ids[0] != 3 || ids[1] != 2 || ids[2] != 4 {
		t.Fatalf("unexpected order %v", ids)
	}
}

func TestMigrateSnapshotLiftsSequences(t *testing.T) {
	migrated := migrateSnapshot(Snapshot{
		Audits:     []domain.Audit{{ID: "AUD004"}, {ID: ""}},
		Exceptions: []domain.Exception{{ID: 7}, {ID: 0}},
		KPIs:       []domain.KPI{{ID: 2}},
		Stores:     []domain.Store{{ID: 9}},
		Sequences:  Sequences{KPI: 10},
	})
	if len(migrated.Audits) != 1 || len(migrated.Exceptions) != 1 {
		t.Fatalf("expected records without identity to be dropped: %+v", migrated)
	}
	want := Sequences{Audit: 4, Exception: 7, KPI: 10, Store: 9}
	if migrated.Sequences != want {
		t.Fatalf("sequences = %+v want %+v", migrated.Sequences, want)
	}
}
