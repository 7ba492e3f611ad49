package core

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

// Fixtures is the seed data loaded into an empty store.
type Fixtures struct {
	Audits     []Audit     `json:"audits" yaml:"audits"`
	Exceptions []Exception `json:"exceptions" yaml:"exceptions"`
	KPIs       []KPI       `json:"kpis" yaml:"kpis"`
	Stores     []Store     `json:"stores" yaml:"stores"`
}

// DefaultFixtures returns the embedded seed collections.
func DefaultFixtures() (Fixtures, error) {
	var fx Fixtures
	files := []struct {
		name   string
		target any
	}{
		{"fixtures/audits.json", &fx.Audits},
		{"fixtures/exceptions.json", &fx.Exceptions},
		{"fixtures/kpis.json", &fx.KPIs},
		{"fixtures/stores.json", &fx.Stores},
	}
	for _, f := range files {
		raw, err := fixtureFS.ReadFile(f.name)
		if err != nil {
			return Fixtures{}, fmt.Errorf("read %s: %w", f.name, err)
		}
		if err := json.Unmarshal(raw, f.target); err != nil {
			return Fixtures{}, fmt.Errorf("decode %s: %w", f.name, err)
		}
	}
	return fx, nil
}

// LoadFixtures reads seed data from a JSON or YAML document with top-level
// audits, exceptions, kpis and stores keys. An empty path selects the
// embedded fixtures.
func LoadFixtures(path string) (Fixtures, error) {
	if path == "" {
		return DefaultFixtures()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("read fixtures: %w", err)
	}
	var fx Fixtures
	// YAML is a superset of JSON, so one decoder serves both formats.
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return Fixtures{}, fmt.Errorf("decode fixtures %s: %w", path, err)
	}
	return fx, nil
}

type seededStore interface {
	Seeded() bool
}

// Seed writes fx into store in one transaction, keeping fixture identifiers.
// Durable stores that already hold a snapshot are left untouched; it reports
// whether anything was written.
func Seed(ctx context.Context, store PersistentStore, fx Fixtures) (bool, error) {
	if s, ok := store.(seededStore); ok && s.Seeded() {
		return false, nil
	}
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		for _, st := range fx.Stores {
			if _, err := tx.CreateStore(st); err != nil {
				return err
			}
		}
		for _, k := range fx.KPIs {
			if _, err := tx.CreateKPI(k); err != nil {
				return err
			}
		}
		for _, a := range fx.Audits {
			if _, err := tx.CreateAudit(a); err != nil {
				return err
			}
		}
		for _, e := range fx.Exceptions {
			if _, err := tx.CreateException(e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed fixtures: %w", err)
	}
	return true, nil
}

// DefaultQuestions is the audit questionnaire, in the order it is asked.
var DefaultQuestions = []string{
	"Store cleanliness and organization",
	"Staff appearance and behavior",
	"Product display and pricing",
	"Customer service quality",
	"Safety and security measures",
	"Inventory management",
	"POS system functionality",
	"Promotional materials accuracy",
}

// NewAuditDraft returns a scheduled audit with every question rated green.
func NewAuditDraft(storeID, auditorID, scheduledDate string) Audit {
	responses := make([]AuditResponse, len(DefaultQuestions))
	for i, q := range DefaultQuestions {
		responses[i] = AuditResponse{Question: q, Rating: RatingGreen}
	}
	return Audit{
		StoreID:       storeID,
		AuditorID:     auditorID,
		ScheduledDate: scheduledDate,
		Status:        AuditScheduled,
		OverallRating: OverallRating(responses),
		Responses:     responses,
	}
}
