package core

import (
	"context"
	"testing"
)

func TestEnumValuesRuleWarns(t *testing.T) {
	changes := []Change{
		{Entity: EntityAudit, Action: ActionCreate, After: Audit{ID: "AUD001", Status: "Paused", Responses: []AuditResponse{{Rating: "blue"}}}},
		{Entity: EntityAudit, Action: ActionCreate, After: Audit{ID: "AUD002", Status: AuditScheduled}},
		{Entity: EntityException, Action: ActionUpdate, After: Exception{ID: 3, Severity: "Urgent", Status: "Open"}},
		{Entity: EntityKPI, Action: ActionCreate, After: KPI{ID: 1, Trend: "sideways"}},
		{Entity: EntityStore, Action: ActionDelete, Before: Store{ID: 1}},
	}
	res, err := NewEnumValuesRule().Evaluate(context.Background(), nil, changes)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 4 {
		t.Fatalf("expected 4 violations, got %+v", res.Violations)
	}
	for _, v := range res.Violations {
		if v.Severity != SeverityWarn || v.Rule != "enum_values" {
			t.Fatalf("unexpected violation %+v", v)
		}
	}
	if res.HasBlocking() {
		t.Fatalf("enum rule must never block")
	}
	if res.Violations[2].EntityID != "3" || res.Violations[2].Entity != EntityException {
		t.Fatalf("unexpected exception violation %+v", res.Violations[2])
	}
}

func TestPerformanceScoreRule(t *testing.T) {
	changes := []Change{
		{Entity: EntityStore, Action: ActionCreate, After: Store{ID: 1, PerformanceScore: 100}},
		{Entity: EntityStore, Action: ActionCreate, After: Store{ID: 2, PerformanceScore: -1}},
		{Entity: EntityStore, Action: ActionUpdate, After: Store{ID: 3, PerformanceScore: 100.5}},
		{Entity: EntityKPI, Action: ActionCreate, After: KPI{ID: 1, Value: 500}},
	}
	res, err := NewPerformanceScoreRule().Evaluate(context.Background(), nil, changes)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 || res.Violations[0].EntityID != "2" || res.Violations[1].EntityID != "3" {
		t.Fatalf("unexpected violations %+v", res.Violations)
	}
}

func TestDefaultRulesEngineRegistersBuiltIns(t *testing.T) {
	rules := NewDefaultRulesEngine().Rules()
	if len(rules) != 2 || rules[0].Name() != "enum_values" || rules[1].Name() != "performance_score_range" {
		t.Fatalf("unexpected default rules %+v", rules)
	}
}
