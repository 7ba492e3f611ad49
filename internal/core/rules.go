package core

import (
	"context"
	"fmt"
	"strconv"

	"auditdesk/pkg/domain"
)

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
// Every built-in rule warns; none blocks a write.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewEnumValuesRule())
	engine.Register(NewPerformanceScoreRule())
	return engine
}

// NewEnumValuesRule flags written records whose status, severity, rating or
// trend falls outside the known values.
func NewEnumValuesRule() Rule {
	return enumValuesRule{}
}

type enumValuesRule struct{}

func (enumValuesRule) Name() string { return "enum_values" }

func (r enumValuesRule) Evaluate(_ context.Context, _ domain.RuleView, changes []Change) (Result, error) {
	var res Result
	for _, change := range changes {
		switch after := change.After.(type) {
		case Audit:
			if !domain.ValidAuditStatus(after.Status) {
				res.Violations = append(res.Violations, r.warn(EntityAudit, after.ID, "status", string(after.Status)))
			}
			if after.OverallRating != "" && !domain.ValidRating(after.OverallRating) {
				res.Violations = append(res.Violations, r.warn(EntityAudit, after.ID, "overallRating", string(after.OverallRating)))
			}
			for _, resp := range after.Responses {
				if !domain.ValidRating(resp.Rating) {
					res.Violations = append(res.Violations, r.warn(EntityAudit, after.ID, "responses.rating", string(resp.Rating)))
				}
			}
		case Exception:
			id := strconv.Itoa(after.ID)
			if !domain.ValidExceptionSeverity(after.Severity) {
				res.Violations = append(res.Violations, r.warn(EntityException, id, "severity", string(after.Severity)))
			}
			if !domain.ValidExceptionStatus(after.Status) {
				res.Violations = append(res.Violations, r.warn(EntityException, id, "status", string(after.Status)))
			}
		case KPI:
			if after.Trend != "" && !domain.ValidTrend(after.Trend) {
				res.Violations = append(res.Violations, r.warn(EntityKPI, strconv.Itoa(after.ID), "trend", string(after.Trend)))
			}
		}
	}
	return res, nil
}

func (r enumValuesRule) warn(entity EntityType, id, field, value string) Violation {
	return Violation{
		Rule:     r.Name(),
		Severity: SeverityWarn,
		Message:  fmt.Sprintf("%s %s has unknown %s %q", entity, id, field, value),
		Entity:   entity,
		EntityID: id,
	}
}

// NewPerformanceScoreRule flags stores written with a score outside [0,100].
func NewPerformanceScoreRule() Rule {
	return performanceScoreRule{}
}

type performanceScoreRule struct{}

func (performanceScoreRule) Name() string { return "performance_score_range" }

func (performanceScoreRule) Evaluate(_ context.Context, _ domain.RuleView, changes []Change) (Result, error) {
	var res Result
	for _, change := range changes {
		store, ok := change.After.(Store)
		if !ok {
			continue
		}
		if store.PerformanceScore < 0 || store.PerformanceScore > 100 {
			id := strconv.Itoa(store.ID)
			res.Violations = append(res.Violations, Violation{
				Rule:     "performance_score_range",
				Severity: SeverityWarn,
				Message:  fmt.Sprintf("store %s performance score %g outside [0,100]", id, store.PerformanceScore),
				Entity:   EntityStore,
				EntityID: id,
			})
		}
	}
	return res, nil
}
