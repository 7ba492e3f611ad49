// Package domain defines the retail-audit entities, identity schemes, typed
// patches, and rule evaluation primitives used by auditdesk.
package domain

// EntityType identifies the type of record stored in the audit domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityAudit identifies a scheduled or completed store audit.
	EntityAudit EntityType = "audit"
	// EntityException identifies an exception raised during an audit.
	EntityException EntityType = "exception"
	// EntityKPI identifies a dashboard metric.
	EntityKPI EntityType = "kpi"
	// EntityStore identifies a retail store location.
	EntityStore EntityType = "store"
)

// AuditStatus tracks where an audit sits in the schedule.
type AuditStatus string

// Audit statuses shown on the planning calendar and audit table.
const (
	AuditScheduled  AuditStatus = "Scheduled"
	AuditInProgress AuditStatus = "In Progress"
	AuditCompleted  AuditStatus = "Completed"
	AuditOverdue    AuditStatus = "Overdue"
)

// AuditStatuses lists every audit status in display order.
var AuditStatuses = []AuditStatus{AuditScheduled, AuditInProgress, AuditCompleted, AuditOverdue}

// Rating is a red/amber/green assessment.
type Rating string

// RAG ratings used for audit questions and overall audit outcome.
const (
	RatingRed   Rating = "red"
	RatingAmber Rating = "amber"
	RatingGreen Rating = "green"
)

// ExceptionSeverity is the ordinal urgency of an exception.
type ExceptionSeverity string

// Exception severities, most urgent first.
const (
	ExceptionCritical ExceptionSeverity = "Critical"
	ExceptionHigh     ExceptionSeverity = "High"
	ExceptionMedium   ExceptionSeverity = "Medium"
	ExceptionLow      ExceptionSeverity = "Low"
)

// ExceptionSeverities lists every severity, most urgent first.
var ExceptionSeverities = []ExceptionSeverity{ExceptionCritical, ExceptionHigh, ExceptionMedium, ExceptionLow}

// ExceptionStatus tracks exception resolution.
type ExceptionStatus string

// Exception resolution states.
const (
	ExceptionOpen       ExceptionStatus = "Open"
	ExceptionInProgress ExceptionStatus = "In Progress"
	ExceptionResolved   ExceptionStatus = "Resolved"
	ExceptionClosed     ExceptionStatus = "Closed"
)

// ExceptionStatuses lists every exception status.
var ExceptionStatuses = []ExceptionStatus{ExceptionOpen, ExceptionInProgress, ExceptionResolved, ExceptionClosed}

// Trend is the direction a KPI moved.
type Trend string

// KPI trend directions.
const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// AuditResponse is one answered question of the audit questionnaire.
type AuditResponse struct {
	Question string `json:"question" yaml:"question"`
	Rating   Rating `json:"rating" yaml:"rating"`
	Comments string `json:"comments" yaml:"comments"`
}

// Audit is a store visit by an auditor on a scheduled date.
type Audit struct {
	ID            string          `json:"Id" yaml:"Id"`
	StoreID       string          `json:"storeId" yaml:"storeId"`
	AuditorID     string          `json:"auditorId" yaml:"auditorId"`
	ScheduledDate string          `json:"scheduledDate" yaml:"scheduledDate"`
	Status        AuditStatus     `json:"status" yaml:"status"`
	OverallRating Rating          `json:"overallRating" yaml:"overallRating"`
	Responses     []AuditResponse `json:"responses" yaml:"responses"`
}

// Exception is an issue raised against an audit.
type Exception struct {
	ID          int               `json:"Id" yaml:"Id"`
	Description string            `json:"description" yaml:"description"`
	Category    string            `json:"category" yaml:"category"`
	Severity    ExceptionSeverity `json:"severity" yaml:"severity"`
	Status      ExceptionStatus   `json:"status" yaml:"status"`
	RaisedDate  string            `json:"raisedDate" yaml:"raisedDate"`
	AuditID     string            `json:"auditId" yaml:"auditId"`
}

// KPI is a named metric on the executive dashboard.
type KPI struct {
	ID            int     `json:"Id" yaml:"Id"`
	Name          string  `json:"name" yaml:"name"`
	Value         float64 `json:"value" yaml:"value"`
	Target        float64 `json:"target" yaml:"target"`
	Trend         Trend   `json:"trend" yaml:"trend"`
	Icon          string  `json:"icon" yaml:"icon"`
	IsPrimary     bool    `json:"isPrimary" yaml:"isPrimary"`
	ChangePercent float64 `json:"changePercent" yaml:"changePercent"`
}

// Store is a retail location scored on the heat map.
type Store struct {
	ID               int     `json:"Id" yaml:"Id"`
	Name             string  `json:"name" yaml:"name"`
	Region           string  `json:"region" yaml:"region"`
	PerformanceScore float64 `json:"performanceScore" yaml:"performanceScore"`
}

// Change describes a mutation applied within a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string     `json:"rule"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
	Entity   EntityType `json:"entity"`
	EntityID string     `json:"entity_id"`
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation `json:"violations,omitempty"`
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
