package core

import "auditdesk/pkg/domain"

type (
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Audit              = domain.Audit
	AuditResponse      = domain.AuditResponse
	Exception          = domain.Exception
	KPI                = domain.KPI
	Store              = domain.Store
	AuditPatch         = domain.AuditPatch
	ExceptionPatch     = domain.ExceptionPatch
	KPIPatch           = domain.KPIPatch
	StorePatch         = domain.StorePatch
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	NotFoundError      = domain.NotFoundError
	Rule               = domain.Rule
	RulesEngine        = domain.RulesEngine
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntityAudit     = domain.EntityAudit
	EntityException = domain.EntityException
	EntityKPI       = domain.EntityKPI
	EntityStore     = domain.EntityStore
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

// ErrNotFound is matched by every not-found error returned by the service.
var ErrNotFound = domain.ErrNotFound

// NewRulesEngine constructs an empty rules engine.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

const (
	RatingRed   = domain.RatingRed
	RatingAmber = domain.RatingAmber
	RatingGreen = domain.RatingGreen
)

const (
	AuditScheduled  = domain.AuditScheduled
	AuditInProgress = domain.AuditInProgress
	AuditCompleted  = domain.AuditCompleted
	AuditOverdue    = domain.AuditOverdue
)

// OverallRating folds questionnaire responses into one RAG rating.
func OverallRating(responses []AuditResponse) domain.Rating {
	return domain.OverallRating(responses)
}
