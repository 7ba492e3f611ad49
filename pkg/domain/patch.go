package domain

// AuditPatch lists the audit fields an update may set. Nil fields are left untouched.
type AuditPatch struct {
	StoreID       *string          `json:"storeId,omitempty"`
	AuditorID     *string          `json:"auditorId,omitempty"`
	ScheduledDate *string          `json:"scheduledDate,omitempty"`
	Status        *AuditStatus     `json:"status,omitempty"`
	OverallRating *Rating          `json:"overallRating,omitempty"`
	Responses     *[]AuditResponse `json:"responses,omitempty"`
}

// Apply overwrites the fields set on the patch.
func (p AuditPatch) Apply(a *Audit) {
	if p.StoreID != nil {
		a.StoreID = *p.StoreID
	}
	if p.AuditorID != nil {
		a.AuditorID = *p.AuditorID
	}
	if p.ScheduledDate != nil {
		a.ScheduledDate = *p.ScheduledDate
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.OverallRating != nil {
		a.OverallRating = *p.OverallRating
	}
	if p.Responses != nil {
		a.Responses = append([]AuditResponse(nil), (*p.Responses)...)
	}
}

// ExceptionPatch lists the exception fields an update may set.
type ExceptionPatch struct {
	Description *string            `json:"description,omitempty"`
	Category    *string            `json:"category,omitempty"`
	Severity    *ExceptionSeverity `json:"severity,omitempty"`
	Status      *ExceptionStatus   `json:"status,omitempty"`
	RaisedDate  *string            `json:"raisedDate,omitempty"`
	AuditID     *string            `json:"auditId,omitempty"`
}

// Apply overwrites the fields set on the patch.
func (p ExceptionPatch) Apply(e *Exception) {
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Severity != nil {
		e.Severity = *p.Severity
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.RaisedDate != nil {
		e.RaisedDate = *p.RaisedDate
	}
	if p.AuditID != nil {
		e.AuditID = *p.AuditID
	}
}

// KPIPatch lists the KPI fields an update may set.
type KPIPatch struct {
	Name          *string  `json:"name,omitempty"`
	Value         *float64 `json:"value,omitempty"`
	Target        *float64 `json:"target,omitempty"`
	Trend         *Trend   `json:"trend,omitempty"`
	Icon          *string  `json:"icon,omitempty"`
	IsPrimary     *bool    `json:"isPrimary,omitempty"`
	ChangePercent *float64 `json:"changePercent,omitempty"`
}

// Apply overwrites the fields set on the patch.
func (p KPIPatch) Apply(k *KPI) {
	if p.Name != nil {
		k.Name = *p.Name
	}
	if p.Value != nil {
		k.Value = *p.Value
	}
	if p.Target != nil {
		k.Target = *p.Target
	}
	if p.Trend != nil {
		k.Trend = *p.Trend
	}
	if p.Icon != nil {
		k.Icon = *p.Icon
	}
	if p.IsPrimary != nil {
		k.IsPrimary = *p.IsPrimary
	}
	if p.ChangePercent != nil {
		k.ChangePercent = *p.ChangePercent
	}
}

// StorePatch lists the store fields an update may set.
type StorePatch struct {
	Name             *string  `json:"name,omitempty"`
	Region           *string  `json:"region,omitempty"`
	PerformanceScore *float64 `json:"performanceScore,omitempty"`
}

// Apply overwrites the fields set on the patch.
func (p StorePatch) Apply(s *Store) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Region != nil {
		s.Region = *p.Region
	}
	if p.PerformanceScore != nil {
		s.PerformanceScore = *p.PerformanceScore
	}
}

// Ptr returns a pointer to v. Handy when building patches.
func Ptr[T any](v T) *T {
	return &v
}
