package domain

// OverallRating folds questionnaire responses into a single RAG rating:
// any red response makes the audit red, otherwise any amber makes it amber,
// otherwise it is green. An empty questionnaire is green.
func OverallRating(responses []AuditResponse) Rating {
	amber := false
	for _, r := range responses {
		switch r.Rating {
		case RatingRed:
			return RatingRed
		case RatingAmber:
			amber = true
		}
	}
	if amber {
		return RatingAmber
	}
	return RatingGreen
}

// ValidRating reports whether r is one of red, amber or green.
func ValidRating(r Rating) bool {
	switch r {
	case RatingRed, RatingAmber, RatingGreen:
		return true
	}
	return false
}

// ValidAuditStatus reports whether s is a known audit status.
func ValidAuditStatus(s AuditStatus) bool {
	for _, known := range AuditStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ValidExceptionSeverity reports whether s is a known severity.
func ValidExceptionSeverity(s ExceptionSeverity) bool {
	for _, known := range ExceptionSeverities {
		if s == known {
			return true
		}
	}
	return false
}

// ValidExceptionStatus reports whether s is a known exception status.
func ValidExceptionStatus(s ExceptionStatus) bool {
	for _, known := range ExceptionStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ValidTrend reports whether t is up, down or flat.
func ValidTrend(t Trend) bool {
	switch t {
	case TrendUp, TrendDown, TrendFlat:
		return true
	}
	return false
}
