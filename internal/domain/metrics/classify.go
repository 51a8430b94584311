package metrics

// ClassifyRisk maps a KRI value to a risk level. Rules run in order, first
// match wins; a nil threshold disables its rule. The medium band opens at
// 70% of the warning threshold.
func ClassifyRisk(value float64, warning, critical *float64) RiskLevel {
	if critical != nil && value >= *critical {
		return RiskCritical
	}
	if warning != nil && value >= *warning {
		return RiskHigh
	}
	if warning != nil && value >= *warning*0.7 {
		return RiskMedium
	}
	return RiskLow
}

// Severity orders risk levels for monotonicity comparisons; higher is worse.
func Severity(level RiskLevel) int {
	switch level {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}
