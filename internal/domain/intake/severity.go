package intake

// Severity is the rule-based COPD risk tier attached to every stored intake.
type Severity string

const (
	// HighRisk means SpO2 below 90% or FEV1 below 50% of predicted.
	HighRisk Severity = "HIGH_RISK"

	// ModerateRisk means SpO2 in 90–94% or FEV1 in 50–69% of predicted.
	ModerateRisk Severity = "MODERATE_RISK"

	// LowRisk covers everything else.
	LowRisk Severity = "LOW_RISK"
)

const (
	hypoxemiaThreshold  = 90 // SpO2 strictly below is high risk
	borderlineSpO2Max   = 94
	severeFEV1Threshold = 50 // FEV1 % strictly below is high risk
	moderateFEV1Ceiling = 70 // FEV1 % strictly below is at least moderate
)

// ClassifySeverity derives the risk tier from oxygen saturation and FEV1 % predicted.
// High-risk conditions are checked first so the more severe tier always wins.
func ClassifySeverity(oxygenSaturation, fev1Percent int) Severity {
	if oxygenSaturation < hypoxemiaThreshold || fev1Percent < severeFEV1Threshold {
		return HighRisk
	}
	if oxygenSaturation <= borderlineSpO2Max || fev1Percent < moderateFEV1Ceiling {
		return ModerateRisk
	}
	return LowRisk
}

// IsValid reports whether s is one of the three severity tiers.
func (s Severity) IsValid() bool {
	switch s {
	case HighRisk, ModerateRisk, LowRisk:
		return true
	}
	return false
}

// Label is the human-readable form stored next to the record.
func (s Severity) Label() string {
	switch s {
	case HighRisk:
		return "High Risk"
	case ModerateRisk:
		return "Moderate Risk"
	case LowRisk:
		return "Low Risk"
	}
	return "Unknown"
}

// Recommendation is the guidance shown to the submitter while the consultant reviews.
func (s Severity) Recommendation() string {
	switch s {
	case HighRisk:
		return "Immediate intervention needed. Consider medication adjustment or hospitalization."
	case ModerateRisk:
		return "Symptoms need attention. Review inhaler technique and schedule a follow-up."
	case LowRisk:
		return "Patient is stable. Continue current treatment and monitor regularly."
	}
	return ""
}

// String returns the stored severity code, e.g. HIGH_RISK.
func (s Severity) String() string {
	return string(s)
}
