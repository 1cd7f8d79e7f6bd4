package eligibility

// Verdict is the eligibility determination produced once a questionnaire walk
// completes. Immutable once returned.
type Verdict struct {
	IsEligible           bool     `json:"is_eligible"`
	ApplicableProvisions []string `json:"applicable_provisions"`
	Reasons              []string `json:"reasons"`
	RequirementsNotMet   []string `json:"requirements_not_met"`
	Recommendations      []string `json:"recommendations"`
	EstimatedCreditRate  float64  `json:"estimated_credit_rate"`
	ConfidenceScore      float64  `json:"confidence_score"`
}
