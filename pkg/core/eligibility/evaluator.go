package eligibility

import (
	"strconv"
	"strings"
	"time"
)

// Credit rates and thresholds from the current Section 45Q provisions.
// Rates are simplified: the statute varies them by year, we use the
// full-compliance values.
const (
	BaseRateDAC   = 85.0 // $/ton for direct air capture
	BaseRateOther = 60.0 // $/ton for all other facilities

	MinCaptureTons    = 12.5 // metric tons/year, most facilities
	MinCaptureTonsDAC = 1.0  // metric tons/year, direct air capture

	DomesticContentBonus    = 0.10
	EnergyCommunityBonus    = 0.10
	DomesticContentMinimum  = 40.0
	LastQualifyingStartYear = 2032

	// The rule set does not vary confidence by answer completeness yet, so
	// every verdict carries the same base score.
	baseConfidence = 0.85
)

// Evaluate runs the ordered eligibility checks over a completed answer set and
// returns the verdict. It is deterministic and side-effect free: answers in,
// verdict out. Eligibility starts true and is one-way; once a check flips it
// to false nothing sets it back.
func Evaluate(answers map[string]interface{}) Verdict {
	isEligible := true
	var reasons, notMet, provisions []string

	facilityType := strings.ToLower(answerString(answers["facility_type"]))

	// Capture volume threshold. DAC facilities have a much lower floor.
	annualCO2, co2Known := answerNumber(answers["annual_co2_captured"])
	if present(answers["annual_co2_captured"]) {
		if !co2Known {
			notMet = append(notMet, "Invalid CO2 capture amount format")
			isEligible = false
		} else if strings.Contains(facilityType, "direct air capture") {
			if annualCO2 < MinCaptureTonsDAC {
				notMet = append(notMet, "Direct air capture minimum requirement not met (1.0 metric tons)")
				isEligible = false
			}
		} else if annualCO2 < MinCaptureTons {
			notMet = append(notMet, "Minimum CO2 capture requirement not met (12.5 metric tons)")
			isEligible = false
		}
	}

	// Facility type maps to exactly one provision.
	switch {
	case strings.Contains(facilityType, "direct air capture"):
		provisions = append(provisions, "Section 45Q - Direct Air Capture")
	case strings.Contains(facilityType, "electric generation"):
		provisions = append(provisions, "Section 45Q - Electric Generation")
	case strings.Contains(facilityType, "industrial"):
		provisions = append(provisions, "Section 45Q - Industrial Facilities")
	default:
		provisions = append(provisions, "Section 45Q - Other Facilities")
	}

	// Sequestration method.
	sequestration := strings.ToLower(answerString(answers["sequestration_method"]))
	switch {
	case strings.Contains(sequestration, "geologic storage"), strings.Contains(sequestration, "enhanced oil recovery"):
		reasons = append(reasons, "Qualified geologic storage or EOR sequestration")
	case strings.Contains(sequestration, "utilization"):
		reasons = append(reasons, "CO2 utilization in qualified products")
	default:
		notMet = append(notMet, "Qualified sequestration method required")
		isEligible = false
	}

	// Operational date window. A malformed date is noted but does not by
	// itself disqualify; starting after 2032 does.
	if opDate := answerString(answers["carbon_capture_operation_date"]); opDate != "" {
		parsed, err := time.Parse("2006-01-02", opDate)
		if err != nil {
			notMet = append(notMet, "Invalid operation date format")
		} else if parsed.Year() < 2023 {
			reasons = append(reasons, "Facility operational before 2023")
		} else if parsed.Year() > LastQualifyingStartYear {
			notMet = append(notMet, "Facility must be operational by 2032")
			isEligible = false
		}
	}

	return Verdict{
		IsEligible:           isEligible,
		ApplicableProvisions: provisions,
		Reasons:              reasons,
		RequirementsNotMet:   notMet,
		Recommendations:      recommendations(answers, isEligible),
		EstimatedCreditRate:  EstimateCreditRate(answers),
		ConfidenceScore:      baseConfidence,
	}
}

// EstimateCreditRate computes the per-ton rate implied by the answers: the
// facility-type base rate scaled by the additive bonus multipliers.
func EstimateCreditRate(answers map[string]interface{}) float64 {
	facilityType := strings.ToLower(answerString(answers["facility_type"]))

	baseRate := BaseRateOther
	if strings.Contains(facilityType, "direct air capture") {
		baseRate = BaseRateDAC
	}

	// Bonuses are additive, not compounding.
	multiplier := 1.0
	if content, ok := answerNumber(answers["domestic_content"]); ok && content >= DomesticContentMinimum {
		multiplier += DomesticContentBonus
	}
	if answerTruthy(answers["energy_community"]) {
		multiplier += EnergyCommunityBonus
	}

	return baseRate * multiplier
}

func recommendations(answers map[string]interface{}, isEligible bool) []string {
	var recs []string

	if !isEligible {
		recs = append(recs,
			"Review facility characteristics to meet eligibility requirements",
			"Consider increasing CO2 capture capacity if below minimum thresholds",
			"Ensure qualified sequestration method is used",
		)
	}

	recs = append(recs,
		"Consult with tax professionals for detailed guidance",
		"Maintain detailed documentation of capture and sequestration",
		"Consider domestic content requirements for bonus credits",
	)

	facilityType := strings.ToLower(answerString(answers["facility_type"]))
	if strings.Contains(facilityType, "direct air capture") {
		recs = append(recs, "Ensure DAC facility meets specific technical requirements")
	} else if strings.Contains(facilityType, "industrial") {
		recs = append(recs, "Verify industrial facility qualifies under Section 45Q")
	}

	return recs
}

// present reports whether an answer carries a usable value. Questionnaire
// answers are loosely typed, so nil and the empty string both count as absent.
func present(v interface{}) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// answerNumber coerces a loosely-typed answer to a float. JSON decoding hands
// numbers over as float64 but the web client frequently submits them as
// strings, so both are accepted.
func answerNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func answerString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// answerTruthy interprets boolean-ish answers: a real bool, or the strings
// "true"/"yes"/"1" in any casing.
func answerTruthy(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "1":
			return true
		}
	}
	return false
}
