package forecast

// ProjectTimeline runs the cumulative scan over forecast periods. Payback uses
// first-crossing semantics: the payback year is the first year whose
// cumulative value meets the initial investment and stays fixed from then on.
// ROI is reported for every year once an investment is given, so early years
// show it negative.
func ProjectTimeline(periods []ForecastPeriod, initialInvestment float64) []TimelineProjection {
	projections := make([]TimelineProjection, 0, len(periods))

	var cumulativeCredits, cumulativeValue float64
	var paybackYear *int

	for _, period := range periods {
		cumulativeCredits += period.TotalCredits
		cumulativeValue += period.TotalValue

		proj := TimelineProjection{
			Year:              period.Year,
			CumulativeCredits: cumulativeCredits,
			CumulativeValue:   cumulativeValue,
		}

		if initialInvestment > 0 {
			if paybackYear == nil && cumulativeValue >= initialInvestment {
				y := period.Year
				paybackYear = &y
			}
			if paybackYear != nil {
				y := *paybackYear
				proj.PaybackPeriod = &y
			}
			roi := (cumulativeValue - initialInvestment) / initialInvestment * 100
			proj.ROIPercentage = &roi
		}

		projections = append(projections, proj)
	}

	return projections
}
