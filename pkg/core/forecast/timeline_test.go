package forecast

import (
	"math"
	"testing"
)

func flatPeriods(startYear int, years int, annualValue float64) []ForecastPeriod {
	periods := make([]ForecastPeriod, 0, years)
	for i := 0; i < years; i++ {
		periods = append(periods, ForecastPeriod{
			Year:         startYear + i,
			TotalCredits: annualValue,
			TotalValue:   annualValue,
		})
	}
	return periods
}

func TestProjectTimeline_Cumulative(t *testing.T) {
	projections := ProjectTimeline(flatPeriods(2025, 3, 100), 0)

	want := []float64{100, 200, 300}
	for i, p := range projections {
		if p.CumulativeValue != want[i] {
			t.Errorf("year %d: cumulative %f, want %f", p.Year, p.CumulativeValue, want[i])
		}
		if p.PaybackPeriod != nil || p.ROIPercentage != nil {
			t.Errorf("year %d: payback/ROI must be absent with zero investment", p.Year)
		}
	}
}

func TestProjectTimeline_PaybackFirstCrossing(t *testing.T) {
	// 100/year against a 250 investment: cumulative 100, 200, 300, 400.
	// First crossing is year 3 (300 >= 250) and later years keep it.
	projections := ProjectTimeline(flatPeriods(2025, 4, 100), 250)

	if projections[0].PaybackPeriod != nil || projections[1].PaybackPeriod != nil {
		t.Error("payback must be unset before the crossing")
	}
	for _, p := range projections[2:] {
		if p.PaybackPeriod == nil || *p.PaybackPeriod != 2027 {
			t.Errorf("year %d: payback %v, want 2027", p.Year, p.PaybackPeriod)
		}
	}
}

func TestProjectTimeline_ROIEveryYear(t *testing.T) {
	projections := ProjectTimeline(flatPeriods(2025, 3, 100), 250)

	// ROI = (cumulative - 250) / 250 * 100: -60%, -20%, +20%.
	want := []float64{-60, -20, 20}
	for i, p := range projections {
		if p.ROIPercentage == nil {
			t.Fatalf("year %d: ROI missing", p.Year)
		}
		if math.Abs(*p.ROIPercentage-want[i]) > 1e-9 {
			t.Errorf("year %d: ROI %f, want %f", p.Year, *p.ROIPercentage, want[i])
		}
	}
}

func TestProjectTimeline_ExactBoundaryCrossing(t *testing.T) {
	// Cumulative value meeting the investment exactly counts as payback.
	projections := ProjectTimeline(flatPeriods(2025, 2, 100), 200)
	if projections[1].PaybackPeriod == nil || *projections[1].PaybackPeriod != 2026 {
		t.Errorf("expected payback at exact crossing year 2026, got %v", projections[1].PaybackPeriod)
	}
}
