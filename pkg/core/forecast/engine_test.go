package forecast

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

func dacFacility() map[string]interface{} {
	return map[string]interface{}{
		"facility_name": "Mesa DAC One",
		"facility_type": "Direct air capture facility",
	}
}

func ptr(f float64) *float64 { return &f }

// stubAdvisor satisfies Advisor without a live collaborator.
type stubAdvisor struct {
	answer string
	err    error
}

func (s *stubAdvisor) GetCreditCalculationGuidance(ctx context.Context, facilityInfo map[string]interface{}) (Guidance, error) {
	if s.err != nil {
		return Guidance{}, s.err
	}
	return Guidance{Answer: s.answer, ConfidenceScore: 0.9}, nil
}

func TestGenerate_DACWithFullBonuses(t *testing.T) {
	// Base DAC rate 85. Bonuses: domestic 0.10 + energy community 0.10 = 0.20.
	// Effective 2025 rate = 85 * 1.20 = 102.0
	// Gross credit   = 100000 * 102.0 = 10,200,000
	// Bonus portion  = 100000 * 85 * 0.20 = 1,700,000
	engine := NewEngine(nil)
	fc := engine.Generate(context.Background(), dacFacility(), Inputs{
		AnnualCO2Captured:         100000,
		SequestrationMethod:       "Geologic storage (underground injection)",
		StartDate:                 "2025-01-01",
		DomesticContentPercentage: ptr(75),
		EnergyCommunityEligible:   true,
	})

	if len(fc.ForecastPeriods) != 12 {
		t.Fatalf("expected exactly 12 periods, got %d", len(fc.ForecastPeriods))
	}

	first := fc.ForecastPeriods[0]
	if first.Year != 2025 {
		t.Errorf("expected start year 2025, got %d", first.Year)
	}
	if math.Abs(first.CreditRate-102.0) > 1e-9 {
		t.Errorf("expected effective rate 102.0, got %f", first.CreditRate)
	}
	if math.Abs(first.TotalCredits-10200000) > 1e-6 {
		t.Errorf("expected gross credit 10,200,000, got %f", first.TotalCredits)
	}
	if math.Abs(first.BonusCredits-1700000) > 1e-6 {
		t.Errorf("expected bonus credit 1,700,000, got %f", first.BonusCredits)
	}

	if fc.Assumptions.BaseCreditRate != 85.0 {
		t.Errorf("expected base rate 85, got %f", fc.Assumptions.BaseCreditRate)
	}
	if math.Abs(fc.Assumptions.EffectiveCreditRate-102.0) > 1e-9 {
		t.Errorf("expected effective rate 102 in assumptions, got %f", fc.Assumptions.EffectiveCreditRate)
	}
}

func TestGenerate_TwelveYearTotalMatchesPeriods(t *testing.T) {
	engine := NewEngine(nil)
	fc := engine.Generate(context.Background(), dacFacility(), Inputs{
		AnnualCO2Captured:       100000,
		SequestrationMethod:     "Geologic storage (underground injection)",
		StartDate:               "2025-01-01",
		EnergyCommunityEligible: true,
	})

	var sumValue, sumCredits float64
	for _, p := range fc.ForecastPeriods {
		sumValue += p.TotalValue
		sumCredits += p.TotalCredits
	}
	// Totals are plain sums of the same float64 values, so equality is exact.
	if fc.TotalValue12Years != sumValue {
		t.Errorf("12-year value %f != period sum %f", fc.TotalValue12Years, sumValue)
	}
	if fc.TotalCredits12Years != sumCredits {
		t.Errorf("12-year credits %f != period sum %f", fc.TotalCredits12Years, sumCredits)
	}
	if fc.AverageAnnualValue != fc.TotalValue12Years/12 {
		t.Errorf("average %f != total/12", fc.AverageAnnualValue)
	}

	var sum10 float64
	for _, p := range fc.ForecastPeriods[:10] {
		sum10 += p.TotalValue
	}
	if fc.TotalValue10Years != sum10 {
		t.Errorf("10-year value %f != first-10 sum %f", fc.TotalValue10Years, sum10)
	}
}

func TestGenerate_RateStepDownAfter2032(t *testing.T) {
	// Start 2025: periods 2025..2036, so the last four land on/after 2033.
	// Stepped rate = 102.0 * 0.9 = 91.8; the bonus attribution does not step
	// down with it.
	engine := NewEngine(nil)
	fc := engine.Generate(context.Background(), dacFacility(), Inputs{
		AnnualCO2Captured:         1000,
		SequestrationMethod:       "Geologic storage (underground injection)",
		StartDate:                 "2025-01-01",
		DomesticContentPercentage: ptr(50),
		EnergyCommunityEligible:   true,
	})

	for _, p := range fc.ForecastPeriods {
		wantRate := 102.0
		if p.Year >= 2033 {
			wantRate = 91.8
		}
		if math.Abs(p.CreditRate-wantRate) > 1e-9 {
			t.Errorf("year %d: rate %f, want %f", p.Year, p.CreditRate, wantRate)
		}
		if math.Abs(p.BonusCredits-1000*85*0.20) > 1e-9 {
			t.Errorf("year %d: bonus credits %f should ignore step-down", p.Year, p.BonusCredits)
		}
	}
}

func TestGenerate_UtilizationDiscount(t *testing.T) {
	// DAC base 85 * 0.6 = 51 before bonuses.
	engine := NewEngine(nil)
	fc := engine.Generate(context.Background(), dacFacility(), Inputs{
		AnnualCO2Captured:   1000,
		SequestrationMethod: "Utilization in products",
		StartDate:           "2025-01-01",
	})

	if math.Abs(fc.Assumptions.BaseCreditRate-51.0) > 1e-9 {
		t.Errorf("expected discounted base rate 51, got %f", fc.Assumptions.BaseCreditRate)
	}
	if math.Abs(fc.ForecastPeriods[0].CreditRate-51.0) > 1e-9 {
		t.Errorf("expected effective rate 51 with no bonuses, got %f", fc.ForecastPeriods[0].CreditRate)
	}
}

func TestGenerate_IndustrialCarbonIntensityBonus(t *testing.T) {
	facility := map[string]interface{}{
		"facility_type": "Industrial facility (cement, steel, chemicals, etc.)",
	}
	engine := NewEngine(nil)
	fc := engine.Generate(context.Background(), facility, Inputs{
		AnnualCO2Captured:   1000,
		SequestrationMethod: "Geologic storage (underground injection)",
		StartDate:           "2025-01-01",
	})

	if fc.Assumptions.BonusMultipliers["carbon_intensity"] != 0.05 {
		t.Errorf("expected 0.05 carbon intensity bonus, got %v", fc.Assumptions.BonusMultipliers)
	}
	// Effective = 60 * 1.05 = 63.
	if math.Abs(fc.ForecastPeriods[0].CreditRate-63.0) > 1e-9 {
		t.Errorf("expected effective rate 63, got %f", fc.ForecastPeriods[0].CreditRate)
	}

	// The carbon-intensity entry is still listed as an opportunity for
	// industrial facilities even though the multiplier was granted.
	found := false
	for _, op := range fc.BonusOpportunities {
		if op.Type == "carbon_intensity" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected carbon_intensity opportunity, got %v", fc.BonusOpportunities)
	}
}

func TestGenerate_BonusOpportunitiesForMissingBonuses(t *testing.T) {
	engine := NewEngine(nil)
	fc := engine.Generate(context.Background(), dacFacility(), Inputs{
		AnnualCO2Captured:   1000,
		SequestrationMethod: "Geologic storage (underground injection)",
		StartDate:           "2025-01-01",
	})

	types := map[string]bool{}
	for _, op := range fc.BonusOpportunities {
		types[op.Type] = true
	}
	if !types["domestic_content"] || !types["energy_community"] {
		t.Errorf("expected domestic and energy community opportunities, got %v", fc.BonusOpportunities)
	}
	if types["carbon_intensity"] {
		t.Error("non-industrial facility should not list carbon intensity opportunity")
	}
}

func TestGenerate_RecommendationsThresholdAndGuidance(t *testing.T) {
	engine := NewEngine(&stubAdvisor{answer: strings.Repeat("x", 300)})
	fc := engine.Generate(context.Background(), dacFacility(), Inputs{
		AnnualCO2Captured:   100000, // 100000 * 85 * 12 years clears $1M easily
		SequestrationMethod: "Geologic storage (underground injection)",
		StartDate:           "2025-01-01",
	})

	if !strings.HasPrefix(fc.Recommendations[0], "RAG Guidance: ") {
		t.Errorf("expected guidance line first, got %q", fc.Recommendations[0])
	}
	// 200-char inline cap plus the ellipsis.
	if len(fc.Recommendations[0]) != len("RAG Guidance: ")+200+3 {
		t.Errorf("guidance line not truncated to 200 chars: %d", len(fc.Recommendations[0]))
	}

	var hasConsult bool
	for _, r := range fc.Recommendations {
		if r == "Consider professional tax consultation for large credit amounts" {
			hasConsult = true
		}
	}
	if !hasConsult {
		t.Errorf("expected consultation recommendation above $1M, got %v", fc.Recommendations)
	}
}

func TestGenerate_AdvisorFailureDegrades(t *testing.T) {
	engine := NewEngine(&stubAdvisor{err: errors.New("collaborator down")})
	fc := engine.Generate(context.Background(), dacFacility(), Inputs{
		AnnualCO2Captured:   10,
		SequestrationMethod: "Geologic storage (underground injection)",
		StartDate:           "2025-01-01",
	})

	for _, r := range fc.Recommendations {
		if strings.HasPrefix(r, "RAG Guidance") {
			t.Errorf("failed collaborator must not contribute a guidance line: %q", r)
		}
	}
	// The deterministic documentation recommendations always close the list.
	last := fc.Recommendations[len(fc.Recommendations)-1]
	if last != "Prepare for IRS compliance requirements" {
		t.Errorf("expected deterministic recommendations to survive, got %v", fc.Recommendations)
	}
}

func TestDetailedAnalysis_Summary(t *testing.T) {
	engine := NewEngine(&stubAdvisor{answer: "45Q guidance"})
	analysis := engine.DetailedAnalysis(context.Background(), dacFacility(), Inputs{
		AnnualCO2Captured:   1000,
		SequestrationMethod: "Geologic storage (underground injection)",
		StartDate:           "2025-01-01",
		InitialInvestment:   500000,
	})

	if analysis.Forecast == nil || len(analysis.TimelineProjections) != 12 {
		t.Fatal("expected forecast with 12 timeline projections")
	}
	if analysis.RAGAnalysis == nil || analysis.RAGAnalysis.Answer != "45Q guidance" {
		t.Errorf("expected collaborator analysis, got %+v", analysis.RAGAnalysis)
	}
	if analysis.Summary.TotalPotentialValue != analysis.Forecast.TotalValue12Years {
		t.Error("summary total should mirror the 12-year value")
	}
	if analysis.Summary.BonusOpportunitiesCount != len(analysis.Forecast.BonusOpportunities) {
		t.Error("summary opportunity count should mirror the forecast")
	}
}

func TestGenerate_UnparsableStartDateFallsBackToCurrentYear(t *testing.T) {
	engine := NewEngine(nil)
	fc := engine.Generate(context.Background(), dacFacility(), Inputs{
		AnnualCO2Captured:   1000,
		SequestrationMethod: "Geologic storage (underground injection)",
		StartDate:           "soon",
	})
	if len(fc.ForecastPeriods) != 12 {
		t.Fatalf("expected 12 periods, got %d", len(fc.ForecastPeriods))
	}
	// Consecutive years regardless of the fallback start.
	for i := 1; i < len(fc.ForecastPeriods); i++ {
		if fc.ForecastPeriods[i].Year != fc.ForecastPeriods[i-1].Year+1 {
			t.Fatalf("periods not consecutive at index %d", i)
		}
	}
}
