package forecast

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	baseRateDAC   = 85.0
	baseRateOther = 60.0

	// Utilization credits are discounted relative to storage/EOR.
	utilizationDiscount = 0.6

	// Rates step down for years at or past the statutory horizon.
	rateStepDownYear   = 2033
	rateStepDownFactor = 0.9

	forecastYears        = 12
	defaultEfficiency    = 0.9
	consultThresholdUSD  = 1000000.0
	guidanceInlineLength = 200
)

// Engine produces multi-year credit forecasts. All numeric work is pure; the
// only external touch is the optional Advisor used to enrich recommendations.
type Engine struct {
	advisor Advisor
}

// NewEngine creates a forecasting engine. advisor may be nil, in which case
// recommendations are fully deterministic.
func NewEngine(advisor Advisor) *Engine {
	return &Engine{advisor: advisor}
}

// Generate builds a 12-year credit forecast from facility attributes and
// forecast inputs.
func (e *Engine) Generate(ctx context.Context, facilityInfo map[string]interface{}, inputs Inputs) *CreditForecast {
	if inputs.CaptureEfficiency <= 0 {
		inputs.CaptureEfficiency = defaultEfficiency
	}

	baseCalc := calculateBaseCredits(facilityInfo, inputs.AnnualCO2Captured, inputs.SequestrationMethod)
	bonuses := calculateBonusMultipliers(inputs.DomesticContentPercentage, inputs.EnergyCommunityEligible, facilityInfo)
	periods := generatePeriods(inputs.StartDate, inputs.AnnualCO2Captured, baseCalc.BaseCreditRate, bonuses)

	var credits10, value10, credits12, value12 float64
	for i, p := range periods {
		if i < 10 {
			credits10 += p.TotalCredits
			value10 += p.TotalValue
		}
		credits12 += p.TotalCredits
		value12 += p.TotalValue
	}

	totalBonus := sumMultipliers(bonuses)

	forecast := &CreditForecast{
		FacilityInfo:         facilityInfo,
		ForecastPeriods:      periods,
		TotalCredits10Years:  credits10,
		TotalValue10Years:    value10,
		TotalCredits12Years:  credits12,
		TotalValue12Years:    value12,
		AverageAnnualCredits: credits12 / forecastYears,
		AverageAnnualValue:   value12 / forecastYears,
		BonusOpportunities:   identifyBonusOpportunities(facilityInfo, inputs.DomesticContentPercentage, inputs.EnergyCommunityEligible),
		Assumptions: Assumptions{
			AnnualCO2Captured:   inputs.AnnualCO2Captured,
			CaptureEfficiency:   inputs.CaptureEfficiency,
			BaseCreditRate:      baseCalc.BaseCreditRate,
			BonusMultipliers:    bonuses,
			EffectiveCreditRate: baseCalc.BaseCreditRate * (1 + totalBonus),
			ForecastPeriod:      "12 years",
			RateAssumptions:     "Rates based on current 45Q provisions",
			SequestrationMethod: inputs.SequestrationMethod,
			DomesticContent:     inputs.DomesticContentPercentage,
			EnergyCommunity:     inputs.EnergyCommunityEligible,
		},
	}
	forecast.Recommendations = e.buildRecommendations(ctx, facilityInfo, inputs, value12)

	return forecast
}

// DetailedAnalysis generates a forecast plus its timeline scan and the
// collaborator's full analysis. Collaborator failure leaves RAGAnalysis nil
// and the rest of the result intact.
func (e *Engine) DetailedAnalysis(ctx context.Context, facilityInfo map[string]interface{}, inputs Inputs) *DetailedAnalysis {
	forecast := e.Generate(ctx, facilityInfo, inputs)
	projections := ProjectTimeline(forecast.ForecastPeriods, inputs.InitialInvestment)

	var ragAnalysis *Guidance
	if e.advisor != nil {
		if g, err := e.advisor.GetCreditCalculationGuidance(ctx, facilityInfo); err != nil {
			fmt.Printf("[FORECAST] Guidance collaborator unavailable, continuing without: %v\n", err)
		} else {
			ragAnalysis = &g
		}
	}

	return &DetailedAnalysis{
		Forecast:            forecast,
		TimelineProjections: projections,
		RAGAnalysis:         ragAnalysis,
		Summary: Summary{
			TotalPotentialCredits:   forecast.TotalCredits12Years,
			TotalPotentialValue:     forecast.TotalValue12Years,
			AverageAnnualValue:      forecast.AverageAnnualValue,
			BonusOpportunitiesCount: len(forecast.BonusOpportunities),
			ConfidenceScore:         0.85,
		},
	}
}

// calculateBaseCredits determines the unbonused rate: $85/ton for DAC, $60/ton
// otherwise, discounted when the CO2 is utilized rather than stored.
func calculateBaseCredits(facilityInfo map[string]interface{}, annualCO2 float64, sequestrationMethod string) CreditCalculation {
	facilityType := strings.ToLower(infoString(facilityInfo, "facility_type"))

	baseRate := baseRateOther
	if strings.Contains(facilityType, "direct air capture") {
		baseRate = baseRateDAC
	}

	if strings.Contains(strings.ToLower(sequestrationMethod), "utilization") {
		baseRate *= utilizationDiscount
	}

	annualCredits := annualCO2 * baseRate
	return CreditCalculation{
		BaseCreditRate:      baseRate,
		BonusMultipliers:    map[string]float64{},
		TotalMultiplier:     1.0,
		EffectiveCreditRate: baseRate,
		AnnualCredits:       annualCredits,
		AnnualValue:         annualCredits,
	}
}

// calculateBonusMultipliers returns the additive bonus map. The industrial
// carbon-intensity bonus keys off the facility type tag alone; the carbon
// intensity payload itself is not inspected.
func calculateBonusMultipliers(domesticContent *float64, energyCommunity bool, facilityInfo map[string]interface{}) map[string]float64 {
	bonuses := map[string]float64{}

	if domesticContent != nil && *domesticContent >= 40 {
		bonuses["domestic_content"] = 0.10
	}
	if energyCommunity {
		bonuses["energy_community"] = 0.10
	}
	if strings.Contains(strings.ToLower(infoString(facilityInfo, "facility_type")), "industrial") {
		bonuses["carbon_intensity"] = 0.05
	}

	return bonuses
}

// generatePeriods builds exactly 12 consecutive yearly periods. The effective
// rate steps down 10% from 2033 on, but the reported bonus-only figure is
// computed against the undiscounted base rate: the step-down applies to the
// total rate used for gross credit, not to the bonus attribution.
func generatePeriods(startDate string, annualCO2 float64, baseRate float64, bonuses map[string]float64) []ForecastPeriod {
	startYear := time.Now().Year()
	if parsed, err := time.Parse("2006-01-02", startDate); err == nil {
		startYear = parsed.Year()
	}

	totalBonus := sumMultipliers(bonuses)
	effectiveRate := baseRate * (1 + totalBonus)

	periods := make([]ForecastPeriod, 0, forecastYears)
	for year := startYear; year < startYear+forecastYears; year++ {
		yearRate := effectiveRate
		if year >= rateStepDownYear {
			yearRate *= rateStepDownFactor
		}

		totalCredits := annualCO2 * yearRate
		periods = append(periods, ForecastPeriod{
			Year:            year,
			CO2CapturedTons: annualCO2,
			CreditRate:      yearRate,
			TotalCredits:    totalCredits,
			BonusCredits:    annualCO2 * baseRate * totalBonus,
			TotalValue:      totalCredits,
		})
	}
	return periods
}

// identifyBonusOpportunities lists bonuses the inputs do not currently earn.
// Industrial facilities always get the carbon-intensity entry, even when the
// multiplier was already granted; the entry describes the optimization
// headroom rather than an unclaimed bonus.
func identifyBonusOpportunities(facilityInfo map[string]interface{}, domesticContent *float64, energyCommunity bool) []BonusOpportunity {
	var opportunities []BonusOpportunity

	if domesticContent == nil || *domesticContent < 40 {
		opportunities = append(opportunities, BonusOpportunity{
			Type:           "domestic_content",
			Description:    "Increase domestic content to 40% or more for 10% bonus",
			PotentialBonus: "10% increase in credit rate",
			Requirements:   "40% of facility components manufactured in US",
		})
	}

	if !energyCommunity {
		opportunities = append(opportunities, BonusOpportunity{
			Type:           "energy_community",
			Description:    "Locate facility in energy community for 10% bonus",
			PotentialBonus: "10% increase in credit rate",
			Requirements:   "Facility located in designated energy community",
		})
	}

	if strings.Contains(strings.ToLower(infoString(facilityInfo, "facility_type")), "industrial") {
		opportunities = append(opportunities, BonusOpportunity{
			Type:           "carbon_intensity",
			Description:    "Optimize carbon intensity for additional bonus",
			PotentialBonus: "5% increase in credit rate",
			Requirements:   "Meet carbon intensity thresholds",
		})
	}

	return opportunities
}

func (e *Engine) buildRecommendations(ctx context.Context, facilityInfo map[string]interface{}, inputs Inputs, totalValue float64) []string {
	var recs []string

	// Guidance enrichment is best-effort; a dead collaborator just means the
	// deterministic recommendations stand alone.
	if e.advisor != nil {
		if g, err := e.advisor.GetCreditCalculationGuidance(ctx, facilityInfo); err != nil {
			fmt.Printf("[FORECAST] Guidance collaborator unavailable, continuing without: %v\n", err)
		} else if g.Answer != "" {
			answer := g.Answer
			if len(answer) > guidanceInlineLength {
				answer = answer[:guidanceInlineLength]
			}
			recs = append(recs, fmt.Sprintf("RAG Guidance: %s...", answer))
		}
	}

	if totalValue > consultThresholdUSD {
		recs = append(recs, "Consider professional tax consultation for large credit amounts")
	}

	if inputs.DomesticContentPercentage == nil || *inputs.DomesticContentPercentage < 40 {
		recs = append(recs, "Increase domestic content to 40%+ for 10% bonus credits")
	}
	if !inputs.EnergyCommunityEligible {
		recs = append(recs, "Consider energy community location for additional 10% bonus")
	}

	recs = append(recs,
		"Maintain detailed documentation of CO2 capture and sequestration",
		"Implement monitoring and verification systems",
		"Prepare for IRS compliance requirements",
	)

	return recs
}

func sumMultipliers(bonuses map[string]float64) float64 {
	total := 0.0
	for _, b := range bonuses {
		total += b
	}
	return total
}

func infoString(info map[string]interface{}, key string) string {
	if info == nil {
		return ""
	}
	s, _ := info[key].(string)
	return s
}
