package forecast

import "context"

// Inputs carries the forecast parameters supplied by the caller. Facility
// attributes travel separately as the loosely-typed facility info map shared
// with the eligibility flow.
type Inputs struct {
	AnnualCO2Captured         float64                `json:"annual_co2_captured"`
	CaptureEfficiency         float64                `json:"capture_efficiency"`
	SequestrationMethod       string                 `json:"sequestration_method"`
	SequestrationLocation     string                 `json:"sequestration_location"`
	StartDate                 string                 `json:"start_date"`
	DomesticContentPercentage *float64               `json:"domestic_content_percentage,omitempty"`
	EnergyCommunityEligible   bool                   `json:"energy_community_eligible"`
	CarbonIntensityData       map[string]interface{} `json:"carbon_intensity_data,omitempty"`
	InitialInvestment         float64                `json:"initial_investment"`
}

// CreditCalculation holds the base-rate derivation before bonuses are applied.
type CreditCalculation struct {
	BaseCreditRate      float64            `json:"base_credit_rate"`
	BonusMultipliers    map[string]float64 `json:"bonus_multipliers"`
	TotalMultiplier     float64            `json:"total_multiplier"`
	EffectiveCreditRate float64            `json:"effective_credit_rate"`
	AnnualCredits       float64            `json:"annual_credits"`
	AnnualValue         float64            `json:"annual_value"`
}

// ForecastPeriod is one calendar year of projected credits.
type ForecastPeriod struct {
	Year            int     `json:"year"`
	CO2CapturedTons float64 `json:"co2_captured_tons"`
	CreditRate      float64 `json:"credit_rate"`
	TotalCredits    float64 `json:"total_credits"`
	BonusCredits    float64 `json:"bonus_credits"`
	TotalValue      float64 `json:"total_value"`
}

// BonusOpportunity describes a bonus the facility does not currently earn.
type BonusOpportunity struct {
	Type           string `json:"type"`
	Description    string `json:"description"`
	PotentialBonus string `json:"potential_bonus"`
	Requirements   string `json:"requirements"`
}

// Assumptions echoes every input the forecast used plus the derived rates, so
// a reader can audit the numbers without the request.
type Assumptions struct {
	AnnualCO2Captured   float64            `json:"annual_co2_captured"`
	CaptureEfficiency   float64            `json:"capture_efficiency"`
	BaseCreditRate      float64            `json:"base_credit_rate"`
	BonusMultipliers    map[string]float64 `json:"bonus_multipliers"`
	EffectiveCreditRate float64            `json:"effective_credit_rate"`
	ForecastPeriod      string             `json:"forecast_period"`
	RateAssumptions     string             `json:"rate_assumptions"`
	SequestrationMethod string             `json:"sequestration_method"`
	DomesticContent     *float64           `json:"domestic_content,omitempty"`
	EnergyCommunity     bool               `json:"energy_community"`
}

// CreditForecast is the full forecast aggregate. Produced fresh per request
// and immutable once returned; persistence is the caller's concern.
type CreditForecast struct {
	FacilityInfo         map[string]interface{} `json:"facility_info"`
	ForecastPeriods      []ForecastPeriod       `json:"forecast_periods"`
	TotalCredits10Years  float64                `json:"total_credits_10_years"`
	TotalValue10Years    float64                `json:"total_value_10_years"`
	TotalCredits12Years  float64                `json:"total_credits_12_years"`
	TotalValue12Years    float64                `json:"total_value_12_years"`
	AverageAnnualCredits float64                `json:"average_annual_credits"`
	AverageAnnualValue   float64                `json:"average_annual_value"`
	BonusOpportunities   []BonusOpportunity     `json:"bonus_opportunities"`
	Assumptions          Assumptions            `json:"assumptions"`
	Recommendations      []string               `json:"recommendations"`
}

// TimelineProjection is one year of the cumulative payback scan.
type TimelineProjection struct {
	Year              int      `json:"year"`
	CumulativeCredits float64  `json:"cumulative_credits"`
	CumulativeValue   float64  `json:"cumulative_value"`
	PaybackPeriod     *int     `json:"payback_period,omitempty"`
	ROIPercentage     *float64 `json:"roi_percentage,omitempty"`
}

// Guidance is the slice of the retrieval collaborator's answer the engine
// needs for recommendation enrichment.
type Guidance struct {
	Answer          string   `json:"answer"`
	ConfidenceScore float64  `json:"confidence_score"`
	Sources         []Source `json:"sources"`
	ContextUsed     []string `json:"context_used,omitempty"`
}

// Source is one snippet backing a guidance answer.
type Source struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Advisor is the engine's view of the external guidance collaborator. A nil
// Advisor or a failing call degrades recommendations to the deterministic
// subset; it never aborts a forecast.
type Advisor interface {
	GetCreditCalculationGuidance(ctx context.Context, facilityInfo map[string]interface{}) (Guidance, error)
}

// DetailedAnalysis bundles a forecast with its timeline scan and the
// collaborator's analysis for the detailed endpoint.
type DetailedAnalysis struct {
	Forecast            *CreditForecast      `json:"forecast"`
	TimelineProjections []TimelineProjection `json:"timeline_projections"`
	RAGAnalysis         *Guidance            `json:"rag_analysis,omitempty"`
	Summary             Summary              `json:"summary"`
}

// Summary is the headline block of a detailed analysis.
type Summary struct {
	TotalPotentialCredits   float64 `json:"total_potential_credits"`
	TotalPotentialValue     float64 `json:"total_potential_value"`
	AverageAnnualValue      float64 `json:"average_annual_value"`
	BonusOpportunitiesCount int     `json:"bonus_opportunities_count"`
	ConfidenceScore         float64 `json:"confidence_score"`
}
