package forecast

import (
	"context"
	"encoding/json"
	"net/http"

	"carboncredit/pkg/core/forecast"
	"carboncredit/pkg/core/guidance"
)

// GuidanceAdvisor adapts the retrieval collaborator to the forecast engine's
// Advisor interface
type GuidanceAdvisor struct {
	svc *guidance.Service
}

// NewGuidanceAdvisor wraps a guidance service for the forecast engine
func NewGuidanceAdvisor(svc *guidance.Service) *GuidanceAdvisor {
	return &GuidanceAdvisor{svc: svc}
}

func (a *GuidanceAdvisor) GetCreditCalculationGuidance(ctx context.Context, facilityInfo map[string]interface{}) (forecast.Guidance, error) {
	answer, err := a.svc.GetCreditCalculationGuidance(ctx, facilityInfo)
	if err != nil {
		return forecast.Guidance{}, err
	}

	sources := make([]forecast.Source, 0, len(answer.Sources))
	for _, s := range answer.Sources {
		sources = append(sources, forecast.Source{
			Content:  s.Content,
			Metadata: s.Metadata,
		})
	}

	var contextUsed []string
	if answer.ContextUsed != "" {
		contextUsed = []string{answer.ContextUsed}
	}

	return forecast.Guidance{
		Answer:          answer.Answer,
		ConfidenceScore: answer.ConfidenceScore,
		Sources:         sources,
		ContextUsed:     contextUsed,
	}, nil
}

// Handler holds dependencies for the forecast endpoints
type Handler struct {
	Engine *forecast.Engine
}

// NewHandler creates a new forecast handler
func NewHandler(engine *forecast.Engine) *Handler {
	return &Handler{Engine: engine}
}

type ForecastingRequest struct {
	SessionID                 string                 `json:"session_id"`
	FacilityInfo              map[string]interface{} `json:"facility_info"`
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

type ForecastingResponse struct {
	SessionID       string                   `json:"session_id"`
	Forecast        *forecast.CreditForecast `json:"forecast"`
	ConfidenceScore float64                  `json:"confidence_score"`
	Warnings        []string                 `json:"warnings"`
	NextSteps       []string                 `json:"next_steps"`
}

type BaseResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (r *ForecastingRequest) inputs() forecast.Inputs {
	return forecast.Inputs{
		AnnualCO2Captured:         r.AnnualCO2Captured,
		CaptureEfficiency:         r.CaptureEfficiency,
		SequestrationMethod:       r.SequestrationMethod,
		SequestrationLocation:     r.SequestrationLocation,
		StartDate:                 r.StartDate,
		DomesticContentPercentage: r.DomesticContentPercentage,
		EnergyCommunityEligible:   r.EnergyCommunityEligible,
		CarbonIntensityData:       r.CarbonIntensityData,
		InitialInvestment:         r.InitialInvestment,
	}
}

// HandleForecastCredits generates a credit forecast from facility information
func (h *Handler) HandleForecastCredits(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req ForecastingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := h.Engine.Generate(r.Context(), req.FacilityInfo, req.inputs())

	writeJSON(w, ForecastingResponse{
		SessionID:       req.SessionID,
		Forecast:        result,
		ConfidenceScore: 0.85,
		Warnings:        []string{},
		NextSteps: []string{
			"Review forecast assumptions",
			"Consider bonus credit opportunities",
			"Consult with tax professionals",
		},
	})
}

// HandleDetailedAnalysis generates a forecast with timeline projections and
// collaborator analysis
func (h *Handler) HandleDetailedAnalysis(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req ForecastingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	analysis := h.Engine.DetailedAnalysis(r.Context(), req.FacilityInfo, req.inputs())

	writeJSON(w, BaseResponse{
		Success: true,
		Message: "Detailed forecast analysis generated",
		Data:    analysis,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
