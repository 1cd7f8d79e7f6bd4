package assessment

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"carboncredit/pkg/core/agent"
	"carboncredit/pkg/core/assessment"
	"carboncredit/pkg/core/catalog"
	"carboncredit/pkg/core/eligibility"
	"carboncredit/pkg/core/guidance"
	"carboncredit/pkg/core/prompt"
)

// Handler holds dependencies for the assessment endpoints
type Handler struct {
	Mgr      *assessment.Manager
	Guidance *guidance.Service
	AgentMgr *agent.Manager
}

// NewHandler creates a new assessment handler
func NewHandler(mgr *assessment.Manager, guid *guidance.Service, agentMgr *agent.Manager) *Handler {
	return &Handler{
		Mgr:      mgr,
		Guidance: guid,
		AgentMgr: agentMgr,
	}
}

type StartRequest struct {
	SessionID string `json:"session_id"`
}

type SubmitRequest struct {
	SessionID  string      `json:"session_id"`
	QuestionID string      `json:"question_id"`
	Answer     interface{} `json:"answer"`
}

// AssessmentResponse is the shared response for start and submit: the next
// question while the walk is in progress, the verdict once it completes.
type AssessmentResponse struct {
	SessionID         string               `json:"session_id"`
	CurrentQuestion   *catalog.Question    `json:"current_question,omitempty"`
	Progress          float64              `json:"progress"`
	IsComplete        bool                 `json:"is_complete"`
	EligibilityResult *eligibility.Verdict `json:"eligibility_result,omitempty"`
}

type BaseResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HandleStart starts a new eligibility assessment
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req StartRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // empty body means generated id
	}

	sess, err := h.Mgr.Start(r.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, assessment.ErrDuplicateSession) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	question, err := h.Mgr.CurrentQuestion(r.Context(), sess.SessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fmt.Printf("[ASSESS] Started session %s\n", sess.SessionID)
	writeJSON(w, AssessmentResponse{
		SessionID:       sess.SessionID,
		CurrentQuestion: question,
		Progress:        0.0,
		IsComplete:      false,
	})
}

// HandleSubmit records one answer and advances the questionnaire
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.Mgr.SubmitAnswer(r.Context(), req.SessionID, req.QuestionID, req.Answer)
	if err != nil {
		if errors.Is(err, assessment.ErrUnknownSession) {
			http.Error(w, "Invalid session ID", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, AssessmentResponse{
		SessionID:         req.SessionID,
		CurrentQuestion:   result.NextQuestion,
		Progress:          result.Progress,
		IsComplete:        result.IsComplete,
		EligibilityResult: result.Verdict,
	})
}

// HandleProgress reports the progress of an assessment.
// Route: GET /assessment-progress/{session_id}
func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	sessionID := strings.TrimPrefix(r.URL.Path, "/assessment-progress/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		http.Error(w, "Session ID required", http.StatusBadRequest)
		return
	}

	progress, err := h.Mgr.Progress(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, assessment.ErrUnknownSession) {
			http.Error(w, "Invalid session ID", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, BaseResponse{
		Success: true,
		Message: "Assessment progress retrieved",
		Data:    progress,
	})
}

// HandleDetailedGuidance asks the retrieval collaborator for
// facility-specific eligibility guidance on a session's answers.
// Route: POST /detailed-guidance/{session_id}
func (h *Handler) HandleDetailedGuidance(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	sessionID := strings.TrimPrefix(r.URL.Path, "/detailed-guidance/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		http.Error(w, "Session ID required", http.StatusBadRequest)
		return
	}

	sess, err := h.Mgr.Session(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, assessment.ErrUnknownSession) {
			http.Error(w, "Invalid session ID", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.Guidance == nil {
		http.Error(w, "Guidance service unavailable", http.StatusServiceUnavailable)
		return
	}

	facilityInfo := facilityInfoFromAnswers(sess.Answers)

	ragGuidance, err := h.Guidance.GetEligibilityGuidance(r.Context(), facilityInfo)
	if err != nil {
		fmt.Printf("[ASSESS] Guidance lookup failed for %s: %v\n", sessionID, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, BaseResponse{
		Success: true,
		Message: "Detailed guidance generated",
		Data: map[string]interface{}{
			"facility_info":     facilityInfo,
			"rag_guidance":      ragGuidance,
			"assessment_result": sess.Result,
		},
	})
}

type EnhancedAnswer struct {
	Question string      `json:"question"`
	Answer   interface{} `json:"answer"`
	Category string      `json:"category"`
}

type EnhancedRequest struct {
	SessionID string           `json:"session_id"`
	Answers   []EnhancedAnswer `json:"answers"`
}

// HandleEnhancedAssessment runs a free-form LLM assessment over an arbitrary
// answer set, without the fixed catalog walk
func (h *Handler) HandleEnhancedAssessment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req EnhancedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "Session ID is required", http.StatusBadRequest)
		return
	}
	if len(req.Answers) == 0 {
		http.Error(w, "At least one answer is required", http.StatusBadRequest)
		return
	}

	userPrompt := buildEnhancedPrompt(req)

	systemPrompt, err := prompt.GetAssessmentPrompt("enhanced_summary")
	if err != nil {
		systemPrompt = ""
	}

	result, err := h.AgentMgr.ExecutePrompt(r.Context(), "assessment", userPrompt, systemPrompt, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, BaseResponse{
		Success: true,
		Message: "Enhanced assessment completed successfully",
		Data: map[string]interface{}{
			"assessment":         result,
			"session_id":         req.SessionID,
			"questions_answered": len(req.Answers),
			"timestamp":          time.Now().Format(time.RFC3339),
		},
	})
}

func buildEnhancedPrompt(req EnhancedRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert 45Q tax credit eligibility assessor. Analyze the following facility information and provide a comprehensive eligibility assessment.

FACILITY ASSESSMENT DATA:
Session ID: %s
Total Questions Answered: %d

ANSWERS PROVIDED:
`, req.SessionID, len(req.Answers))

	for _, answer := range req.Answers {
		fmt.Fprintf(&b, "\nQuestion: %s", answer.Question)
		fmt.Fprintf(&b, "\nAnswer: %v", answer.Answer)
		fmt.Fprintf(&b, "\nCategory: %s\n", answer.Category)
	}

	b.WriteString(`

ASSESSMENT REQUIREMENTS:
1. Determine if the facility is eligible for 45Q tax credits
2. Identify which specific 45Q provisions apply
3. Provide reasoning for eligibility determination
4. Estimate potential credit amounts if eligible
5. Identify any missing information that could affect eligibility
6. Provide specific next steps and recommendations

Please provide a comprehensive assessment with:
- ELIGIBILITY: Yes/No with clear reasoning
- APPLICABLE PROVISIONS: List specific 45Q provisions
- CREDIT ESTIMATES: Potential credit amounts if eligible
- MISSING INFORMATION: Any critical gaps
- NEXT STEPS: Specific recommendations
- RISK FACTORS: Any potential issues or concerns

Format your response in a clear, structured manner.
`)
	return b.String()
}

// facilityInfoFromAnswers projects the answer map onto the fixed facility
// profile the collaborator queries are built from
func facilityInfoFromAnswers(answers map[string]interface{}) map[string]interface{} {
	get := func(key string, def interface{}) interface{} {
		if v, ok := answers[key]; ok && v != nil {
			return v
		}
		return def
	}
	return map[string]interface{}{
		"facility_name":        get("facility_name", "Unknown"),
		"facility_type":        get("facility_type", "Unknown"),
		"location_state":       get("location_state", "Unknown"),
		"ownership":            get("ownership", "Unknown"),
		"technology_ownership": get("technology_ownership", "Unknown"),
		"capture_method":       get("capture_method", "Unknown"),
		"annual_co2_captured":  get("annual_co2_captured", 0),
		"sequestration_method": get("sequestration_method", "Unknown"),
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
