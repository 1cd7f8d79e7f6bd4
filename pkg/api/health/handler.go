package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"carboncredit/pkg/core/agent"
	"carboncredit/pkg/core/guidance"
)

const version = "1.0.0"

type HealthResponse struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message"`
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Handler holds dependencies for the health endpoint
type Handler struct {
	AgentMgr *agent.Manager
	Guidance *guidance.Service
	// DBPing is nil when running on the in-memory session store
	DBPing func(ctx context.Context) error
}

// NewHandler creates a new health handler
func NewHandler(agentMgr *agent.Manager, guid *guidance.Service) *Handler {
	return &Handler{
		AgentMgr: agentMgr,
		Guidance: guid,
	}
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	data := map[string]interface{}{
		"llm_provider": map[string]interface{}{
			"provider":  h.AgentMgr.GetActiveProvider(),
			"available": h.AgentMgr.Available(),
		},
	}
	if h.Guidance != nil {
		data["vector_store"] = map[string]interface{}{
			"status":          "available",
			"total_documents": h.Guidance.Stats().TotalDocuments,
		}
	} else {
		data["vector_store"] = map[string]interface{}{"status": "unavailable"}
	}

	resp := HealthResponse{
		Success:   true,
		Message:   "Service is healthy",
		Status:    "healthy",
		Version:   version,
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      data,
	}

	if h.DBPing != nil {
		if err := h.DBPing(r.Context()); err != nil {
			data["database"] = map[string]interface{}{"status": "unreachable"}
			resp.Success = false
			resp.Status = "unhealthy"
			resp.Message = "Service health check failed"
			resp.Error = err.Error()
		} else {
			data["database"] = map[string]interface{}{"status": "available"}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
