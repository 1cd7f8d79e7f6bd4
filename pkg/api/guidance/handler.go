package guidance

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"carboncredit/pkg/core/guidance"
)

// Handler holds dependencies for the knowledge-base endpoints
type Handler struct {
	Svc *guidance.Service
}

// NewHandler creates a new guidance handler
func NewHandler(svc *guidance.Service) *Handler {
	return &Handler{Svc: svc}
}

type QuestionRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

type RAGResponse struct {
	Success         bool              `json:"success"`
	Message         string            `json:"message"`
	Answer          string            `json:"answer"`
	Sources         []guidance.Source `json:"sources"`
	ConfidenceScore float64           `json:"confidence_score"`
	ContextUsed     []string          `json:"context_used"`
}

type DocumentUploadResponse struct {
	Success            bool    `json:"success"`
	Message            string  `json:"message"`
	DocumentsProcessed int     `json:"documents_processed"`
	TotalChunks        int     `json:"total_chunks"`
	VectorDBUpdated    bool    `json:"vector_db_updated"`
	ProcessingTime     float64 `json:"processing_time"`
}

type BaseResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HandleAskQuestion answers a free-form 45Q question over the knowledge base
func (h *Handler) HandleAskQuestion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		http.Error(w, "Question is required", http.StatusBadRequest)
		return
	}

	answer, err := h.Svc.AnswerQuestion(r.Context(), req.Question, req.Context)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var contextUsed []string
	if answer.ContextUsed != "" {
		contextUsed = strings.Split(answer.ContextUsed, "\n\n")
	} else {
		contextUsed = []string{}
	}
	sources := answer.Sources
	if sources == nil {
		sources = []guidance.Source{}
	}

	writeJSON(w, RAGResponse{
		Success:         true,
		Message:         "Question answered successfully",
		Answer:          answer.Answer,
		Sources:         sources,
		ConfidenceScore: answer.ConfidenceScore,
		ContextUsed:     contextUsed,
	})
}

// HandleUploadDocuments ingests multipart file uploads into the knowledge base
func (h *Handler) HandleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	// 32 MB in memory, the rest spills to disk
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "No files provided", http.StatusBadRequest)
		return
	}

	start := time.Now()
	documentsProcessed := 0
	totalChunks := 0

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to read %s: %v", fh.Filename, err), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to read %s: %v", fh.Filename, err), http.StatusBadRequest)
			return
		}

		result, err := h.Svc.IngestDocument(r.Context(), fh.Filename, data)
		if err != nil {
			fmt.Printf("[GUIDANCE] Ingest failed for %s: %v\n", fh.Filename, err)
			continue
		}
		documentsProcessed++
		totalChunks += result.TotalChunks
	}

	writeJSON(w, DocumentUploadResponse{
		Success:            true,
		Message:            fmt.Sprintf("Successfully processed %d documents", documentsProcessed),
		DocumentsProcessed: documentsProcessed,
		TotalChunks:        totalChunks,
		VectorDBUpdated:    totalChunks > 0,
		ProcessingTime:     time.Since(start).Seconds(),
	})
}

// HandleStats reports vector store statistics
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	writeJSON(w, BaseResponse{
		Success: true,
		Message: "Vector store statistics retrieved",
		Data:    h.Svc.Stats(),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
