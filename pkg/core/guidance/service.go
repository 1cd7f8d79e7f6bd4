// Package guidance is the retrieval collaborator: it holds 45Q regulation
// text in a vector store and answers free-form and facility-specific
// questions by retrieving relevant passages and asking an LLM.
package guidance

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"carboncredit/pkg/core/agent"
	"carboncredit/pkg/core/prompt"
)

// Retrieval defaults, matching the knowledge-base tuning
const (
	DefaultTopK                = 5
	DefaultSimilarityThreshold = 0.7
)

const fallbackSystemPrompt = "You are an expert on the Section 45Q carbon capture tax credit. " +
	"Answer using the provided regulation context. If the context does not cover the question, say so."

// Answer is the collaborator's response to a question
type Answer struct {
	Answer          string   `json:"answer"`
	ConfidenceScore float64  `json:"confidence_score"`
	Sources         []Source `json:"sources"`
	ContextUsed     string   `json:"context_used"`
}

// Source is one retrieved passage backing an answer
type Source struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IngestResult summarizes a document ingestion run
type IngestResult struct {
	DocumentsProcessed int  `json:"documents_processed"`
	TotalChunks        int  `json:"total_chunks"`
	VectorDBUpdated    bool `json:"vector_db_updated"`
}

// PromptRunner is the slice of agent.Manager the service needs
type PromptRunner interface {
	ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error)
}

var _ PromptRunner = (*agent.Manager)(nil)

// Service answers 45Q questions over the ingested regulation corpus
type Service struct {
	store         VectorStore
	chunker       *Chunker
	agents        PromptRunner
	topK          int
	minSimilarity float32
}

// NewService creates the retrieval collaborator
func NewService(store VectorStore, agents PromptRunner) *Service {
	return &Service{
		store:         store,
		chunker:       NewChunker(),
		agents:        agents,
		topK:          DefaultTopK,
		minSimilarity: DefaultSimilarityThreshold,
	}
}

// IngestDirectory loads, chunks and indexes every supported document under dir
func (s *Service) IngestDirectory(ctx context.Context, dir string) (IngestResult, error) {
	docs, err := LoadDirectory(dir)
	if err != nil {
		return IngestResult{}, err
	}

	result := IngestResult{DocumentsProcessed: len(docs)}
	for _, doc := range docs {
		n, err := s.indexText(ctx, doc.Text, map[string]string{"source": doc.Path})
		if err != nil {
			return result, err
		}
		result.TotalChunks += n
	}
	result.VectorDBUpdated = result.TotalChunks > 0

	fmt.Printf("[GUIDANCE] Ingested %d documents (%d chunks) from %s\n",
		result.DocumentsProcessed, result.TotalChunks, dir)
	return result, nil
}

// IngestDocument chunks and indexes one uploaded document
func (s *Service) IngestDocument(ctx context.Context, filename string, data []byte) (IngestResult, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		return IngestResult{}, fmt.Errorf("DOCUMENT_LOAD_ERROR: %s: missing file extension", filename)
	}
	text, err := ExtractText(data, ext)
	if err != nil {
		return IngestResult{}, fmt.Errorf("DOCUMENT_LOAD_ERROR: %s: %v", filename, err)
	}

	n, err := s.indexText(ctx, text, map[string]string{"source": filename})
	if err != nil {
		return IngestResult{}, err
	}
	return IngestResult{
		DocumentsProcessed: 1,
		TotalChunks:        n,
		VectorDBUpdated:    n > 0,
	}, nil
}

func (s *Service) indexText(ctx context.Context, text string, metadata map[string]string) (int, error) {
	chunks := s.chunker.Split(text)
	docs := make([]Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, Document{
			ID:       uuid.NewString(),
			Content:  chunk,
			Metadata: metadata,
		})
	}
	if err := s.store.Add(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// AnswerQuestion answers a free-form 45Q question. When contextText is empty
// the context is retrieved from the vector store; otherwise retrieval is
// skipped and the caller's context is used as-is.
func (s *Service) AnswerQuestion(ctx context.Context, question string, contextText string) (Answer, error) {
	var sources []Source

	if contextText == "" {
		results, err := s.store.SearchByText(ctx, question, s.topK, s.minSimilarity)
		if err != nil {
			return Answer{}, err
		}

		var parts []string
		for _, r := range results {
			parts = append(parts, r.Document.Content)
			sources = append(sources, Source{
				Content:  r.Document.Content,
				Metadata: r.Document.Metadata,
			})
		}
		contextText = strings.Join(parts, "\n\n")
	}

	fullPrompt := question
	if contextText != "" {
		fullPrompt = fmt.Sprintf("Context: %s\n\nQuestion: %s", contextText, question)
	}

	systemPrompt, err := prompt.GetGuidancePrompt("document_answer")
	if err != nil {
		systemPrompt = fallbackSystemPrompt
	}

	answer, err := s.agents.ExecutePrompt(ctx, "guidance", fullPrompt, systemPrompt, nil)
	if err != nil {
		return Answer{}, fmt.Errorf("GUIDANCE_LLM_ERROR: %v", err)
	}

	return Answer{
		Answer:          answer,
		ConfidenceScore: scoreConfidence(question, answer, contextText),
		Sources:         sources,
		ContextUsed:     contextText,
	}, nil
}

// GetEligibilityGuidance answers an eligibility question built from facility
// answers collected during an assessment
func (s *Service) GetEligibilityGuidance(ctx context.Context, facilityInfo map[string]interface{}) (Answer, error) {
	query := fmt.Sprintf(`Based on the following facility information, determine 45Q tax credit eligibility:

Facility Type: %v
Location: %v
Ownership: %v
Technology Ownership: %v
Capture Method: %v
Annual CO2 Captured: %v metric tons

Please provide:
1. Eligibility determination
2. Applicable 45Q provisions
3. Requirements that must be met
4. Estimated credit rates
5. Recommendations for qualification`,
		facilityField(facilityInfo, "facility_type"),
		facilityField(facilityInfo, "location_state"),
		facilityField(facilityInfo, "ownership"),
		facilityField(facilityInfo, "technology_ownership"),
		facilityField(facilityInfo, "capture_method"),
		facilityField(facilityInfo, "annual_co2_captured"))

	return s.AnswerQuestion(ctx, query, "")
}

// GetCreditCalculationGuidance answers a credit-calculation question for a
// facility profile. Used by the forecast engine to enrich recommendations.
func (s *Service) GetCreditCalculationGuidance(ctx context.Context, facilityInfo map[string]interface{}) (Answer, error) {
	query := fmt.Sprintf(`For a facility with the following characteristics, provide detailed 45Q credit calculation guidance:

Facility Type: %v
Annual CO2 Captured: %v metric tons
Capture Method: %v
Sequestration Method: %v

Please provide:
1. Base credit rates for different time periods
2. Bonus credit opportunities
3. Calculation methodology
4. Timeline considerations
5. Documentation requirements`,
		facilityField(facilityInfo, "facility_type"),
		facilityField(facilityInfo, "annual_co2_captured"),
		facilityField(facilityInfo, "capture_method"),
		facilityField(facilityInfo, "sequestration_method"))

	return s.AnswerQuestion(ctx, query, "")
}

// Stats reports the state of the underlying vector store
func (s *Service) Stats() StoreStats {
	return s.store.Stats()
}

func facilityField(info map[string]interface{}, key string) interface{} {
	if v, ok := info[key]; ok && v != nil && v != "" {
		return v
	}
	return "Unknown"
}

// scoreConfidence is a heuristic over term overlap, answer length and
// context length. Returns 0 when either answer or context is empty.
func scoreConfidence(question, answer, contextText string) float64 {
	if answer == "" || contextText == "" {
		return 0.0
	}

	questionTerms := termSet(question)
	answerTerms := termSet(answer)

	overlap := 0
	for term := range questionTerms {
		if _, ok := answerTerms[term]; ok {
			overlap++
		}
	}
	termCoverage := 0.0
	if len(questionTerms) > 0 {
		termCoverage = float64(overlap) / float64(len(questionTerms))
	}

	answerLengthScore := minFloat(float64(len(strings.Fields(answer)))/50.0, 1.0)
	contextLengthScore := minFloat(float64(len(strings.Fields(contextText)))/100.0, 1.0)

	confidence := termCoverage*0.4 + answerLengthScore*0.3 + contextLengthScore*0.3
	return minFloat(confidence, 1.0)
}

func termSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, term := range strings.Fields(strings.ToLower(text)) {
		set[term] = struct{}{}
	}
	return set
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
